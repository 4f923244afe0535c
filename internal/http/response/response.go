// Package response формирует единообразные JSON-ответы HTTP-обработчиков:
// {"status":"OK","data":...} при успехе и {"status":"Error","error":"..."} при ошибке.
package response

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

// Response стандартный JSON-ответ сервера.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse ответ с ошибкой. Используется в аннотациях @Failure.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ответ с переданным сообщением об ошибке.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError собирает нарушения валидации в одно сообщение через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s%s", err.Field(), err.Param(), unitSuffix(err.Kind())))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s%s", err.Field(), err.Param(), unitSuffix(err.Kind())))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		case "latitude":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a latitude between -90 and 90", err.Field()))
		case "longitude":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a longitude between -180 and 180", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// unitSuffix для строк и срезов min/max ограничивают длину, для чисел значение.
func unitSuffix(kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Map, reflect.Array:
		return " items"
	}
	return ""
}
