package paypal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ApplicationContext настройки страницы подтверждения подписки.
type ApplicationContext struct {
	BrandName  string `json:"brand_name,omitempty"`
	Locale     string `json:"locale,omitempty"`
	UserAction string `json:"user_action,omitempty"`
	ReturnURL  string `json:"return_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
}

// CreateSubscriptionRequest тело запроса POST /v1/billing/subscriptions.
type CreateSubscriptionRequest struct {
	PlanID             string             `json:"plan_id"`
	CustomID           string             `json:"custom_id,omitempty"`
	ApplicationContext ApplicationContext `json:"application_context"`
}

// Link HATEOAS-ссылка из ответа PayPal.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

// Subscription объект подписки, который возвращает PayPal.
type Subscription struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	PlanID     string `json:"plan_id,omitempty"`
	CustomID   string `json:"custom_id,omitempty"`
	CreateTime string `json:"create_time,omitempty"`
	Links      []Link `json:"links"`
}

// ApproveLink возвращает ссылку, по которой пользователь подтверждает подписку.
func (s *Subscription) ApproveLink() string {
	for _, l := range s.Links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

// Transmission заголовки доставки вебхука, участвующие в проверке подписи.
type Transmission struct {
	TransmissionID   string
	TransmissionTime string
	CertURL          string
	AuthAlgo         string
	TransmissionSig  string
}

// TransmissionFromHeaders читает заголовки PAYPAL-* входящего вебхука.
func TransmissionFromHeaders(h http.Header) Transmission {
	return Transmission{
		TransmissionID:   h.Get("Paypal-Transmission-Id"),
		TransmissionTime: h.Get("Paypal-Transmission-Time"),
		CertURL:          h.Get("Paypal-Cert-Url"),
		AuthAlgo:         h.Get("Paypal-Auth-Algo"),
		TransmissionSig:  h.Get("Paypal-Transmission-Sig"),
	}
}

// VerifyWebhookSignatureRequest тело запроса POST /v1/notifications/verify-webhook-signature.
type VerifyWebhookSignatureRequest struct {
	TransmissionID   string          `json:"transmission_id"`
	TransmissionTime string          `json:"transmission_time"`
	CertURL          string          `json:"cert_url"`
	AuthAlgo         string          `json:"auth_algo"`
	TransmissionSig  string          `json:"transmission_sig"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

// NewVerifyRequest собирает запрос проверки подписи из заголовков и тела события.
func NewVerifyRequest(t Transmission, webhookID string, event json.RawMessage) VerifyWebhookSignatureRequest {
	return VerifyWebhookSignatureRequest{
		TransmissionID:   t.TransmissionID,
		TransmissionTime: t.TransmissionTime,
		CertURL:          t.CertURL,
		AuthAlgo:         t.AuthAlgo,
		TransmissionSig:  t.TransmissionSig,
		WebhookID:        webhookID,
		WebhookEvent:     event,
	}
}

// VerificationSuccess значение verification_status для подлинного события.
const VerificationSuccess = "SUCCESS"

// VerifyWebhookSignatureResponse ответ проверки подписи.
type VerifyWebhookSignatureResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// APIError ошибка, которую вернул PayPal.
type APIError struct {
	StatusCode int    `json:"-"`
	Name       string `json:"name"`
	Message    string `json:"message"`
	DebugID    string `json:"debug_id"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("paypal: unexpected status %d", e.StatusCode)
	}
	if e.Name == "" {
		return fmt.Sprintf("paypal: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("paypal: %d %s: %s", e.StatusCode, e.Name, e.Message)
}
