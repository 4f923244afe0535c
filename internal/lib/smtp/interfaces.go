// Package smtp отправляет письма через SMTP-сервер.
package smtp

import "gopkg.in/gomail.v2"

// Dialer отправляет подготовленные письма. Реализуется *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}
