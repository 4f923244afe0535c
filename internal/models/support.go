package models

import "time"

// Отправители сообщений в чате поддержки.
const (
	SenderUser    = "user"
	SenderSupport = "support"
)

// SupportMessage сообщение в чате поддержки.
type SupportMessage struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	Sender           string     `json:"sender"`
	SenderName       string     `json:"senderName,omitempty"`
	Message          string     `json:"message"`
	Timestamp        time.Time  `json:"timestamp"`
	Resolved         bool       `json:"resolved"`
	HasAdminResponse bool       `json:"hasAdminResponse"`
	RespondedAt      *time.Time `json:"respondedAt,omitempty"`
	AdminEmail       string     `json:"adminEmail,omitempty"`
}

// UrgentSupportNotification сообщение очереди support.urgent.
type UrgentSupportNotification struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SubscriptionExpiredNotification сообщение очереди subscription.expired.
type SubscriptionExpiredNotification struct {
	UID                  string     `json:"uid"`
	Email                string     `json:"email"`
	Name                 string     `json:"name"`
	PaypalSubscriptionID string     `json:"paypalSubscriptionId"`
	SubscriptionEnd      *time.Time `json:"subscriptionEnd"`
}
