// Package models содержит структуры данных, которые передаются между слоями
// приложения: записи пользователей, локации, сообщения поддержки,
// погодные данные и сообщения для очередей уведомлений.
package models

import (
	"strings"
	"time"
)

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Статусы подписки. Регистр зависит от источника события и хранится как есть.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusActiveAPI = "ACTIVE"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "expired"
)

// User запись пользователя вместе с состоянием подписки.
type User struct {
	UID                  string      `json:"uid"`
	Email                string      `json:"email"`
	Name                 string      `json:"name"`
	Role                 string      `json:"role"`
	PasswordHash         string      `json:"-"`
	IsPremium            bool        `json:"isPremium"`
	SubscriptionStatus   string      `json:"subscriptionStatus"`
	PaypalSubscriptionID string      `json:"paypalSubscriptionId"`
	SubscriptionStart    *time.Time  `json:"subscriptionStart"`
	SubscriptionEnd      *time.Time  `json:"subscriptionEnd"`
	DefaultLocationID    *string     `json:"defaultLocationId"`
	Preferences          Preferences `json:"preferences"`
	SavedLocations       []Location  `json:"savedLocations"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// Entitled вычисляет право на премиум-функции: статус active (в любом регистре)
// и окончание подписки ещё не наступило.
func (u *User) Entitled(now time.Time) bool {
	if !strings.EqualFold(u.SubscriptionStatus, StatusActive) {
		return false
	}
	if u.SubscriptionEnd == nil {
		return false
	}
	return now.Before(*u.SubscriptionEnd)
}

// SubscriptionUpdate набор полей подписки для одного UPDATE.
// nil означает, что поле не меняется. UpdatedAt пишется всегда.
type SubscriptionUpdate struct {
	IsPremium            *bool
	PaypalSubscriptionID *string
	SubscriptionStatus   *string
	SubscriptionStart    *time.Time
	SubscriptionEnd      *time.Time
	UpdatedAt            time.Time
}

// SubscriptionInfo ответ эндпоинта статуса подписки.
type SubscriptionInfo struct {
	IsPremium            bool       `json:"isPremium"`
	Entitled             bool       `json:"entitled"`
	SubscriptionStatus   string     `json:"subscriptionStatus"`
	PaypalSubscriptionID string     `json:"paypalSubscriptionId"`
	SubscriptionStart    *time.Time `json:"subscriptionStart"`
	SubscriptionEnd      *time.Time `json:"subscriptionEnd"`
}
