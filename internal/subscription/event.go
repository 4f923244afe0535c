// Package subscription применяет события подписок PayPal к записям пользователей.
package subscription

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Типы событий PayPal, которые меняют запись пользователя.
const (
	EventCreated   = "BILLING.SUBSCRIPTION.CREATED"
	EventActivated = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventUpdated   = "BILLING.SUBSCRIPTION.UPDATED"
	EventCancelled = "BILLING.SUBSCRIPTION.CANCELLED"
)

// ErrMalformedEvent тело вебхука не является событием PayPal.
var ErrMalformedEvent = errors.New("malformed webhook event")

// Resource поля ресурса подписки, которые нужны для сверки.
type Resource struct {
	ID       string `json:"id"`
	CustomID string `json:"custom_id"`
	Status   string `json:"status"`
}

// Event событие вебхука. Реализации перечислены в этом пакете.
type Event interface {
	// Type возвращает event_type события.
	Type() string
	// Subscription возвращает ресурс подписки.
	Subscription() Resource
	sealed()
}

// SubscriptionCreated BILLING.SUBSCRIPTION.CREATED.
type SubscriptionCreated struct{ Resource Resource }

// SubscriptionActivated BILLING.SUBSCRIPTION.ACTIVATED.
type SubscriptionActivated struct{ Resource Resource }

// SubscriptionUpdated BILLING.SUBSCRIPTION.UPDATED.
type SubscriptionUpdated struct{ Resource Resource }

// SubscriptionCancelled BILLING.SUBSCRIPTION.CANCELLED.
type SubscriptionCancelled struct{ Resource Resource }

// UnknownEvent любое другое событие, подтверждается без изменений.
type UnknownEvent struct {
	EventType string
	Resource  Resource
}

func (SubscriptionCreated) Type() string   { return EventCreated }
func (SubscriptionActivated) Type() string { return EventActivated }
func (SubscriptionUpdated) Type() string   { return EventUpdated }
func (SubscriptionCancelled) Type() string { return EventCancelled }
func (e UnknownEvent) Type() string        { return e.EventType }

func (e SubscriptionCreated) Subscription() Resource   { return e.Resource }
func (e SubscriptionActivated) Subscription() Resource { return e.Resource }
func (e SubscriptionUpdated) Subscription() Resource   { return e.Resource }
func (e SubscriptionCancelled) Subscription() Resource { return e.Resource }
func (e UnknownEvent) Subscription() Resource          { return e.Resource }

func (SubscriptionCreated) sealed()   {}
func (SubscriptionActivated) sealed() {}
func (SubscriptionUpdated) sealed()   {}
func (SubscriptionCancelled) sealed() {}
func (UnknownEvent) sealed()          {}

type envelope struct {
	EventType string          `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

// ParseEvent разбирает тело вебхука в одно из событий пакета.
// Ресурс неизвестных событий разбирается без ошибок: его форма может быть любой.
func ParseEvent(body []byte) (Event, error) {
	const op = "subscription.ParseEvent"

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrMalformedEvent, err)
	}

	var res Resource
	known := env.EventType == EventCreated || env.EventType == EventActivated ||
		env.EventType == EventUpdated || env.EventType == EventCancelled
	if len(env.Resource) > 0 && string(env.Resource) != "null" {
		if err := json.Unmarshal(env.Resource, &res); err != nil && known {
			return nil, fmt.Errorf("%s: %w: resource: %v", op, ErrMalformedEvent, err)
		}
	}

	switch env.EventType {
	case EventCreated:
		return SubscriptionCreated{Resource: res}, nil
	case EventActivated:
		return SubscriptionActivated{Resource: res}, nil
	case EventUpdated:
		return SubscriptionUpdated{Resource: res}, nil
	case EventCancelled:
		return SubscriptionCancelled{Resource: res}, nil
	default:
		return UnknownEvent{EventType: env.EventType, Resource: res}, nil
	}
}
