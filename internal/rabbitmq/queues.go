package rabbitmq

// Exchange direct-обменник, через который идут все уведомления.
const Exchange = "notifications"

// Очереди и ключи маршрутизации уведомлений.
const (
	QueueSupportUrgent         = "support.urgent"
	RoutingSupportUrgent       = "support_urgent"
	QueueSubscriptionExpired   = "subscription.expired"
	RoutingSubscriptionExpired = "subscription_expired"
)

// QueueConfig очередь и ключ, которым она привязана к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые объявляют издатели и потребители.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueSupportUrgent, RoutingKey: RoutingSupportUrgent},
		{QueueName: QueueSubscriptionExpired, RoutingKey: RoutingSubscriptionExpired},
	}
}
