package kafka

// Topics сервиса.
const (
	TopicOrderEvents     = "sales.order.events"
	TopicDeadLetterQueue = "sales.dlq"
)
