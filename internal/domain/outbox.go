package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// OutboxMessage хранит данные события для последующей публикации.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

const (
	// AggregateOrder — тип агрегата для событий заказов.
	AggregateOrder = "order"
	// EventOrderPlaced публикуется после успешного оформления заказа.
	EventOrderPlaced = "order.placed"
)

type orderPlacedPayload struct {
	OrderID  int64           `json:"order_id"`
	ClientID int64           `json:"client_id"`
	PlacedAt time.Time       `json:"placed_at"`
	Total    string          `json:"total"`
	Items    []orderItemInfo `json:"items"`
}

type orderItemInfo struct {
	ProductID       int64  `json:"product_id"`
	Quantity        int32  `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	DiscountPercent int32  `json:"discount_percent"`
}

// NewOrderPlacedMessage собирает outbox-сообщение о фиксации заказа.
func NewOrderPlacedMessage(order Order) (OutboxMessage, error) {
	payload := orderPlacedPayload{
		OrderID:  order.ID,
		ClientID: order.ClientID,
		PlacedAt: order.PlacedAt,
		Total:    order.Total().StringFixed(2),
		Items:    make([]orderItemInfo, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, orderItemInfo{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice.StringFixed(2),
			DiscountPercent: item.DiscountPercent,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("marshal order.placed payload: %w", err)
	}

	return OutboxMessage{
		AggregateType: AggregateOrder,
		AggregateID:   strconv.FormatInt(order.ID, 10),
		EventType:     EventOrderPlaced,
		Payload:       data,
	}, nil
}
