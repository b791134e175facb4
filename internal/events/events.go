package events

import "time"

type OrderCreated struct {
	EventID       string    `json:"event_id"`
	Domain        string    `json:"domain"`
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	TotalAmount   int64     `json:"total_amount"`
	Timestamp     time.Time `json:"timestamp"`
}

type PaymentResolved struct {
	EventID       string    `json:"event_id"`
	Domain        string    `json:"domain"`
	TransactionID string    `json:"transaction_id"`
	Outcome       string    `json:"outcome"`
	PaymentStatus string    `json:"payment_status"`
	OrderStatus   string    `json:"order_status,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
