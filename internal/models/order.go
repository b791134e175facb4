package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderCancelled OrderStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

// ProductRef is a snapshot of the purchased item taken at order time.
// Catalog rows may change or disappear afterwards; the order keeps its own copy.
type ProductRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
	Image string `json:"image,omitempty"`
}

type ShippingInfo struct {
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"not null" json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Phone    string `json:"phone"`
}

// Order is a purchase intent for either product domain. Domain discriminates
// course vs. accessories rows in the shared table. PaymentID is the gateway
// transaction id and the sole lookup key for asynchronous callbacks.
type Order struct {
	ID            uuid.UUID                        `gorm:"type:uuid;primary_key" json:"id"`
	Domain        string                           `gorm:"not null;index" json:"domain"`
	UserID        string                           `gorm:"not null;index" json:"userId"`
	Product       datatypes.JSONType[ProductRef]   `json:"product"`
	Shipping      ShippingInfo                     `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingInfo"`
	OrderStatus   OrderStatus                      `gorm:"type:varchar(16);not null;default:'Pending'" json:"orderStatus"`
	PaymentStatus PaymentStatus                    `gorm:"type:varchar(16);not null;default:'Pending'" json:"paymentStatus"`
	PaymentMethod string                           `gorm:"not null" json:"paymentMethod"`
	TotalAmount   int64                            `gorm:"not null" json:"totalAmount"`
	PaymentID     string                           `gorm:"uniqueIndex;not null" json:"paymentId"`
	CreatedAt     time.Time                        `json:"orderDate"`
	UpdatedAt     time.Time                        `json:"orderUpdateDate"`
}

func (order *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return
}
