package model

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Customer is the freeform contact block captured at checkout
type Customer struct {
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"not null" json:"email"`
	Phone string `gorm:"not null" json:"phone"`
}

type ShippingAddress struct {
	Street     string `gorm:"not null" json:"street"`
	City       string `gorm:"not null" json:"city"`
	State      string `gorm:"not null" json:"state"`
	PostalCode string `gorm:"not null" json:"postal_code"`
	Country    string `gorm:"not null" json:"country"`
}

// Order is written once at checkout and never modified by the storefront core.
type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	Customer        Customer        `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	Subtotal        float64         `gorm:"not null" json:"subtotal"`
	ShippingCost    float64         `gorm:"not null" json:"shipping_cost"`
	Total           float64         `gorm:"not null" json:"total"`
	Status          OrderStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a snapshot of the product at order time. ProductID is kept for
// reference only and carries no foreign key.
type OrderItem struct {
	ID        uint    `gorm:"primarykey" json:"-"`
	OrderID   uint    `gorm:"not null;index" json:"-"`
	ProductID string  `gorm:"type:varchar(64);not null" json:"product_id"`
	Name      string  `gorm:"not null" json:"name"`
	Price     float64 `gorm:"not null" json:"price"`
	Quantity  int     `gorm:"not null" json:"quantity"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
