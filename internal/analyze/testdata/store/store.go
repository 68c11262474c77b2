package store

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the identity shared by stored entities.
type Base struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Product represents an individual item available for sale.
type Product struct {
	Base
	SKU        string `json:"sku" recordcast:",env=STORE_SKU"`
	Name       string
	PriceCents int64 `recordcast:"price,default=0"`
	Weight     float64
	Image      []byte
	Internal   string `recordcast:"-"`
	secret     string
}

// Order represents a transaction made by a customer.
type Order struct {
	CustomerID int64
	Status     OrderStatus `recordcast:",default=PENDING"`
	Items      []OrderItem
	Labels     map[string]string
	Note       *string
	Timeout    time.Duration `recordcast:",ignore_env"`
	Hook       func()
	Paid       bool
}

// OrderItem represents a product line within an order.
type OrderItem struct {
	Product  *Product
	Quantity int
	Tags     Tags
}

type Tags []string

type OrderStatus string

const (
	StatusPending OrderStatus = "PENDING"
	StatusPaid    OrderStatus = "PAID"
)

func (p Product) Secret() string { return p.secret }
