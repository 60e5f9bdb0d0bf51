package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderPaid,
	OrderShipped,
	OrderCompleted,
	OrderCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order : le total est fourni par le serveur et n'est jamais recalculé ici
type Order struct {
	ID           string          `json:"id"`
	OrderNumber  string          `json:"orderNumber"`
	CustomerName string          `json:"customerName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	Address      string          `json:"address,omitempty"`
	PostalCode   string          `json:"postalCode,omitempty"`
	City         string          `json:"city,omitempty"`
	Items        []OrderItem     `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	Notes        string          `json:"notes,omitempty"`
}

// OrderPage est la forme normalisée de GET /api/orders
type OrderPage struct {
	Orders     []Order `json:"orders"`
	TotalPages int     `json:"totalPages"`
	// Complete vaut true quand le serveur a renvoyé la collection entière (tableau nu) :
	// aucun filtre ni pagination n'a été appliqué côté serveur.
	Complete bool `json:"-"`
}

type OrderStats struct {
	TotalOrders   int             `json:"totalOrders"`
	PendingOrders int             `json:"pendingOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}
