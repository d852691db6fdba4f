package domain

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderPacked         OrderStatus = "packed"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// OrderStatuses returns the recognized status values in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderPending,
		OrderPacked,
		OrderOutForDelivery,
		OrderDelivered,
		OrderCancelled,
	}
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPacked, OrderOutForDelivery, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is one priced line of an order. Price and LineTotal are copied
// from the catalog at order time, not looked up live.
type OrderItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"lineTotal"`
}

// Order is a placed customer order. User holds a snapshot of the account
// that placed it, nil for guest orders. Status is the only field that
// changes after creation.
type Order struct {
	ID           int         `json:"id"`
	Status       OrderStatus `json:"status"`
	CustomerName string      `json:"customerName"`
	Note         string      `json:"note"`
	Location     *string     `json:"location"`
	User         *UserInfo   `json:"user"`
	Items        []OrderItem `json:"items"`
	Total        float64     `json:"total"`
	CreatedAt    time.Time   `json:"createdAt"`
}
