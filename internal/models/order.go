package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}

type Order struct {
	ID                 int             `db:"id" json:"id"`
	UserID             sql.NullInt64   `db:"user_id" json:"-"`
	OrderNumber        string          `db:"order_number" json:"order_number"`
	TotalAmount        decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status             OrderStatus     `db:"status" json:"status"`
	PaymentStatus      PaymentStatus   `db:"payment_status" json:"payment_status"`
	CustomerName       string          `db:"customer_name" json:"customer_name"`
	CustomerEmail      string          `db:"customer_email" json:"customer_email"`
	CustomerPhone      string          `db:"customer_phone" json:"customer_phone"`
	ShippingLine1      string          `db:"shipping_line1" json:"shipping_line1"`
	ShippingLine2      string          `db:"shipping_line2" json:"shipping_line2"`
	ShippingCity       string          `db:"shipping_city" json:"shipping_city"`
	ShippingState      string          `db:"shipping_state" json:"shipping_state"`
	ShippingPostalCode string          `db:"shipping_postal_code" json:"shipping_postal_code"`
	ShippingCountry    string          `db:"shipping_country" json:"shipping_country"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
	Items              []OrderItem     `db:"-" json:"items,omitempty"`
}

// OrderItem is a snapshot of the product at purchase time.
type OrderItem struct {
	ID           int             `db:"id" json:"id"`
	OrderID      int             `db:"order_id" json:"order_id"`
	ProductID    sql.NullInt64   `db:"product_id" json:"-"`
	ProductName  string          `db:"product_name" json:"product_name"`
	ProductImage string          `db:"product_image" json:"product_image"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Quantity     int             `db:"quantity" json:"quantity"`
	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
}

type OrderLine struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
	// Price is accepted for compatibility with existing clients and ignored.
	Price *decimal.Decimal `json:"price,omitempty"`
}

type OrderContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ShippingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type OrderTotals struct {
	Total *decimal.Decimal `json:"total,omitempty"`
}

type CreateOrderRequest struct {
	Items   []OrderLine     `json:"items"`
	Contact OrderContact    `json:"contact"`
	Address ShippingAddress `json:"address"`
	Totals  OrderTotals     `json:"totals"`
}

type OrderReceipt struct {
	ID          int             `json:"id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
}

type OrderPatch struct {
	Status        *OrderStatus   `json:"status,omitempty"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
}

func (p OrderPatch) Assignments() []Assignment {
	var out []Assignment
	if p.Status != nil {
		out = append(out, Assignment{"status", string(*p.Status)})
	}
	if p.PaymentStatus != nil {
		out = append(out, Assignment{"payment_status", string(*p.PaymentStatus)})
	}
	return out
}
