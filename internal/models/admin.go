package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Feedback struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type FeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type Subscriber struct {
	ID        int       `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

type Stats struct {
	Users         int             `db:"users" json:"users"`
	Products      int             `db:"products" json:"products"`
	Orders        int             `db:"orders" json:"orders"`
	PendingOrders int             `db:"pending_orders" json:"pending_orders"`
	Revenue       decimal.Decimal `db:"revenue" json:"revenue"`
}
