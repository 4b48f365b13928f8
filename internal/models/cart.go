package models

import "github.com/shopspring/decimal"

type CartItem struct {
	ID           int             `db:"id" json:"id"`
	ProductID    int             `db:"product_id" json:"product_id"`
	Quantity     int             `db:"quantity" json:"quantity"`
	ProductName  string          `db:"product_name" json:"product_name"`
	ProductImage string          `db:"product_image" json:"product_image"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Subtotal     decimal.Decimal `db:"-" json:"subtotal"`
}

type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type AddCartItemRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
