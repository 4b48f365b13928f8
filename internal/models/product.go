package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusAvailable    ProductStatus = "available"
	ProductStatusComingSoon   ProductStatus = "coming-soon"
	ProductStatusOutOfStock   ProductStatus = "out-of-stock"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusAvailable, ProductStatusComingSoon, ProductStatusOutOfStock, ProductStatusDiscontinued:
		return true
	}
	return false
}

type Product struct {
	ID          int             `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Category    string          `db:"category" json:"category"`
	Price       decimal.Decimal `db:"price" json:"price"`
	ImageURL    string          `db:"image_url" json:"image_url"`
	Stock       int             `db:"stock" json:"stock"`
	Status      ProductStatus   `db:"status" json:"status"`
	Featured    bool            `db:"featured" json:"featured"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type ProductFilter struct {
	Category string
	Status   ProductStatus
	Featured *bool
}

type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock"`
	Status      ProductStatus   `json:"status"`
	Featured    bool            `json:"featured"`
}

type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Status      *ProductStatus   `json:"status,omitempty"`
	Featured    *bool            `json:"featured,omitempty"`
}

func (p ProductPatch) Assignments() []Assignment {
	var out []Assignment
	if p.Name != nil {
		out = append(out, Assignment{"name", *p.Name})
	}
	if p.Description != nil {
		out = append(out, Assignment{"description", *p.Description})
	}
	if p.Category != nil {
		out = append(out, Assignment{"category", *p.Category})
	}
	if p.Price != nil {
		out = append(out, Assignment{"price", *p.Price})
	}
	if p.ImageURL != nil {
		out = append(out, Assignment{"image_url", *p.ImageURL})
	}
	if p.Stock != nil {
		out = append(out, Assignment{"stock", *p.Stock})
	}
	if p.Status != nil {
		out = append(out, Assignment{"status", string(*p.Status)})
	}
	if p.Featured != nil {
		out = append(out, Assignment{"featured", *p.Featured})
	}
	return out
}
