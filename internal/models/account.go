package models

import (
	"strings"
	"time"
)

type Address struct {
	ID         int       `db:"id" json:"id"`
	UserID     int       `db:"user_id" json:"-"`
	Label      string    `db:"label" json:"label"`
	FullName   string    `db:"full_name" json:"full_name"`
	Line1      string    `db:"line1" json:"line1"`
	Line2      string    `db:"line2" json:"line2"`
	City       string    `db:"city" json:"city"`
	State      string    `db:"state" json:"state"`
	PostalCode string    `db:"postal_code" json:"postal_code"`
	Country    string    `db:"country" json:"country"`
	Phone      string    `db:"phone" json:"phone"`
	IsDefault  bool      `db:"is_default" json:"is_default"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type AddressRequest struct {
	Label      string `json:"label"`
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"is_default"`
}

type AddressPatch struct {
	Label      *string `json:"label,omitempty"`
	FullName   *string `json:"full_name,omitempty"`
	Line1      *string `json:"line1,omitempty"`
	Line2      *string `json:"line2,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    *string `json:"country,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	IsDefault  *bool   `json:"is_default,omitempty"`
}

// Assignments excludes is_default, which is handled by the default swap.
// Values are trimmed the same way CreateAddress trims them.
func (p AddressPatch) Assignments() []Assignment {
	fields := []struct {
		column string
		value  *string
	}{
		{"label", p.Label},
		{"full_name", p.FullName},
		{"line1", p.Line1},
		{"line2", p.Line2},
		{"city", p.City},
		{"state", p.State},
		{"postal_code", p.PostalCode},
		{"country", p.Country},
		{"phone", p.Phone},
	}
	var out []Assignment
	for _, f := range fields {
		if f.value != nil {
			out = append(out, Assignment{f.column, strings.TrimSpace(*f.value)})
		}
	}
	return out
}

type PaymentMethod struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"-"`
	CardType    string    `db:"card_type" json:"card_type"`
	Last4       string    `db:"last4" json:"last4"`
	HolderName  string    `db:"holder_name" json:"holder_name"`
	ExpiryMonth int       `db:"expiry_month" json:"expiry_month"`
	ExpiryYear  int       `db:"expiry_year" json:"expiry_year"`
	IsDefault   bool      `db:"is_default" json:"is_default"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PaymentMethodRequest carries the card number only long enough to derive
// the card type and last four digits. There is no CVV field.
type PaymentMethodRequest struct {
	CardNumber  string `json:"card_number"`
	HolderName  string `json:"holder_name"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	IsDefault   bool   `json:"is_default"`
}

type PaymentMethodPatch struct {
	HolderName  *string `json:"holder_name,omitempty"`
	ExpiryMonth *int    `json:"expiry_month,omitempty"`
	ExpiryYear  *int    `json:"expiry_year,omitempty"`
	IsDefault   *bool   `json:"is_default,omitempty"`
}

func (p PaymentMethodPatch) Assignments() []Assignment {
	var out []Assignment
	if p.HolderName != nil {
		out = append(out, Assignment{"holder_name", *p.HolderName})
	}
	if p.ExpiryMonth != nil {
		out = append(out, Assignment{"expiry_month", *p.ExpiryMonth})
	}
	if p.ExpiryYear != nil {
		out = append(out, Assignment{"expiry_year", *p.ExpiryYear})
	}
	return out
}
