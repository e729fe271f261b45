package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Backing service expects numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	ErrProductNameRequired = errors.New("el nombre del producto es obligatorio")
	ErrNegativeStock       = errors.New("el stock no puede ser negativo")
	ErrNegativePrice       = errors.New("el precio no puede ser negativo")
)

type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Code      string          `gorm:"size:100;index" json:"code"` // barcode / QR, may be empty
	Name      string          `gorm:"size:200;not null" json:"name"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// Normalize trims the free-text fields the forms send.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.TrimSpace(p.Code)
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrProductNameRequired
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}
