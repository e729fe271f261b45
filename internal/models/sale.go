package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale: a server-confirmed sale. Total is computed server-side and trusted on read-back.
type Sale struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ClientID  uint            `gorm:"index;not null" json:"clientId"`
	Client    *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Seller    string          `gorm:"size:100" json:"seller"`
	Date      time.Time       `gorm:"index;not null" json:"date"`
	Timestamp time.Time       `gorm:"-" json:"timestamp"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Items     []SaleItem      `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	CreatedAt time.Time       `json:"-"`
}

type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"index;not null" json:"-"`
	ProductID uint            `gorm:"index;not null" json:"productId"`
	Name      string          `gorm:"size:200" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

func (i SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OccurredAt prefers the server date and falls back to the submitted timestamp.
func (s Sale) OccurredAt() time.Time {
	if !s.Date.IsZero() {
		return s.Date
	}
	return s.Timestamp
}

// HasDetail reports whether the record carries resolved items and client.
func (s Sale) HasDetail() bool {
	return len(s.Items) > 0 && s.Client != nil
}

// ItemsTotal: Σ quantity×price
func (s Sale) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// SaleRequest: POST /sales body
type SaleRequest struct {
	ClientID       uint              `json:"clientId"`
	Seller         string            `json:"seller"`
	Timestamp      time.Time         `json:"timestamp"`
	Items          []SaleItemRequest `json:"items"`
	IdempotencyKey string            `json:"-"`
}

type SaleItemRequest struct {
	ProductID uint            `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// SaleReceipt: POST /sales response, at least {id, total, date}
type SaleReceipt struct {
	ID    uint            `json:"id"`
	Total decimal.Decimal `json:"total"`
	Date  time.Time       `json:"date"`
}
