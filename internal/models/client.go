package models

import (
	"errors"
	"strings"
	"time"
)

// WalkInClientID: the C/F (consumidor final) record, never deletable
const WalkInClientID uint = 1

var ErrClientNameRequired = errors.New("el cliente necesita nombre o NIT")

type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaxID     string    `gorm:"size:50;index" json:"taxId"`
	FirstName string    `gorm:"size:100" json:"firstName"`
	LastName  string    `gorm:"size:100" json:"lastName"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Client) IsWalkIn() bool {
	return c.ID == WalkInClientID
}

func (c *Client) Normalize() {
	c.TaxID = strings.TrimSpace(c.TaxID)
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.TaxID) == "" {
		return ErrClientNameRequired
	}
	return nil
}
