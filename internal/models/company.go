package models

import "time"

// CompanyID: the company record is a singleton
const CompanyID uint = 1

type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200" json:"name"`
	Location  string    `gorm:"size:255" json:"location"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Modified  bool      `gorm:"-" json:"modified"`
	UpdatedAt time.Time `json:"-"`
}

// Normalized fills the id the service sometimes omits.
func (c Company) Normalized() Company {
	if c.ID == 0 {
		c.ID = CompanyID
	}
	return c
}
