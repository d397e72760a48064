package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the billed party. Country holds the free-text country name from
// address imports; CountryCode is the ISO code when known.
type Customer struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name        string    `gorm:"type:varchar(200);index;not null"`
	Email       string
	Street      string
	PostalCode  string `gorm:"type:varchar(10)"`
	City        string
	Country     string
	CountryCode string `gorm:"type:varchar(2)"`
	IsBusiness  bool   `gorm:"not null"`
	VatID       string `gorm:"type:varchar(20)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Customer) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
