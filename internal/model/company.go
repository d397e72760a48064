package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the issuing party (Mandant). CountryCode drives the domestic check
// of tax determination.
type Company struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(200);not null"`
	CountryCode string    `gorm:"type:varchar(2);not null"`
	VatID       string    `gorm:"type:varchar(20)"`
	Street      string
	PostalCode  string `gorm:"type:varchar(10)"`
	City        string
	Email       string
	IBAN        string `gorm:"type:varchar(34);column:iban"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Company) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
