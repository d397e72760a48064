package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity severities.
const (
	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
)

// Activity is one entry of the company activity stream (billing runs, document
// changes). Rows are append-only.
type Activity struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID   *uuid.UUID `gorm:"type:uuid;index"`
	Domain      string     `gorm:"type:varchar(30);not null;index"` // BILLING | DOCUMENT | CONTRACT
	Type        string     `gorm:"type:varchar(50);not null"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	Actor       string     `gorm:"type:varchar(100)"`
	Severity    string     `gorm:"type:varchar(10);not null"`
	CreatedAt   time.Time  `gorm:"index"`
}

func (a *Activity) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
