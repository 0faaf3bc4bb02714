package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExportRecord is one published catalog snapshot in a database destination.
type ExportRecord struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	RunID       string    `json:"run_id" gorm:"type:varchar(36);index"`
	LocationID  string    `json:"location_id" gorm:"not null;index"`
	Environment string    `json:"environment" gorm:"not null"`
	ExportedAt  time.Time `json:"exported_at" gorm:"not null;index"`
	ItemCount   int       `json:"item_count"`
	Payload     string    `json:"payload" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ExportRecord) TableName() string {
	return "catalog_exports"
}

func (r *ExportRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
