package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressEvent represents one observable step of a campaign's execution.
// Events form an append-only, strictly increasing-percentage sequence per
// campaign and are written only by the orchestrator.
type ProgressEvent struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	CampaignID string `json:"campaign_id" gorm:"type:uuid;not null;index"`

	Stage      string `json:"stage" gorm:"type:varchar(20);not null;index" example:"creative"`
	Percentage int    `json:"percentage" gorm:"not null" example:"62"`
	Message    string `json:"message" gorm:"type:text;not null" example:"Generated assets for day 3 of 7"`

	Metadata JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate is a GORM hook that runs before creating a new record
func (e *ProgressEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for the ProgressEvent model
func (ProgressEvent) TableName() string {
	return "progress_events"
}
