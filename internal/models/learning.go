package models

import (
	"time"
)

// Learning is a best-effort summary of what worked in a completed campaign.
// The corpus is global (not scoped to a campaign), append-only and keyed by
// insertion order; later strategy runs read it to bias generation.
type Learning struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CampaignID string    `json:"campaign_id" gorm:"type:uuid;index"`
	Summary    string    `json:"summary" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the Learning model
func (Learning) TableName() string {
	return "learnings"
}
