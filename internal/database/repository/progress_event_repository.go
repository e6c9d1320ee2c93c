package repository

import (
	"github.com/pulsecraft/marketing-engine-backend/internal/models"

	"gorm.io/gorm"
)

type ProgressEventRepository struct {
	db *gorm.DB
}

func NewProgressEventRepository(db *gorm.DB) *ProgressEventRepository {
	return &ProgressEventRepository{db: db}
}

// Create appends a progress event
func (r *ProgressEventRepository) Create(event *models.ProgressEvent) error {
	return r.db.Create(event).Error
}

// GetByCampaignID retrieves all events for a campaign in append order
func (r *ProgressEventRepository) GetByCampaignID(campaignID string) ([]*models.ProgressEvent, error) {
	var events []*models.ProgressEvent
	err := r.db.Where("campaign_id = ?", campaignID).
		Order("created_at ASC, percentage ASC").
		Find(&events).Error
	return events, err
}
