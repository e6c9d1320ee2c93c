package repository

import (
	"github.com/pulsecraft/marketing-engine-backend/internal/models"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create creates a new campaign
func (r *CampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.First(&campaign, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Save persists the full campaign record
func (r *CampaignRepository) Save(campaign *models.Campaign) error {
	return r.db.Save(campaign).Error
}

// List retrieves campaigns newest-first with offset/limit pagination
func (r *CampaignRepository) List(offset, limit int) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	err := r.db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&campaigns).Error
	return campaigns, err
}

// Count returns the total number of campaigns
func (r *CampaignRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&models.Campaign{}).Count(&total).Error
	return total, err
}
