package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pulsecraft/marketing-engine-backend/internal/database/repository"
	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

// GormStore is the postgres-backed gateway
type GormStore struct {
	db           *gorm.DB
	campaignRepo *repository.CampaignRepository
	eventRepo    *repository.ProgressEventRepository
	learningRepo *repository.LearningRepository
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:           db,
		campaignRepo: repository.NewCampaignRepository(db),
		eventRepo:    repository.NewProgressEventRepository(db),
		learningRepo: repository.NewLearningRepository(db),
	}
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (s *GormStore) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	return wrapErr(s.campaignRepo.Create(campaign))
}

func (s *GormStore) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(id)
	if err != nil {
		return nil, wrapErr(err)
	}
	return campaign, nil
}

func (s *GormStore) UpdateCampaign(ctx context.Context, id string, upd CampaignUpdate) (*models.Campaign, error) {
	return s.Advance(ctx, id, upd, nil)
}

func (s *GormStore) Advance(ctx context.Context, id string, upd CampaignUpdate, event *models.ProgressEvent) (*models.Campaign, error) {
	var updated *models.Campaign
	var invariantErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaign models.Campaign
		if err := tx.First(&campaign, "id = ?", id).Error; err != nil {
			return err
		}
		if err := applyUpdate(&campaign, upd); err != nil {
			invariantErr = err
			return err
		}
		if err := tx.Save(&campaign).Error; err != nil {
			return err
		}
		if event != nil {
			event.CampaignID = id
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}
		updated = &campaign
		return nil
	})
	if err != nil {
		// lifecycle violations are caller errors, not storage outages
		if invariantErr != nil {
			return nil, invariantErr
		}
		return nil, wrapErr(err)
	}
	return updated, nil
}

func (s *GormStore) ListCampaigns(ctx context.Context, offset, limit int) ([]*models.Campaign, int64, error) {
	total, err := s.campaignRepo.Count()
	if err != nil {
		return nil, 0, wrapErr(err)
	}
	campaigns, err := s.campaignRepo.List(offset, limit)
	if err != nil {
		return nil, 0, wrapErr(err)
	}
	return campaigns, total, nil
}

func (s *GormStore) AppendProgress(ctx context.Context, event *models.ProgressEvent) error {
	return wrapErr(s.eventRepo.Create(event))
}

func (s *GormStore) ListProgress(ctx context.Context, campaignID string) ([]*models.ProgressEvent, error) {
	events, err := s.eventRepo.GetByCampaignID(campaignID)
	if err != nil {
		return nil, wrapErr(err)
	}
	return events, nil
}

func (s *GormStore) AppendLearning(ctx context.Context, learning *models.Learning) error {
	return wrapErr(s.learningRepo.Create(learning))
}

func (s *GormStore) Learnings(ctx context.Context, limit int) ([]*models.Learning, error) {
	learnings, err := s.learningRepo.GetRecent(limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	if learnings == nil {
		learnings = []*models.Learning{}
	}
	return learnings, nil
}
