// Package store provides the persistence gateway for campaign records,
// progress event logs and the shared learning corpus, behind a
// storage-agnostic interface so the orchestrator can be tested against an
// in-memory double.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

// ErrNotFound is returned when a campaign id is unknown
var ErrNotFound = errors.New("campaign not found")

// ErrUnavailable marks connectivity failures of the backing store. The
// orchestrator treats a failed persist of a stage result as a stage failure
// rather than proceeding as if the write succeeded.
var ErrUnavailable = errors.New("persistence unavailable")

// CampaignUpdate is a partial update of a campaign record. Nil fields are
// left untouched.
type CampaignUpdate struct {
	Status      *models.CampaignStatus
	Stage       *string
	ClearStage  bool
	Progress    *int
	Message     *string
	Research    *models.ResearchResult
	Strategy    *models.StrategyResult
	Creative    *models.CreativeResult
	CompletedAt *time.Time
}

// Gateway is the persistence interface the orchestrator and access layer
// depend on.
type Gateway interface {
	CreateCampaign(ctx context.Context, campaign *models.Campaign) error
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	UpdateCampaign(ctx context.Context, id string, upd CampaignUpdate) (*models.Campaign, error)

	// Advance applies a partial update and appends a progress event as one
	// atomic step: a reader never observes the status transition without the
	// stage result that produced it.
	Advance(ctx context.Context, id string, upd CampaignUpdate, event *models.ProgressEvent) (*models.Campaign, error)

	ListCampaigns(ctx context.Context, offset, limit int) ([]*models.Campaign, int64, error)

	AppendProgress(ctx context.Context, event *models.ProgressEvent) error
	ListProgress(ctx context.Context, campaignID string) ([]*models.ProgressEvent, error)

	// AppendLearning adds to the global learning corpus; Learnings returns an
	// empty slice, never an error, when the corpus is empty.
	AppendLearning(ctx context.Context, learning *models.Learning) error
	Learnings(ctx context.Context, limit int) ([]*models.Learning, error)
}

// applyUpdate mutates the campaign in place, enforcing the lifecycle
// invariants: status never regresses, progress is non-decreasing and stage
// payloads are written exactly once.
func applyUpdate(campaign *models.Campaign, upd CampaignUpdate) error {
	if upd.Status != nil && *upd.Status != campaign.Status {
		if !campaign.Status.CanTransitionTo(*upd.Status) {
			return fmt.Errorf("illegal status transition %s -> %s for campaign %s",
				campaign.Status, *upd.Status, campaign.ID)
		}
		campaign.Status = *upd.Status
	}
	if upd.Stage != nil {
		campaign.CurrentStage = upd.Stage
	}
	if upd.ClearStage {
		campaign.CurrentStage = nil
	}
	if upd.Progress != nil && *upd.Progress > campaign.Progress {
		campaign.Progress = *upd.Progress
	}
	if upd.Message != nil {
		campaign.Message = *upd.Message
	}
	if upd.Research != nil {
		if campaign.ResearchResult != nil {
			return fmt.Errorf("research result already written for campaign %s", campaign.ID)
		}
		campaign.ResearchResult = upd.Research
	}
	if upd.Strategy != nil {
		if campaign.StrategyResult != nil {
			return fmt.Errorf("strategy result already written for campaign %s", campaign.ID)
		}
		campaign.StrategyResult = upd.Strategy
	}
	if upd.Creative != nil {
		if campaign.CreativeResult != nil {
			return fmt.Errorf("creative result already written for campaign %s", campaign.ID)
		}
		campaign.CreativeResult = upd.Creative
	}
	if upd.CompletedAt != nil {
		campaign.CompletedAt = upd.CompletedAt
	}
	return nil
}
