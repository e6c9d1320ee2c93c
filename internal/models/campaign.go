package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignStatus represents the lifecycle state of a campaign
type CampaignStatus string

const (
	CampaignStatusPending      CampaignStatus = "pending"
	CampaignStatusResearching  CampaignStatus = "researching"
	CampaignStatusStrategizing CampaignStatus = "strategizing"
	CampaignStatusProducing    CampaignStatus = "producing"
	CampaignStatusCompleted    CampaignStatus = "completed"
	CampaignStatusFailed       CampaignStatus = "failed"
)

// statusRank orders the lifecycle so transitions can be checked for regression.
// failed is reachable from any non-terminal state.
var statusRank = map[CampaignStatus]int{
	CampaignStatusPending:      0,
	CampaignStatusResearching:  1,
	CampaignStatusStrategizing: 2,
	CampaignStatusProducing:    3,
	CampaignStatusCompleted:    4,
	CampaignStatusFailed:       5,
}

// Terminal reports whether the status is a terminal state
func (s CampaignStatus) Terminal() bool {
	return s == CampaignStatusCompleted || s == CampaignStatusFailed
}

// CanTransitionTo reports whether moving from s to next respects the lifecycle order
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == CampaignStatusFailed {
		return true
	}
	return statusRank[next] >= statusRank[s]
}

// Campaign represents one end-to-end content generation run for a business
type Campaign struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`

	// Submission input
	BusinessURL    string     `json:"business_url" gorm:"type:text;not null"`
	CompetitorURLs StringList `json:"competitor_urls" gorm:"type:jsonb"`

	// Lifecycle
	Status       CampaignStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CurrentStage *string        `json:"current_stage" gorm:"type:varchar(20)"`
	Progress     int            `json:"progress" gorm:"default:0"` // 0-100, non-decreasing
	Message      string         `json:"message" gorm:"type:text"`

	// Stage payloads, written exactly once each when the stage completes
	ResearchResult *ResearchResult `json:"research_result,omitempty" gorm:"type:jsonb;serializer:json"`
	StrategyResult *StrategyResult `json:"strategy_result,omitempty" gorm:"type:jsonb;serializer:json"`
	CreativeResult *CreativeResult `json:"creative_result,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// BeforeCreate is a GORM hook that runs before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	BusinessLocator    string   `json:"business_locator" binding:"required" example:"https://example-coffee.test"`
	CompetitorLocators []string `json:"competitor_locators,omitempty" example:"https://rival-roasters.test"`
}

// CreateCampaignResponse represents the response after accepting a campaign
type CreateCampaignResponse struct {
	CampaignID string `json:"campaign_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status     string `json:"status" example:"processing"`
}

// CampaignStatusResponse represents the polling view of a running campaign
type CampaignStatusResponse struct {
	CampaignID   string  `json:"campaign_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status       string  `json:"status" example:"producing"`
	Progress     int     `json:"progress_percentage" example:"62"`
	CurrentStage *string `json:"current_stage" example:"creative"`
	Message      string  `json:"message" example:"Generating assets for day 3 of 7"`
}

// CampaignResultResponse carries whatever stage payloads exist so far
type CampaignResultResponse struct {
	CampaignID     string          `json:"campaign_id"`
	Status         string          `json:"status"`
	Progress       int             `json:"progress_percentage"`
	Message        string          `json:"message,omitempty"`
	ResearchResult *ResearchResult `json:"research_result,omitempty"`
	StrategyResult *StrategyResult `json:"strategy_result,omitempty"`
	CreativeResult *CreativeResult `json:"creative_result,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// ToStatusResponse builds the polling status view
func (c *Campaign) ToStatusResponse() *CampaignStatusResponse {
	return &CampaignStatusResponse{
		CampaignID:   c.ID,
		Status:       string(c.Status),
		Progress:     c.Progress,
		CurrentStage: c.CurrentStage,
		Message:      c.Message,
	}
}

// ToResultResponse builds the progressive-reveal result view
func (c *Campaign) ToResultResponse() *CampaignResultResponse {
	return &CampaignResultResponse{
		CampaignID:     c.ID,
		Status:         string(c.Status),
		Progress:       c.Progress,
		Message:        c.Message,
		ResearchResult: c.ResearchResult,
		StrategyResult: c.StrategyResult,
		CreativeResult: c.CreativeResult,
		CreatedAt:      c.CreatedAt,
		CompletedAt:    c.CompletedAt,
	}
}
