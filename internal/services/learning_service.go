package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pulsecraft/marketing-engine-backend/internal/models"
	"github.com/pulsecraft/marketing-engine-backend/internal/store"
)

// LearningService maintains the global append-only corpus of observations
// from completed campaigns. The corpus is strictly best-effort: reads
// degrade to nothing and writes never affect campaign outcomes.
type LearningService struct {
	store store.Gateway
}

func NewLearningService(gateway store.Gateway) *LearningService {
	return &LearningService{store: gateway}
}

// ExtractAndStore summarizes what worked in a completed campaign and
// appends it to the corpus.
func (s *LearningService) ExtractAndStore(ctx context.Context, campaign *models.Campaign) error {
	if campaign.Status != models.CampaignStatusCompleted || campaign.CreativeResult == nil || campaign.StrategyResult == nil {
		return nil
	}

	summary := buildSummary(campaign)
	if summary == "" {
		return nil
	}

	learning := &models.Learning{
		CampaignID: campaign.ID,
		Summary:    summary,
	}
	if err := s.store.AppendLearning(ctx, learning); err != nil {
		return fmt.Errorf("failed to append learning: %w", err)
	}
	logrus.Infof("Recorded learning from campaign %s", campaign.ID)
	return nil
}

// buildSummary picks the highest-scoring captions and notes degradations.
// Only observed outcomes go in; nothing is invented.
func buildSummary(campaign *models.Campaign) string {
	themeByDay := make(map[int]string)
	for _, day := range campaign.StrategyResult.Days {
		themeByDay[day.Day] = day.Theme
	}

	var bestTheme string
	bestScore := -1
	degraded := 0
	for i := range campaign.CreativeResult.Days {
		day := &campaign.CreativeResult.Days[i]
		if day.Degraded {
			degraded++
		}
		if day.Caption != "" && day.CaptionScore > bestScore {
			bestScore = day.CaptionScore
			bestTheme = themeByDay[day.Day]
		}
	}
	if bestTheme == "" {
		return ""
	}

	parts := []string{
		fmt.Sprintf("theme %q scored best (%d)", bestTheme, bestScore),
	}
	if degraded > 0 {
		parts = append(parts, fmt.Sprintf("%d of %d days degraded", degraded, len(campaign.CreativeResult.Days)))
	}
	return strings.Join(parts, "; ")
}

// Texts returns the most recent learning summaries in insertion order.
// Any read failure is logged and an empty slice returned, so a broken
// corpus never blocks new campaigns.
func (s *LearningService) Texts(ctx context.Context, limit int) []string {
	learnings, err := s.store.Learnings(ctx, limit)
	if err != nil {
		logrus.Warnf("Learning corpus unavailable, continuing without it: %v", err)
		return nil
	}

	texts := make([]string, 0, len(learnings))
	for _, l := range learnings {
		texts = append(texts, l.Summary)
	}
	return texts
}
