package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecraft/marketing-engine-backend/internal/models"
	"github.com/pulsecraft/marketing-engine-backend/internal/store"
)

func completedCampaignFixture() *models.Campaign {
	return &models.Campaign{
		ID:     "c1",
		Status: models.CampaignStatusCompleted,
		StrategyResult: &models.StrategyResult{
			Days: []models.DayPlan{
				{Day: 1, Theme: "Brand story"},
				{Day: 2, Theme: "Social proof"},
			},
		},
		CreativeResult: &models.CreativeResult{
			Days: []models.DayAssets{
				{Day: 1, Caption: "a", CaptionScore: 70},
				{Day: 2, Caption: "b", CaptionScore: 91, Degraded: true, DegradedNote: "video generation failed"},
			},
		},
	}
}

func TestExtractAndStoreRecordsBestTheme(t *testing.T) {
	gateway := store.NewMemoryStore()
	svc := NewLearningService(gateway)

	require.NoError(t, svc.ExtractAndStore(context.Background(), completedCampaignFixture()))

	learnings, err := gateway.Learnings(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, learnings, 1)
	assert.Contains(t, learnings[0].Summary, "Social proof")
	assert.Contains(t, learnings[0].Summary, "91")
	assert.Contains(t, learnings[0].Summary, "1 of 2 days degraded")
}

func TestExtractAndStoreIgnoresIncompleteCampaigns(t *testing.T) {
	gateway := store.NewMemoryStore()
	svc := NewLearningService(gateway)

	failed := completedCampaignFixture()
	failed.Status = models.CampaignStatusFailed
	require.NoError(t, svc.ExtractAndStore(context.Background(), failed))

	noCreative := completedCampaignFixture()
	noCreative.CreativeResult = nil
	require.NoError(t, svc.ExtractAndStore(context.Background(), noCreative))

	learnings, err := gateway.Learnings(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, learnings)
}

func TestTextsReturnsInsertionOrder(t *testing.T) {
	gateway := store.NewMemoryStore()
	svc := NewLearningService(gateway)

	for _, summary := range []string{"first", "second", "third"} {
		require.NoError(t, gateway.AppendLearning(context.Background(), &models.Learning{
			CampaignID: "c", Summary: summary,
		}))
	}

	texts := svc.Texts(context.Background(), 2)
	assert.Equal(t, []string{"second", "third"}, texts)
}

func TestTextsEmptyCorpus(t *testing.T) {
	svc := NewLearningService(store.NewMemoryStore())
	assert.Empty(t, svc.Texts(context.Background(), 10))
}
