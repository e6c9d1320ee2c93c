package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecraft/marketing-engine-backend/internal/assets"
	"github.com/pulsecraft/marketing-engine-backend/internal/capability"
	"github.com/pulsecraft/marketing-engine-backend/internal/models"
	"github.com/pulsecraft/marketing-engine-backend/internal/store"
)

func newTestOrchestrator(gateway store.Gateway, providers ...capability.ResearchProvider) *Orchestrator {
	textgen := &stubTextGen{}
	mediagen := &stubMediaGen{}
	cfg := DefaultConfig()
	cfg.CreativeWorkers = 2
	return NewOrchestrator(gateway, SyncRunner{}, nil, capability.NewChain(providers...), textgen, mediagen, assets.NewMemoryStore(), cfg)
}

func TestCampaignHappyPath(t *testing.T) {
	gateway := store.NewMemoryStore()
	orc := newTestOrchestrator(gateway, healthyProvider())

	campaign, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{
		BusinessLocator: "https://example-coffee.test",
	})
	require.NoError(t, err)

	// SyncRunner executes inline, so the pipeline has finished
	final, err := gateway.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Nil(t, final.CurrentStage)
	require.NotNil(t, final.CompletedAt)

	require.NotNil(t, final.ResearchResult)
	require.NotNil(t, final.StrategyResult)
	require.NotNil(t, final.CreativeResult)

	assert.Equal(t, models.ProvenancePrimary, final.ResearchResult.Business.Source)
	assert.Len(t, final.StrategyResult.Days, models.CalendarDays)
	assert.Len(t, final.CreativeResult.Days, models.CalendarDays)

	// a completed campaign feeds the learning corpus
	learnings, err := gateway.Learnings(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, learnings, 1)
	assert.Equal(t, campaign.ID, learnings[0].CampaignID)
}

func TestCampaignProgressIsMonotonic(t *testing.T) {
	gateway := store.NewMemoryStore()
	orc := newTestOrchestrator(gateway, healthyProvider())

	campaign, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{
		BusinessLocator: "https://example-coffee.test",
	})
	require.NoError(t, err)

	events, err := gateway.ListProgress(context.Background(), campaign.ID)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	prev := 0
	for _, event := range events {
		assert.GreaterOrEqual(t, event.Percentage, prev, "progress regressed at stage %s", event.Stage)
		prev = event.Percentage
	}
	assert.Equal(t, 100, events[len(events)-1].Percentage)
}

func TestReviewFallbackProvenance(t *testing.T) {
	primary := healthyProvider()
	primary.reviews = func(ctx context.Context, url string) (*capability.ReviewData, error) {
		return nil, errors.New("review API quota exceeded")
	}
	fallback := &stubProvider{
		reviews: func(ctx context.Context, url string) (*capability.ReviewData, error) {
			return &capability.ReviewData{Highlights: []string{"cozy place"}, Sentiment: "positive"}, nil
		},
	}

	gateway := store.NewMemoryStore()
	orc := newTestOrchestrator(gateway, primary, fallback)

	campaign, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{
		BusinessLocator: "https://example-coffee.test",
	})
	require.NoError(t, err)

	final, err := gateway.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusCompleted, final.Status)
	require.NotNil(t, final.ResearchResult)
	assert.Equal(t, models.ProvenanceFallback, final.ResearchResult.Reviews.Source)
	assert.Equal(t, []string{"cozy place"}, final.ResearchResult.Reviews.Highlights)
}

func TestReviewsAbsentWhenAllSourcesFail(t *testing.T) {
	primary := healthyProvider()
	primary.reviews = nil

	gateway := store.NewMemoryStore()
	orc := newTestOrchestrator(gateway, primary)

	campaign, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{
		BusinessLocator: "https://example-coffee.test",
	})
	require.NoError(t, err)

	final, err := gateway.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusCompleted, final.Status)
	assert.Equal(t, models.ProvenanceAbsent, final.ResearchResult.Reviews.Source)
	assert.Empty(t, final.ResearchResult.Reviews.Highlights)
}

func TestIdentityResolutionFailureFailsCampaign(t *testing.T) {
	broken := &stubProvider{
		resolve: func(ctx context.Context, url string) (*capability.BusinessProfile, error) {
			return nil, errors.New("connection refused")
		},
	}

	gateway := store.NewMemoryStore()
	orc := newTestOrchestrator(gateway, broken)

	campaign, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{
		BusinessLocator: "https://unreachable.test",
	})
	require.NoError(t, err)

	final, err := gateway.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusFailed, final.Status)
	assert.NotEmpty(t, final.Message)
	assert.Contains(t, final.Message, "failed")
	assert.Nil(t, final.ResearchResult)
	assert.Nil(t, final.StrategyResult)
	assert.Nil(t, final.CreativeResult)

	// the last good progress (research start) is retained
	assert.Equal(t, pctResearchStart, final.Progress)
}

// payloadRejectingGateway refuses to persist the research result while
// letting every other write through, simulating a storage outage at the
// moment a stage completes.
type payloadRejectingGateway struct {
	store.Gateway
}

func (g *payloadRejectingGateway) Advance(ctx context.Context, id string, upd store.CampaignUpdate, event *models.ProgressEvent) (*models.Campaign, error) {
	if upd.Research != nil {
		return nil, fmt.Errorf("%w: connection reset", store.ErrUnavailable)
	}
	return g.Gateway.Advance(ctx, id, upd, event)
}

func TestStageResultPersistFailureFailsCampaign(t *testing.T) {
	mem := store.NewMemoryStore()
	gateway := &payloadRejectingGateway{Gateway: mem}
	orc := newTestOrchestrator(gateway, healthyProvider())

	campaign, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{
		BusinessLocator: "https://example-coffee.test",
	})
	require.NoError(t, err)

	// the stage ran, but its result could not be persisted: that is a
	// stage failure, never a silent drop
	final, err := mem.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusFailed, final.Status)
	assert.NotEmpty(t, final.Message)
	assert.Contains(t, final.Message, "unavailable")
	assert.Nil(t, final.ResearchResult)
	assert.Nil(t, final.StrategyResult)
	assert.Nil(t, final.CreativeResult)
	assert.Equal(t, pctResearchStart, final.Progress)
}

func TestSubmitInvalidLocator(t *testing.T) {
	gateway := store.NewMemoryStore()
	orc := newTestOrchestrator(gateway, healthyProvider())

	cases := []string{
		"",
		"not-a-url",
		"ftp://example.test",
		"https://",
	}
	for _, locator := range cases {
		_, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{BusinessLocator: locator})
		assert.ErrorIs(t, err, ErrInvalidLocator, "locator %q", locator)
	}

	// rejected submissions leave no record behind
	campaigns, total, err := gateway.ListCampaigns(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, campaigns)
}

func TestSubmitRejectsInvalidCompetitorLocator(t *testing.T) {
	gateway := store.NewMemoryStore()
	orc := newTestOrchestrator(gateway, healthyProvider())

	_, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{
		BusinessLocator:    "https://example-coffee.test",
		CompetitorLocators: []string{"nope"},
	})
	assert.ErrorIs(t, err, ErrInvalidLocator)
}

func TestSuppliedCompetitorsSkipDiscovery(t *testing.T) {
	provider := healthyProvider()
	discoveryCalled := false
	provider.competitors = func(ctx context.Context, profile *capability.BusinessProfile) ([]capability.CompetitorInfo, error) {
		discoveryCalled = true
		return nil, nil
	}

	gateway := store.NewMemoryStore()
	orc := newTestOrchestrator(gateway, provider)

	campaign, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{
		BusinessLocator:    "https://example-coffee.test",
		CompetitorLocators: []string{"https://rival-roasters.test"},
	})
	require.NoError(t, err)

	final, err := gateway.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	require.Len(t, final.ResearchResult.Competitors, 1)
	assert.Equal(t, models.ProvenanceSupplied, final.ResearchResult.Competitors[0].Source)
	// supplied competitors plus rich context clear the sufficiency bar
	assert.False(t, discoveryCalled)
}

func TestExecuteSkipsNonPendingCampaign(t *testing.T) {
	gateway := store.NewMemoryStore()
	orc := newTestOrchestrator(gateway, healthyProvider())

	campaign := &models.Campaign{
		BusinessURL: "https://example-coffee.test",
		Status:      models.CampaignStatusCompleted,
		Progress:    100,
	}
	require.NoError(t, gateway.CreateCampaign(context.Background(), campaign))

	orc.Execute(context.Background(), campaign.ID)

	final, err := gateway.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusCompleted, final.Status)
	assert.Nil(t, final.ResearchResult)
}

func TestLearningsFeedSubsequentStrategies(t *testing.T) {
	gateway := store.NewMemoryStore()
	orc := newTestOrchestrator(gateway, healthyProvider())

	first, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{
		BusinessLocator: "https://example-coffee.test",
	})
	require.NoError(t, err)

	second, err := orc.Submit(context.Background(), &models.CreateCampaignRequest{
		BusinessLocator: "https://other-bakery.test",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	final, err := gateway.GetCampaign(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, final.StrategyResult.LearningsApplied)
}
