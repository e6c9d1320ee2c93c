package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecraft/marketing-engine-backend/internal/capability"
	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

func researchContext(competitors ...string) *StageContext {
	return &StageContext{
		Campaign: &models.Campaign{
			ID:             "c1",
			BusinessURL:    "https://example-coffee.test",
			CompetitorURLs: competitors,
		},
	}
}

func TestResearchRequiresResolvableIdentity(t *testing.T) {
	broken := &stubProvider{
		resolve: func(ctx context.Context, url string) (*capability.BusinessProfile, error) {
			return nil, errors.New("503 from upstream")
		},
	}
	stage := NewResearchStage(capability.NewChain(broken), &stubTextGen{})

	_, err := stage.Execute(context.Background(), researchContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "business identity")
}

func TestResearchDiscoversCompetitorsWhenContextIsThin(t *testing.T) {
	// resolves the identity but has no reviews, no industry, no description
	thin := &stubProvider{
		resolve: func(ctx context.Context, url string) (*capability.BusinessProfile, error) {
			return &capability.BusinessProfile{Name: "Example Coffee", URL: url}, nil
		},
		competitors: func(ctx context.Context, profile *capability.BusinessProfile) ([]capability.CompetitorInfo, error) {
			return []capability.CompetitorInfo{{Name: "Rival Roasters", URL: "https://rival-roasters.test"}}, nil
		},
	}
	stage := NewResearchStage(capability.NewChain(thin), &stubTextGen{textErr: errors.New("no trends")})

	result, err := stage.Execute(context.Background(), researchContext())
	require.NoError(t, err)

	require.Len(t, result.Competitors, 1)
	assert.Equal(t, models.ProvenanceDiscovered, result.Competitors[0].Source)
	assert.Equal(t, models.ProvenanceAbsent, result.Reviews.Source)
	assert.Equal(t, models.ProvenanceAbsent, result.TrendsSource)
}

func TestResearchKeepsSuppliedCompetitorProvenance(t *testing.T) {
	stage := NewResearchStage(capability.NewChain(healthyProvider()), &stubTextGen{})

	result, err := stage.Execute(context.Background(), researchContext("https://www.rival-roasters.test/menu"))
	require.NoError(t, err)

	require.NotEmpty(t, result.Competitors)
	supplied := result.Competitors[0]
	assert.Equal(t, models.ProvenanceSupplied, supplied.Source)
	assert.Equal(t, "rival-roasters.test", supplied.Name)
	assert.Equal(t, "https://www.rival-roasters.test/menu", supplied.URL)
}

func TestResearchSplitsTrendLines(t *testing.T) {
	textgen := &stubTextGen{text: "- short-form video\n* user generated content\n\n• local collaborations\n"}
	stage := NewResearchStage(capability.NewChain(healthyProvider()), textgen)

	result, err := stage.Execute(context.Background(), researchContext())
	require.NoError(t, err)

	assert.Equal(t, []string{"short-form video", "user generated content", "local collaborations"}, result.Trends)
	assert.Equal(t, models.ProvenancePrimary, result.TrendsSource)
}

func TestResearchBusinessProvenanceFollowsChainIndex(t *testing.T) {
	failing := &stubProvider{
		resolve: func(ctx context.Context, url string) (*capability.BusinessProfile, error) {
			return nil, errors.New("down")
		},
	}
	stage := NewResearchStage(capability.NewChain(failing, healthyProvider()), &stubTextGen{})

	result, err := stage.Execute(context.Background(), researchContext())
	require.NoError(t, err)
	assert.Equal(t, models.ProvenanceFallback, result.Business.Source)
}
