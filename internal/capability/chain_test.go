package capability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	profile    *BusinessProfile
	resolveErr error
	reviews    *ReviewData
	reviewsErr error
	calls      int
}

func (p *scriptedProvider) ResolveBusiness(ctx context.Context, url string) (*BusinessProfile, error) {
	p.calls++
	if p.resolveErr != nil {
		return nil, p.resolveErr
	}
	return p.profile, nil
}

func (p *scriptedProvider) FetchReviews(ctx context.Context, url string) (*ReviewData, error) {
	if p.reviewsErr != nil {
		return nil, p.reviewsErr
	}
	return p.reviews, nil
}

func (p *scriptedProvider) DiscoverCompetitors(ctx context.Context, profile *BusinessProfile) ([]CompetitorInfo, error) {
	return nil, errors.New("discovery unsupported")
}

func TestChainPrimaryAnswersFirst(t *testing.T) {
	primary := &scriptedProvider{profile: &BusinessProfile{Name: "Primary Answer"}}
	fallback := &scriptedProvider{profile: &BusinessProfile{Name: "Fallback Answer"}}
	chain := NewChain(primary, fallback)

	profile, idx, err := chain.ResolveBusiness(context.Background(), "https://example.test")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "Primary Answer", profile.Name)
	assert.Zero(t, fallback.calls, "fallback must not be consulted when the primary answers")
}

func TestChainFallsBackInOrder(t *testing.T) {
	primary := &scriptedProvider{resolveErr: errors.New("timeout")}
	fallback := &scriptedProvider{profile: &BusinessProfile{Name: "Fallback Answer"}}
	chain := NewChain(primary, fallback)

	profile, idx, err := chain.ResolveBusiness(context.Background(), "https://example.test")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "Fallback Answer", profile.Name)
}

func TestChainReportsLastErrorWhenExhausted(t *testing.T) {
	firstErr := errors.New("dns failure")
	lastErr := errors.New("blocked by robots")
	chain := NewChain(
		&scriptedProvider{resolveErr: firstErr},
		&scriptedProvider{resolveErr: lastErr},
	)

	_, idx, err := chain.ResolveBusiness(context.Background(), "https://example.test")
	require.Error(t, err)
	assert.Equal(t, -1, idx)
	assert.ErrorIs(t, err, lastErr)
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	second := &scriptedProvider{profile: &BusinessProfile{Name: "Should Not Run"}}
	chain := NewChain(&scriptedProvider{resolveErr: errors.New("interrupted")}, second)

	_, _, err := chain.ResolveBusiness(ctx, "https://example.test")
	require.Error(t, err)
	assert.Zero(t, second.calls)
}

func TestChainFetchReviewsFallback(t *testing.T) {
	chain := NewChain(
		&scriptedProvider{reviewsErr: errors.New("quota")},
		&scriptedProvider{reviews: &ReviewData{Highlights: []string{"cozy place"}}},
	)

	reviews, idx, err := chain.FetchReviews(context.Background(), "https://example.test")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []string{"cozy place"}, reviews.Highlights)
}
