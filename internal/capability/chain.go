package capability

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Chain tries a list of research providers in order, primary first. Each
// call reports which provider answered (0 = primary) so stages can record
// provenance. A datum is only given up on once every provider has failed.
type Chain struct {
	providers []ResearchProvider
}

func NewChain(providers ...ResearchProvider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) ResolveBusiness(ctx context.Context, url string) (*BusinessProfile, int, error) {
	var lastErr error
	for i, provider := range c.providers {
		profile, err := provider.ResolveBusiness(ctx, url)
		if err == nil {
			return profile, i, nil
		}
		logrus.Warnf("Research provider %d failed to resolve %s: %v", i, url, err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, -1, fmt.Errorf("all research providers failed to resolve business: %w", lastErr)
}

func (c *Chain) FetchReviews(ctx context.Context, url string) (*ReviewData, int, error) {
	var lastErr error
	for i, provider := range c.providers {
		reviews, err := provider.FetchReviews(ctx, url)
		if err == nil {
			return reviews, i, nil
		}
		logrus.Warnf("Research provider %d failed to fetch reviews for %s: %v", i, url, err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, -1, fmt.Errorf("all research providers failed to fetch reviews: %w", lastErr)
}

func (c *Chain) DiscoverCompetitors(ctx context.Context, profile *BusinessProfile) ([]CompetitorInfo, int, error) {
	var lastErr error
	for i, provider := range c.providers {
		competitors, err := provider.DiscoverCompetitors(ctx, profile)
		if err == nil {
			return competitors, i, nil
		}
		logrus.Warnf("Research provider %d failed to discover competitors for %s: %v", i, profile.URL, err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, -1, fmt.Errorf("all research providers failed to discover competitors: %w", lastErr)
}
