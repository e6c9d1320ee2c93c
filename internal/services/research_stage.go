package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pulsecraft/marketing-engine-backend/internal/capability"
	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

// minContextDataPoints is the sufficiency threshold for autonomous
// competitor discovery: with fewer gathered data points, or no competitors
// at all, the stage searches for more context.
const minContextDataPoints = 3

// ResearchStage resolves the business identity and gathers market context.
// Identity resolution is the only required datum; everything else degrades
// to absent when all sources are exhausted.
type ResearchStage struct {
	chain   *capability.Chain
	textgen capability.TextGenerator
}

func NewResearchStage(chain *capability.Chain, textgen capability.TextGenerator) *ResearchStage {
	return &ResearchStage{chain: chain, textgen: textgen}
}

func (s *ResearchStage) Execute(ctx context.Context, sc *StageContext) (*models.ResearchResult, error) {
	campaign := sc.Campaign

	// Required datum: a resolvable business identity
	profile, providerIdx, err := s.chain.ResolveBusiness(ctx, campaign.BusinessURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve business identity: %w", err)
	}

	result := &models.ResearchResult{
		Business: models.BusinessContext{
			Name:        profile.Name,
			URL:         campaign.BusinessURL,
			Industry:    profile.Industry,
			Description: profile.Description,
			Source:      provenanceFor(providerIdx),
		},
		Competitors:  []models.Competitor{},
		Reviews:      models.ReviewSummary{Source: models.ProvenanceAbsent},
		TrendsSource: models.ProvenanceAbsent,
	}

	// Caller-supplied competitors
	for _, locator := range campaign.CompetitorURLs {
		result.Competitors = append(result.Competitors, models.Competitor{
			Name:   hostOf(locator),
			URL:    locator,
			Source: models.ProvenanceSupplied,
		})
	}

	// Reviews are optional: fallback chain, then absent
	if reviews, idx, err := s.chain.FetchReviews(ctx, campaign.BusinessURL); err == nil {
		result.Reviews = models.ReviewSummary{
			Highlights: reviews.Highlights,
			Sentiment:  reviews.Sentiment,
			Source:     provenanceFor(idx),
		}
	} else {
		logrus.Warnf("Campaign %s: review data unavailable from all sources: %v", campaign.ID, err)
	}

	// Market trend notes are optional
	if trends, err := s.fetchTrends(ctx, result); err == nil && len(trends) > 0 {
		result.Trends = trends
		result.TrendsSource = models.ProvenancePrimary
	} else if err != nil {
		logrus.Warnf("Campaign %s: trend notes unavailable: %v", campaign.ID, err)
	}

	// Autonomous competitor discovery when the supplied context is thin
	if s.insufficientContext(result) {
		if discovered, _, err := s.chain.DiscoverCompetitors(ctx, profile); err == nil {
			for _, competitor := range discovered {
				result.Competitors = append(result.Competitors, models.Competitor{
					Name:   competitor.Name,
					URL:    competitor.URL,
					Source: models.ProvenanceDiscovered,
				})
			}
		} else {
			logrus.Warnf("Campaign %s: competitor discovery failed on all sources: %v", campaign.ID, err)
		}
	}

	return result, nil
}

// insufficientContext is the deterministic sufficiency predicate behind the
// "should I search for more?" decision.
func (s *ResearchStage) insufficientContext(result *models.ResearchResult) bool {
	return len(result.Competitors) == 0 || result.DataPoints() < minContextDataPoints
}

func (s *ResearchStage) fetchTrends(ctx context.Context, result *models.ResearchResult) ([]string, error) {
	prompt := fmt.Sprintf(
		"List current social media marketing trends for the %s industry, one per line. Business: %s",
		result.Business.Industry, result.Business.Name)
	text, err := s.textgen.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var trends []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		if line != "" {
			trends = append(trends, line)
		}
	}
	return trends, nil
}

func hostOf(locator string) string {
	parsed, err := url.Parse(locator)
	if err != nil || parsed.Host == "" {
		return locator
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
