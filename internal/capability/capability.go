// Package capability holds thin clients for the external AI services the
// pipeline depends on: text generation, media generation and business
// research. Each client is an interface so stages can be exercised against
// test doubles, with HTTP implementations talking to the configured
// backends.
package capability

import (
	"context"
	"errors"
)

// ErrNotFound indicates the capability could not locate the requested
// subject (e.g. an unresolvable business locator).
var ErrNotFound = errors.New("capability: not found")

// Caption is a generated caption together with its self-assessed quality
// score. The scoring function is pluggable; the only assumption made
// downstream is that higher is better on a 0-100 scale.
type Caption struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// GeneratedMedia is raw generated media ready for upload to object storage
type GeneratedMedia struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// TextGenerator produces marketing copy
type TextGenerator interface {
	// GenerateText returns free-form text for a prompt
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateCaption returns a social-media caption with a quality score
	GenerateCaption(ctx context.Context, prompt string) (*Caption, error)
}

// MediaGenerator produces image and video assets
type MediaGenerator interface {
	GenerateImage(ctx context.Context, prompt string, refs []string) (*GeneratedMedia, error)
	GenerateVideo(ctx context.Context, prompt string, refs []string) (*GeneratedMedia, error)
}

// BusinessProfile is the resolved identity of a business
type BusinessProfile struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Industry    string `json:"industry,omitempty"`
	Description string `json:"description,omitempty"`
}

// ReviewData is customer review/sentiment data for a business
type ReviewData struct {
	Highlights []string `json:"highlights"`
	Sentiment  string   `json:"sentiment"`
}

// CompetitorInfo is one discovered competitor
type CompetitorInfo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ResearchProvider resolves business context from a locator. The research
// stage chains a primary provider with fallbacks; see Chain.
type ResearchProvider interface {
	// ResolveBusiness resolves the business identity behind a locator.
	// This is the research stage's only required datum.
	ResolveBusiness(ctx context.Context, url string) (*BusinessProfile, error)
	// FetchReviews gathers review/sentiment data. Optional.
	FetchReviews(ctx context.Context, url string) (*ReviewData, error)
	// DiscoverCompetitors finds competing businesses. Optional.
	DiscoverCompetitors(ctx context.Context, profile *BusinessProfile) ([]CompetitorInfo, error)
}
