package services

import (
	"context"
	"errors"

	"github.com/pulsecraft/marketing-engine-backend/internal/capability"
)

// stubTextGen returns canned copy; caption scores come from the scores
// slice, one per call, repeating the last entry when exhausted.
type stubTextGen struct {
	text       string
	textErr    error
	scores     []int
	captionErr error
	calls      int
}

func (s *stubTextGen) GenerateText(ctx context.Context, prompt string) (string, error) {
	if s.textErr != nil {
		return "", s.textErr
	}
	if s.text == "" {
		return "Post consistently and feature customer voices.", nil
	}
	return s.text, nil
}

func (s *stubTextGen) GenerateCaption(ctx context.Context, prompt string) (*capability.Caption, error) {
	s.calls++
	if s.captionErr != nil {
		return nil, s.captionErr
	}
	score := 90
	if len(s.scores) > 0 {
		idx := s.calls - 1
		if idx >= len(s.scores) {
			idx = len(s.scores) - 1
		}
		score = s.scores[idx]
	}
	return &capability.Caption{Text: "Fresh roast, every morning.", Score: score}, nil
}

type stubMediaGen struct {
	imageErr error
	videoErr error
}

func (s *stubMediaGen) GenerateImage(ctx context.Context, prompt string, refs []string) (*capability.GeneratedMedia, error) {
	if s.imageErr != nil {
		return nil, s.imageErr
	}
	return &capability.GeneratedMedia{Data: []byte("png-bytes"), ContentType: "image/png"}, nil
}

func (s *stubMediaGen) GenerateVideo(ctx context.Context, prompt string, refs []string) (*capability.GeneratedMedia, error) {
	if s.videoErr != nil {
		return nil, s.videoErr
	}
	return &capability.GeneratedMedia{Data: []byte("mp4-bytes"), ContentType: "video/mp4"}, nil
}

// stubProvider implements capability.ResearchProvider with overridable
// behavior per method. Unset methods fail, matching a provider that does
// not carry the datum.
type stubProvider struct {
	resolve     func(ctx context.Context, url string) (*capability.BusinessProfile, error)
	reviews     func(ctx context.Context, url string) (*capability.ReviewData, error)
	competitors func(ctx context.Context, profile *capability.BusinessProfile) ([]capability.CompetitorInfo, error)
}

var errStubUnsupported = errors.New("not supported by this provider")

func (s *stubProvider) ResolveBusiness(ctx context.Context, url string) (*capability.BusinessProfile, error) {
	if s.resolve == nil {
		return nil, errStubUnsupported
	}
	return s.resolve(ctx, url)
}

func (s *stubProvider) FetchReviews(ctx context.Context, url string) (*capability.ReviewData, error) {
	if s.reviews == nil {
		return nil, errStubUnsupported
	}
	return s.reviews(ctx, url)
}

func (s *stubProvider) DiscoverCompetitors(ctx context.Context, profile *capability.BusinessProfile) ([]capability.CompetitorInfo, error) {
	if s.competitors == nil {
		return nil, errStubUnsupported
	}
	return s.competitors(ctx, profile)
}

// healthyProvider resolves a coffee shop with reviews and competitors
func healthyProvider() *stubProvider {
	return &stubProvider{
		resolve: func(ctx context.Context, url string) (*capability.BusinessProfile, error) {
			return &capability.BusinessProfile{
				Name:        "Example Coffee",
				URL:         url,
				Industry:    "coffee shop",
				Description: "Specialty roaster in the city center",
			}, nil
		},
		reviews: func(ctx context.Context, url string) (*capability.ReviewData, error) {
			return &capability.ReviewData{
				Highlights: []string{"great espresso", "friendly staff"},
				Sentiment:  "positive",
			}, nil
		},
		competitors: func(ctx context.Context, profile *capability.BusinessProfile) ([]capability.CompetitorInfo, error) {
			return []capability.CompetitorInfo{
				{Name: "Rival Roasters", URL: "https://rival-roasters.test"},
			}, nil
		},
	}
}
