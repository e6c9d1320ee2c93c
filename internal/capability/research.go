package capability

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// HTTPBusinessDataClient is the primary research provider, backed by a
// structured business-data/reviews API.
type HTTPBusinessDataClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPBusinessDataClient(baseURL string) *HTTPBusinessDataClient {
	return &HTTPBusinessDataClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (c *HTTPBusinessDataClient) ResolveBusiness(ctx context.Context, url string) (*BusinessProfile, error) {
	var resp BusinessProfile
	body := map[string]interface{}{"url": url}
	if err := postJSON(ctx, c.client, c.baseURL+"/v1/business/resolve", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPBusinessDataClient) FetchReviews(ctx context.Context, url string) (*ReviewData, error) {
	var resp ReviewData
	body := map[string]interface{}{"url": url}
	if err := postJSON(ctx, c.client, c.baseURL+"/v1/business/reviews", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPBusinessDataClient) DiscoverCompetitors(ctx context.Context, profile *BusinessProfile) ([]CompetitorInfo, error) {
	var resp struct {
		Competitors []CompetitorInfo `json:"competitors"`
	}
	body := map[string]interface{}{"url": profile.URL, "industry": profile.Industry}
	if err := postJSON(ctx, c.client, c.baseURL+"/v1/business/competitors", body, &resp); err != nil {
		return nil, err
	}
	return resp.Competitors, nil
}
