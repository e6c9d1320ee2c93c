package capability

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// HTTPScraperClient is the fallback research provider, backed by a generic
// web-research/scraping API. Slower and less structured than the business
// data API, but works for businesses the primary source does not cover.
type HTTPScraperClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPScraperClient(baseURL string) *HTTPScraperClient {
	return &HTTPScraperClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

type scrapeResponse struct {
	Title       string   `json:"title"`
	Industry    string   `json:"industry"`
	Description string   `json:"description"`
	Reviews     []string `json:"reviews"`
	Sentiment   string   `json:"sentiment"`
	Links       []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"related_links"`
}

func (c *HTTPScraperClient) scrape(ctx context.Context, url string) (*scrapeResponse, error) {
	var resp scrapeResponse
	body := map[string]interface{}{"url": url}
	if err := postJSON(ctx, c.client, c.baseURL+"/v1/scrape", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPScraperClient) ResolveBusiness(ctx context.Context, url string) (*BusinessProfile, error) {
	page, err := c.scrape(ctx, url)
	if err != nil {
		return nil, err
	}
	return &BusinessProfile{
		Name:        page.Title,
		URL:         url,
		Industry:    page.Industry,
		Description: page.Description,
	}, nil
}

func (c *HTTPScraperClient) FetchReviews(ctx context.Context, url string) (*ReviewData, error) {
	page, err := c.scrape(ctx, url)
	if err != nil {
		return nil, err
	}
	return &ReviewData{Highlights: page.Reviews, Sentiment: page.Sentiment}, nil
}

func (c *HTTPScraperClient) DiscoverCompetitors(ctx context.Context, profile *BusinessProfile) ([]CompetitorInfo, error) {
	page, err := c.scrape(ctx, profile.URL)
	if err != nil {
		return nil, err
	}
	competitors := make([]CompetitorInfo, 0, len(page.Links))
	for _, link := range page.Links {
		competitors = append(competitors, CompetitorInfo{Name: link.Name, URL: link.URL})
	}
	return competitors, nil
}
