package capability

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// HTTPTextGenerator calls an LLM text-generation backend
type HTTPTextGenerator struct {
	baseURL string
	client  *http.Client
}

func NewHTTPTextGenerator(baseURL string) *HTTPTextGenerator {
	return &HTTPTextGenerator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (g *HTTPTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	body := map[string]interface{}{"prompt": prompt}
	if err := postJSON(ctx, g.client, g.baseURL+"/v1/generate", body, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (g *HTTPTextGenerator) GenerateCaption(ctx context.Context, prompt string) (*Caption, error) {
	var resp Caption
	body := map[string]interface{}{"prompt": prompt, "score": true}
	if err := postJSON(ctx, g.client, g.baseURL+"/v1/caption", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
