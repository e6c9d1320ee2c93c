package capability

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPMediaGenerator calls an image/video generation backend. Video
// generation is slow, so it gets a longer per-call timeout than images.
type HTTPMediaGenerator struct {
	baseURL     string
	imageClient *http.Client
	videoClient *http.Client
}

func NewHTTPMediaGenerator(baseURL string) *HTTPMediaGenerator {
	return &HTTPMediaGenerator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		imageClient: &http.Client{
			Timeout: 3 * time.Minute,
		},
		videoClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

type mediaResponse struct {
	DataBase64  string `json:"data_base64"`
	ContentType string `json:"content_type"`
}

func (g *HTTPMediaGenerator) generate(ctx context.Context, client *http.Client, path, prompt string, refs []string) (*GeneratedMedia, error) {
	var resp mediaResponse
	body := map[string]interface{}{"prompt": prompt}
	if len(refs) > 0 {
		body["reference_images"] = refs
	}
	if err := postJSON(ctx, client, g.baseURL+path, body, &resp); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(resp.DataBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode media payload: %w", err)
	}
	return &GeneratedMedia{Data: data, ContentType: resp.ContentType}, nil
}

func (g *HTTPMediaGenerator) GenerateImage(ctx context.Context, prompt string, refs []string) (*GeneratedMedia, error) {
	return g.generate(ctx, g.imageClient, "/v1/images", prompt, refs)
}

func (g *HTTPMediaGenerator) GenerateVideo(ctx context.Context, prompt string, refs []string) (*GeneratedMedia, error) {
	return g.generate(ctx, g.videoClient, "/v1/videos", prompt, refs)
}
