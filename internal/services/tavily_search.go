package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mindgrove/mindgrove-backend/internal/domain"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

// SearchRequest is a general web search.
type SearchRequest struct {
	Query             string
	MaxResults        int
	SearchDepth       string
	IncludeRawContent bool
}

// NewsSearchRequest is a recency-bounded news search. TimePeriod uses Tavily
// notation ("1d", "7d", "1m").
type NewsSearchRequest struct {
	Query      string
	MaxResults int
	TimePeriod string
}

// InternetSearcher is the web/news search gateway. Both calls fail
// independently; orchestrators absorb those failures.
type InternetSearcher interface {
	Search(ctx context.Context, req SearchRequest) ([]domain.SearchResult, error)
	SearchNews(ctx context.Context, req NewsSearchRequest) ([]domain.SearchResult, error)
}

type tavilyClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewTavilyClient(log *logger.Logger) (InternetSearcher, error) {
	apiKey := os.Getenv("TAVILY_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing TAVILY_API_KEY")
	}

	baseURL := os.Getenv("TAVILY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}

	timeoutSec := 15
	if v := os.Getenv("TAVILY_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &tavilyClient{
		log:        log.With("service", "TavilyClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

func (c *tavilyClient) Search(ctx context.Context, req SearchRequest) ([]domain.SearchResult, error) {
	depth := req.SearchDepth
	if depth == "" {
		depth = "basic"
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	body := map[string]any{
		"query":               req.Query,
		"search_depth":        depth,
		"include_raw_content": req.IncludeRawContent,
		"max_results":         maxResults,
	}
	return c.search(ctx, body)
}

func (c *tavilyClient) SearchNews(ctx context.Context, req NewsSearchRequest) ([]domain.SearchResult, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	period := req.TimePeriod
	if period == "" {
		period = "7d"
	}
	body := map[string]any{
		"query":               req.Query,
		"search_depth":        "basic",
		"include_raw_content": false,
		"max_results":         maxResults,
		"include_domains": []string{
			"news.google.com", "reuters.com", "bbc.com", "cnn.com", "techcrunch.com",
		},
		"time_period": period,
	}
	return c.search(ctx, body)
}

func (c *tavilyClient) search(ctx context.Context, body map[string]any) ([]domain.SearchResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tavily http %d: %s", resp.StatusCode, string(raw))
	}

	var payload struct {
		Results []struct {
			Title         string `json:"title"`
			URL           string `json:"url"`
			Content       string `json:"content"`
			PublishedDate string `json:"published_date"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("tavily decode error: %w", err)
	}

	out := make([]domain.SearchResult, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, domain.SearchResult{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			PublishedDate: r.PublishedDate,
		})
	}
	return out, nil
}
