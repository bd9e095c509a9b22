package services

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"github.com/mindgrove/mindgrove-backend/internal/domain"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

// DocumentSearcher is the similarity-search gateway over the owner's uploaded
// documents. Score on each match is the vector distance (lower is closer).
type DocumentSearcher interface {
	Search(ctx context.Context, query string, topK int, maxDistance float64) ([]domain.DocumentMatch, error)
}

type weaviateSearcher struct {
	log       *logger.Logger
	client    *weaviate.Client
	className string
}

func NewWeaviateSearcher(log *logger.Logger) (DocumentSearcher, error) {
	rawURL := strings.TrimSpace(os.Getenv("WEAVIATE_URL"))
	if rawURL == "" {
		return nil, fmt.Errorf("missing WEAVIATE_URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid WEAVIATE_URL %q", rawURL)
	}

	cfg := weaviate.Config{
		Host:   parsed.Host,
		Scheme: parsed.Scheme,
	}
	if apiKey := strings.TrimSpace(os.Getenv("WEAVIATE_API_KEY")); apiKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate client init: %w", err)
	}

	className := strings.TrimSpace(os.Getenv("WEAVIATE_CLASS"))
	if className == "" {
		className = "Document"
	}

	return &weaviateSearcher{
		log:       log.With("service", "WeaviateSearcher"),
		client:    client,
		className: className,
	}, nil
}

func (s *weaviateSearcher) Search(ctx context.Context, query string, topK int, maxDistance float64) ([]domain.DocumentMatch, error) {
	if topK <= 0 {
		topK = 5
	}
	if maxDistance <= 0 {
		maxDistance = 0.7
	}

	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query}).
		WithDistance(float32(maxDistance))

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "filename"},
		{Name: "title"},
		{Name: "description"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "distance"},
		}},
	}

	resp, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithNearText(nearText).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search: %s", resp.Errors[0].Message)
	}

	get, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return nil, nil
	}
	return decodeMatches(get, s.className), nil
}

func decodeMatches(get map[string]any, className string) []domain.DocumentMatch {
	objects, ok := get[className].([]any)
	if !ok {
		return nil
	}
	matches := make([]domain.DocumentMatch, 0, len(objects))
	for _, obj := range objects {
		props, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		match := domain.DocumentMatch{
			Filename:    stringProp(props, "filename"),
			Title:       stringProp(props, "title"),
			Description: stringProp(props, "description"),
			Content:     stringProp(props, "content"),
		}
		if add, ok := props["_additional"].(map[string]any); ok {
			match.ID = stringProp(add, "id")
			if d, ok := add["distance"].(float64); ok {
				match.Score = d
			}
		}
		matches = append(matches, match)
	}
	return matches
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}
