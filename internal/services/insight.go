package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mindgrove/mindgrove-backend/internal/domain"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

const (
	documentTopK        = 5
	documentMaxDistance = 0.7
	newsTimePeriod      = "7d"
)

// EnrichRequest asks for an insight pass over one topic. Question defaults to
// a comprehensive-insights question about the topic; MaxResults 0 lets each
// search gateway apply its own default.
type EnrichRequest struct {
	CanvasID          string `json:"canvasId"`
	TopicID           string `json:"topicNodeId"`
	Question          string `json:"question,omitempty"`
	SystemInstruction string `json:"systemInstruction,omitempty"`
	IncludeWebSearch  bool   `json:"includeWebSearch,omitempty"`
	IncludeNewsSearch bool   `json:"includeNewsSearch,omitempty"`
	MaxResults        int    `json:"maxResults,omitempty"`
}

// InsightResult is the full bundle of one enrichment pass. The same bundle is
// merged into the topic's knowledge blob before it is returned.
type InsightResult struct {
	Insights        string                 `json:"insights"`
	TopicID         string                 `json:"topicNodeId"`
	CanvasID        string                 `json:"canvasId"`
	Question        string                 `json:"question"`
	GeneratedAt     string                 `json:"generatedAt"`
	WebResults      []domain.SearchResult  `json:"webSearchResults,omitempty"`
	NewsResults     []domain.SearchResult  `json:"newsSearchResults,omitempty"`
	DocumentContext []domain.DocumentMatch `json:"documentContext,omitempty"`
}

// InsightService enriches a topic with model-generated insights grounded in
// the owner's documents and fresh web/news results. Gateway failures degrade
// the context instead of failing the pass; only the model call is load-bearing.
type InsightService struct {
	log      *logger.Logger
	topics   TopicStore
	model    TextGenerator
	docs     DocumentSearcher
	internet InternetSearcher

	now func() time.Time
}

// NewInsightService wires the orchestrator. docs and internet may be nil;
// the corresponding context sections are then omitted.
func NewInsightService(log *logger.Logger, topics TopicStore, model TextGenerator, docs DocumentSearcher, internet InternetSearcher) *InsightService {
	return &InsightService{
		log:      log.With("service", "InsightService"),
		topics:   topics,
		model:    model,
		docs:     docs,
		internet: internet,
		now:      time.Now,
	}
}

func (s *InsightService) Enrich(ctx context.Context, req EnrichRequest) (*InsightResult, error) {
	topic, err := s.topics.GetTopic(ctx, req.TopicID)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to get topic node: %v", err)
	}
	if topic == nil {
		return nil, wrap(ErrTopicNotFound, "%s", req.TopicID)
	}

	topicPath, err := s.topics.PathToRoot(ctx, topic.ID, req.CanvasID)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to get topic path: %v", err)
	}

	docContext, webResults, newsResults := s.gatherContext(ctx, topic.Name, req)

	prompt := BuildInsightPrompt(InsightPromptInput{
		SystemInstruction: req.SystemInstruction,
		TopicPath:         topicPath,
		Documents:         docContext,
		WebResults:        webResults,
		Now:               s.now(),
	})

	question := req.Question
	if question == "" {
		question = fmt.Sprintf("Provide comprehensive insights about: %s", topic.Name)
	}

	insights, err := s.model.Generate(ctx, fmt.Sprintf("Provide a comprehensive analysis of: %s", question), GenerateConfig{
		SystemPrompt:    prompt,
		EnableReasoning: true,
	})
	if err != nil {
		return nil, wrap(ErrAIService, "%v", err)
	}

	generatedAt := s.now().UTC().Format(time.RFC3339)
	result := &InsightResult{
		Insights:        insights,
		TopicID:         req.TopicID,
		CanvasID:        req.CanvasID,
		Question:        question,
		GeneratedAt:     generatedAt,
		WebResults:      webResults,
		NewsResults:     newsResults,
		DocumentContext: docContext,
	}

	// The caller gets the computed result even when the write below fails;
	// the enrichment is then simply absent from the stored history.
	if err := s.persist(ctx, topic, result); err != nil {
		s.log.Error("failed to persist enrichment", "topic_id", req.TopicID, "error", err.Error())
	}

	return result, nil
}

// gatherContext runs the three context lookups concurrently. Each failure is
// logged and absorbed; a failed lookup contributes an empty section.
func (s *InsightService) gatherContext(ctx context.Context, topicName string, req EnrichRequest) (docs []domain.DocumentMatch, web, news []domain.SearchResult) {
	g, gctx := errgroup.WithContext(ctx)

	if s.docs != nil {
		g.Go(func() error {
			results, err := s.docs.Search(gctx, topicName, documentTopK, documentMaxDistance)
			if err != nil {
				s.log.Warn("document search failed", "error", err.Error())
				return nil
			}
			docs = results
			return nil
		})
	}

	if req.IncludeWebSearch && s.internet != nil {
		g.Go(func() error {
			results, err := s.internet.Search(gctx, SearchRequest{
				Query:       fmt.Sprintf("%s %d", topicName, s.now().Year()),
				MaxResults:  req.MaxResults,
				SearchDepth: "basic",
			})
			if err != nil {
				s.log.Warn("web search failed", "error", err.Error())
				return nil
			}
			web = results
			return nil
		})
	}

	if req.IncludeNewsSearch && s.internet != nil {
		g.Go(func() error {
			results, err := s.internet.SearchNews(gctx, NewsSearchRequest{
				Query:      topicName,
				MaxResults: req.MaxResults,
				TimePeriod: newsTimePeriod,
			})
			if err != nil {
				s.log.Warn("news search failed", "error", err.Error())
				return nil
			}
			news = results
			return nil
		})
	}

	_ = g.Wait()
	return docs, web, news
}

func (s *InsightService) persist(ctx context.Context, topic *domain.Topic, result *InsightResult) error {
	knowledge := domain.ParseTopicKnowledge(topic.Knowledge)
	knowledge.GoogleSearchStatus = "completed"
	knowledge.LatestGoogleSearch = &domain.LatestEnrichment{
		Insights:        result.Insights,
		WebResults:      result.WebResults,
		NewsResults:     result.NewsResults,
		DocumentContext: result.DocumentContext,
		GeneratedAt:     result.GeneratedAt,
		Question:        result.Question,
	}
	knowledge.AppendHistory(domain.EnrichmentRecord{
		Timestamp:   result.GeneratedAt,
		WebResults:  result.WebResults,
		NewsResults: result.NewsResults,
		Insights:    result.Insights,
	})

	encoded, err := knowledge.Encode()
	if err != nil {
		return fmt.Errorf("encode knowledge: %w", err)
	}
	if _, err := s.topics.UpdateKnowledge(ctx, topic.ID, encoded); err != nil {
		return fmt.Errorf("update topic node: %w", err)
	}
	return nil
}
