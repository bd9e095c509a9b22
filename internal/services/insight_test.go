package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mindgrove/mindgrove-backend/internal/domain"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

func newInsightService(t *testing.T, topics TopicStore, model TextGenerator, docs DocumentSearcher, internet InternetSearcher) *InsightService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	svc := NewInsightService(log, topics, model, docs, internet)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestEnrichInitializesEmptyKnowledge(t *testing.T) {
	topic := testTopic("c1", "Photosynthesis")
	topics := newFakeTopicStore(topic)
	topics.paths[topic.ID] = []string{"Biology", "Photosynthesis"}
	model := &fakeGenerator{response: "Detailed analysis."}

	svc := newInsightService(t, topics, model, nil, nil)
	result, err := svc.Enrich(context.Background(), EnrichRequest{CanvasID: "c1", TopicID: topic.ID})
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if result.Insights != "Detailed analysis." {
		t.Fatalf("insights: got=%q", result.Insights)
	}
	if result.Question != "Provide comprehensive insights about: Photosynthesis" {
		t.Fatalf("default question: got=%q", result.Question)
	}

	knowledge := domain.ParseTopicKnowledge(topic.Knowledge)
	if knowledge.GoogleSearchStatus != "completed" {
		t.Fatalf("status: want=completed got=%q", knowledge.GoogleSearchStatus)
	}
	if got := len(knowledge.SearchHistory); got != 1 {
		t.Fatalf("history length after first enrichment: want=1 got=%d", got)
	}
	if knowledge.LatestGoogleSearch == nil || knowledge.LatestGoogleSearch.Insights != "Detailed analysis." {
		t.Fatalf("latest enrichment not recorded: %+v", knowledge.LatestGoogleSearch)
	}
}

func TestEnrichHistoryCap(t *testing.T) {
	topic := testTopic("c1", "Photosynthesis")
	topics := newFakeTopicStore(topic)
	model := &fakeGenerator{}

	svc := newInsightService(t, topics, model, nil, nil)
	for i := 0; i < 6; i++ {
		model.response = fmt.Sprintf("analysis %d", i)
		if _, err := svc.Enrich(context.Background(), EnrichRequest{CanvasID: "c1", TopicID: topic.ID}); err != nil {
			t.Fatalf("Enrich %d: %v", i, err)
		}
	}

	knowledge := domain.ParseTopicKnowledge(topic.Knowledge)
	if got := len(knowledge.SearchHistory); got != domain.MaxSearchHistory {
		t.Fatalf("history length after 6 enrichments: want=%d got=%d", domain.MaxSearchHistory, got)
	}
	if knowledge.SearchHistory[0].Insights != "analysis 1" {
		t.Fatalf("oldest surviving entry: want=%q got=%q", "analysis 1", knowledge.SearchHistory[0].Insights)
	}
	if knowledge.SearchHistory[4].Insights != "analysis 5" {
		t.Fatalf("newest entry: want=%q got=%q", "analysis 5", knowledge.SearchHistory[4].Insights)
	}
}

func TestEnrichTopicNotFound(t *testing.T) {
	svc := newInsightService(t, newFakeTopicStore(), &fakeGenerator{}, nil, nil)
	_, err := svc.Enrich(context.Background(), EnrichRequest{CanvasID: "c1", TopicID: "missing"})
	if !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("error kind: want=ErrTopicNotFound got=%v", err)
	}
}

func TestEnrichGatewayFailuresAreSoft(t *testing.T) {
	topic := testTopic("c1", "Photosynthesis")
	topics := newFakeTopicStore(topic)
	model := &fakeGenerator{response: "narrative"}
	docs := &fakeDocSearcher{err: errors.New("weaviate down")}
	internet := &fakeInternetSearcher{webErr: errors.New("tavily down"), newsErr: errors.New("tavily down")}

	svc := newInsightService(t, topics, model, docs, internet)
	result, err := svc.Enrich(context.Background(), EnrichRequest{
		CanvasID:          "c1",
		TopicID:           topic.ID,
		IncludeWebSearch:  true,
		IncludeNewsSearch: true,
	})
	if err != nil {
		t.Fatalf("Enrich with failing gateways: %v", err)
	}
	if result.Insights != "narrative" {
		t.Fatalf("insights: got=%q", result.Insights)
	}
	if len(result.WebResults) != 0 || len(result.NewsResults) != 0 || len(result.DocumentContext) != 0 {
		t.Fatalf("expected empty context sections, got %+v", result)
	}
}

func TestEnrichWebQueryIncludesYear(t *testing.T) {
	topic := testTopic("c1", "Photosynthesis")
	topics := newFakeTopicStore(topic)
	internet := &fakeInternetSearcher{}

	svc := newInsightService(t, topics, &fakeGenerator{response: "x"}, nil, internet)
	if _, err := svc.Enrich(context.Background(), EnrichRequest{CanvasID: "c1", TopicID: topic.ID, IncludeWebSearch: true}); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if len(internet.webQueries) != 1 {
		t.Fatalf("web search calls: want=1 got=%d", len(internet.webQueries))
	}
	if internet.webQueries[0] != "Photosynthesis 2025" {
		t.Fatalf("web query: want=%q got=%q", "Photosynthesis 2025", internet.webQueries[0])
	}
	if len(internet.newsQueries) != 0 {
		t.Fatalf("news search should not run unless requested, calls=%d", len(internet.newsQueries))
	}
}

func TestEnrichContextFlowsIntoPrompt(t *testing.T) {
	topic := testTopic("c1", "Photosynthesis")
	topics := newFakeTopicStore(topic)
	topics.paths[topic.ID] = []string{"Biology", "Photosynthesis"}
	model := &fakeGenerator{response: "x"}
	docs := &fakeDocSearcher{matches: []domain.DocumentMatch{{
		Filename: "bio.pdf", Title: "Bio Notes", Description: "notes", Content: "chlorophyll", Score: 0.2,
	}}}
	internet := &fakeInternetSearcher{webResults: []domain.SearchResult{{
		Title: "Latest research", URL: "https://example.org", Content: "findings",
	}}}

	svc := newInsightService(t, topics, model, docs, internet)
	if _, err := svc.Enrich(context.Background(), EnrichRequest{CanvasID: "c1", TopicID: topic.ID, IncludeWebSearch: true}); err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	system := model.configs[0].SystemPrompt
	for _, want := range []string{
		"Biology > Photosynthesis",
		"<user-documents>",
		"Relevance Score: 80%",
		"<web-search-results>",
		"Latest research",
	} {
		if !strings.Contains(system, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, system)
		}
	}
	if !model.configs[0].EnableReasoning {
		t.Fatalf("insight call should enable reasoning")
	}
}

func TestEnrichReturnsResultWhenPersistFails(t *testing.T) {
	topic := testTopic("c1", "Photosynthesis")
	topics := newFakeTopicStore(topic)
	topics.knowledgeErr = errors.New("neo4j write failed")

	svc := newInsightService(t, topics, &fakeGenerator{response: "narrative"}, nil, nil)
	result, err := svc.Enrich(context.Background(), EnrichRequest{CanvasID: "c1", TopicID: topic.ID})
	if err != nil {
		t.Fatalf("Enrich with failing persistence: %v", err)
	}
	if result.Insights != "narrative" {
		t.Fatalf("insights: got=%q", result.Insights)
	}
}

func TestEnrichPreservesUnknownKnowledgeKeys(t *testing.T) {
	topic := testTopic("c1", "Photosynthesis")
	topic.Knowledge = `{"customNotes":"keep me","searchHistory":[]}`
	topics := newFakeTopicStore(topic)

	svc := newInsightService(t, topics, &fakeGenerator{response: "x"}, nil, nil)
	if _, err := svc.Enrich(context.Background(), EnrichRequest{CanvasID: "c1", TopicID: topic.ID}); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if !strings.Contains(topic.Knowledge, `"customNotes":"keep me"`) {
		t.Fatalf("unknown key dropped from knowledge blob: %s", topic.Knowledge)
	}
}
