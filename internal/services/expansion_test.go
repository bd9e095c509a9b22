package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mindgrove/mindgrove-backend/internal/domain"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

func TestExpandCreatesGeneratedTopicsAndEdges(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	canvas := &domain.Canvas{ID: "c1", AuthorID: "a1", Name: "Science"}
	source := testTopic("c1", "Biology")
	canvases := newFakeCanvasStore(canvas)
	topics := newFakeTopicStore(source)
	topics.paths[source.ID] = []string{"Biology"}
	model := &fakeGenerator{response: keywordsJSON("Genetics", "Ecology", "Evolution")}

	svc := NewExpansionService(log, canvases, topics, model, nil)
	result, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "c1", TopicName: "Biology"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if got := len(result.Keywords); got != 3 {
		t.Fatalf("keyword count: want=3 got=%d", got)
	}
	if result.Keywords[0] != "Genetics" || result.Keywords[1] != "Ecology" || result.Keywords[2] != "Evolution" {
		t.Fatalf("keywords: got=%v", result.Keywords)
	}
	if got := len(result.Edges); got != 3 {
		t.Fatalf("edge count: want=3 got=%d", got)
	}

	created := 0
	for _, tp := range topics.topics {
		if tp.Kind == domain.TopicGenerated {
			created++
			if tp.CanvasID != "c1" {
				t.Fatalf("generated topic canvas: want=c1 got=%s", tp.CanvasID)
			}
			exists, _ := topics.RelationshipExists(context.Background(), source.ID, tp.ID)
			if !exists {
				t.Fatalf("generated topic %q has no edge from source", tp.Name)
			}
		}
	}
	if created != 3 {
		t.Fatalf("generated topic count: want=3 got=%d", created)
	}
}

func TestExpandDefaultsNodeCountInPrompt(t *testing.T) {
	log, _ := logger.New("test")
	canvas := &domain.Canvas{ID: "c1", Name: "Science"}
	source := testTopic("c1", "Biology")
	topics := newFakeTopicStore(source)
	model := &fakeGenerator{response: keywordsJSON()}

	svc := NewExpansionService(log, newFakeCanvasStore(canvas), topics, model, nil)
	if _, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "c1", TopicName: "Biology"}); err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if len(model.prompts) != 1 {
		t.Fatalf("model calls: want=1 got=%d", len(model.prompts))
	}
	if !strings.Contains(model.prompts[0], "- Node Count: 3") {
		t.Fatalf("prompt missing default node count:\n%s", model.prompts[0])
	}
	if model.configs[0].ResponseSchema == nil {
		t.Fatalf("expected structured response schema on keyword call")
	}
}

func TestExpandAutomaticMode(t *testing.T) {
	log, _ := logger.New("test")
	canvas := &domain.Canvas{ID: "c1", Name: "Science"}
	source := testTopic("c1", "Biology")
	model := &fakeGenerator{response: keywordsJSON("Genetics")}

	svc := NewExpansionService(log, newFakeCanvasStore(canvas), newFakeTopicStore(source), model, nil)
	if _, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "c1", TopicName: "Biology", Automatic: true}); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !strings.Contains(model.prompts[0], "- Mode: Automatic") {
		t.Fatalf("prompt missing automatic mode line:\n%s", model.prompts[0])
	}
	if !strings.Contains(model.configs[0].SystemPrompt, "<automatic-count>") {
		t.Fatalf("instructions missing automatic-count block")
	}
}

func TestExpandCanvasNotFound(t *testing.T) {
	log, _ := logger.New("test")
	svc := NewExpansionService(log, newFakeCanvasStore(), newFakeTopicStore(), &fakeGenerator{}, nil)

	_, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "missing", TopicName: "Biology"})
	if !errors.Is(err, ErrCanvasNotFound) {
		t.Fatalf("error kind: want=ErrCanvasNotFound got=%v", err)
	}
}

func TestExpandTopicNotFoundCreatesNothing(t *testing.T) {
	log, _ := logger.New("test")
	canvas := &domain.Canvas{ID: "c1", Name: "Science"}
	topics := newFakeTopicStore()
	svc := NewExpansionService(log, newFakeCanvasStore(canvas), topics, &fakeGenerator{}, nil)

	_, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "c1", TopicName: "Biology"})
	if !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("error kind: want=ErrTopicNotFound got=%v", err)
	}
	if len(topics.topics) != 0 {
		t.Fatalf("topics created on failure: want=0 got=%d", len(topics.topics))
	}
}

func TestExpandMissingKeywordsFieldDegradesToEmpty(t *testing.T) {
	log, _ := logger.New("test")
	canvas := &domain.Canvas{ID: "c1", Name: "Science"}
	source := testTopic("c1", "Biology")
	model := &fakeGenerator{response: `{"something_else": true}`}

	svc := NewExpansionService(log, newFakeCanvasStore(canvas), newFakeTopicStore(source), model, nil)
	result, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "c1", TopicName: "Biology"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(result.Keywords) != 0 || len(result.Edges) != 0 {
		t.Fatalf("want empty result, got keywords=%v edges=%v", result.Keywords, result.Edges)
	}
}

func TestExpandWrongTypedKeywordsFieldDegradesToEmpty(t *testing.T) {
	log, _ := logger.New("test")
	canvas := &domain.Canvas{ID: "c1", Name: "Science"}
	source := testTopic("c1", "Biology")
	model := &fakeGenerator{response: `{"keywords": "Genetics"}`}

	topics := newFakeTopicStore(source)
	svc := NewExpansionService(log, newFakeCanvasStore(canvas), topics, model, nil)
	result, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "c1", TopicName: "Biology"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(result.Keywords) != 0 || len(result.Edges) != 0 {
		t.Fatalf("want empty result, got keywords=%v edges=%v", result.Keywords, result.Edges)
	}
	if got := len(topics.topics); got != 1 {
		t.Fatalf("topic count: want=1 got=%d", got)
	}
}

func TestExpandUnparseableResponse(t *testing.T) {
	log, _ := logger.New("test")
	canvas := &domain.Canvas{ID: "c1", Name: "Science"}
	source := testTopic("c1", "Biology")
	model := &fakeGenerator{response: "not json at all"}

	svc := NewExpansionService(log, newFakeCanvasStore(canvas), newFakeTopicStore(source), model, nil)
	_, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "c1", TopicName: "Biology"})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("error kind: want=ErrInvalidResponse got=%v", err)
	}
}

func TestExpandModelFailure(t *testing.T) {
	log, _ := logger.New("test")
	canvas := &domain.Canvas{ID: "c1", Name: "Science"}
	source := testTopic("c1", "Biology")
	model := &fakeGenerator{err: errors.New("model unavailable")}

	svc := NewExpansionService(log, newFakeCanvasStore(canvas), newFakeTopicStore(source), model, nil)
	_, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "c1", TopicName: "Biology"})
	if !errors.Is(err, ErrAIService) {
		t.Fatalf("error kind: want=ErrAIService got=%v", err)
	}
}

func TestExpandSkipsExistingEdge(t *testing.T) {
	log, _ := logger.New("test")
	canvas := &domain.Canvas{ID: "c1", Name: "Science"}
	source := testTopic("c1", "Biology")
	topics := newFakeTopicStore(source)
	model := &fakeGenerator{response: keywordsJSON("Genetics")}

	// Pre-seed the edge every created topic would get. CreateTopic ids are
	// fresh uuids, so instead make RelationshipExists always true by wrapping.
	svc := NewExpansionService(log, newFakeCanvasStore(canvas), &allEdgesExist{topics}, model, nil)
	result, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "c1", TopicName: "Biology"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(result.Keywords) != 1 {
		t.Fatalf("keyword count: want=1 got=%d", len(result.Keywords))
	}
	if len(result.Edges) != 0 {
		t.Fatalf("edge count with pre-existing edges: want=0 got=%d", len(result.Edges))
	}
}

type allEdgesExist struct {
	*fakeTopicStore
}

func (s *allEdgesExist) RelationshipExists(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

func TestExpandDocumentContextFailureIsAbsorbed(t *testing.T) {
	log, _ := logger.New("test")
	canvas := &domain.Canvas{ID: "c1", Name: "Science"}
	source := testTopic("c1", "Biology")
	docs := &fakeDocSearcher{err: errors.New("index down")}
	model := &fakeGenerator{response: keywordsJSON("Genetics")}

	svc := NewExpansionService(log, newFakeCanvasStore(canvas), newFakeTopicStore(source), model, docs)
	result, err := svc.Expand(context.Background(), ExpandRequest{CanvasID: "c1", TopicName: "Biology"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(result.Keywords) != 1 {
		t.Fatalf("keyword count: want=1 got=%d", len(result.Keywords))
	}
	if strings.Contains(model.prompts[0], "<document-context>") {
		t.Fatalf("prompt should not carry document context after index failure")
	}
}
