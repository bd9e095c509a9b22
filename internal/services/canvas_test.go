package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mindgrove/mindgrove-backend/internal/domain"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

func newCanvasService(t *testing.T, canvases CanvasStore, topics TopicStore) *CanvasService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewCanvasService(log, canvases, topics)
}

func TestCanvasCreateValidation(t *testing.T) {
	svc := newCanvasService(t, newFakeCanvasStore(), newFakeTopicStore())

	if _, err := svc.Create(context.Background(), "a1", CreateCanvasRequest{Name: ""}); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty name: want=ErrValidation got=%v", err)
	}
	if _, err := svc.Create(context.Background(), "a1", CreateCanvasRequest{Name: strings.Repeat("x", 101)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("oversized name: want=ErrValidation got=%v", err)
	}

	canvas, err := svc.Create(context.Background(), "a1", CreateCanvasRequest{Name: "  Study Plan  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if canvas.Name != "Study Plan" {
		t.Fatalf("name not trimmed: got=%q", canvas.Name)
	}
	if canvas.AuthorID != "a1" {
		t.Fatalf("author: want=a1 got=%q", canvas.AuthorID)
	}
}

func TestCanvasGetNotFound(t *testing.T) {
	svc := newCanvasService(t, newFakeCanvasStore(), newFakeTopicStore())
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrCanvasNotFound) {
		t.Fatalf("error kind: want=ErrCanvasNotFound got=%v", err)
	}
}

func TestCanvasDeleteCascadesToTopics(t *testing.T) {
	canvas := &domain.Canvas{ID: "c1", AuthorID: "a1", Name: "Science"}
	keep := testTopic("c2", "Art")
	doomedA := testTopic("c1", "Biology")
	doomedB := testTopic("c1", "Chemistry")
	canvases := newFakeCanvasStore(canvas)
	topics := newFakeTopicStore(keep, doomedA, doomedB)
	svc := newCanvasService(t, canvases, topics)

	if err := svc.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(topics.topics) != 1 {
		t.Fatalf("surviving topics: want=1 got=%d", len(topics.topics))
	}
	if _, ok := topics.topics[keep.ID]; !ok {
		t.Fatalf("topic in other canvas was deleted")
	}
	if len(canvases.canvases) != 0 {
		t.Fatalf("canvas not deleted")
	}
}

func TestCanvasDeleteMissing(t *testing.T) {
	svc := newCanvasService(t, newFakeCanvasStore(), newFakeTopicStore())
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrCanvasNotFound) {
		t.Fatalf("delete missing: want=ErrCanvasNotFound got=%v", err)
	}
}
