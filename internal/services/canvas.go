package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mindgrove/mindgrove-backend/internal/data/graph"
	"github.com/mindgrove/mindgrove-backend/internal/domain"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

const maxNameLen = 100

type CreateCanvasRequest struct {
	Name              string `json:"name"`
	SystemInstruction string `json:"systemInstruction,omitempty"`
}

type UpdateCanvasRequest struct {
	Name              *string `json:"name,omitempty"`
	SystemInstruction *string `json:"systemInstruction,omitempty"`
}

// CanvasPage is one page of an author's canvases.
type CanvasPage struct {
	Canvases []*domain.Canvas `json:"canvases"`
	Total    int64            `json:"total"`
}

// CanvasGraph is the full topology of one canvas, for client-side rendering.
type CanvasGraph struct {
	Canvas        *domain.Canvas         `json:"canvas"`
	Topics        []*domain.Topic        `json:"topics"`
	Relationships []*domain.Relationship `json:"relationships"`
}

// CanvasService owns canvas lifecycle: validated CRUD plus the graph topology
// read. Deleting a canvas cascades to its topics and relationships.
type CanvasService struct {
	log      *logger.Logger
	canvases CanvasStore
	topics   TopicStore
}

func NewCanvasService(log *logger.Logger, canvases CanvasStore, topics TopicStore) *CanvasService {
	return &CanvasService{
		log:      log.With("service", "CanvasService"),
		canvases: canvases,
		topics:   topics,
	}
}

func (s *CanvasService) Create(ctx context.Context, authorID string, req CreateCanvasRequest) (*domain.Canvas, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	canvas, err := s.canvases.CreateCanvas(ctx, graph.InsertCanvas{
		ID:                uuid.NewString(),
		AuthorID:          authorID,
		Name:              name,
		SystemInstruction: req.SystemInstruction,
	})
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to create canvas: %v", err)
	}
	return canvas, nil
}

func (s *CanvasService) Get(ctx context.Context, id string) (*domain.Canvas, error) {
	canvas, err := s.canvases.GetCanvas(ctx, id)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to get canvas: %v", err)
	}
	if canvas == nil {
		return nil, wrap(ErrCanvasNotFound, "%s", id)
	}
	return canvas, nil
}

func (s *CanvasService) List(ctx context.Context, authorID string, limit, offset int) (*CanvasPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	page, err := s.canvases.ListCanvases(ctx, authorID, limit, offset)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to list canvases: %v", err)
	}
	return &CanvasPage{Canvases: page.Canvases, Total: page.Total}, nil
}

func (s *CanvasService) Update(ctx context.Context, id string, req UpdateCanvasRequest) (*domain.Canvas, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if err := validateName(trimmed); err != nil {
			return nil, err
		}
		req.Name = &trimmed
	}

	canvas, err := s.canvases.UpdateCanvas(ctx, id, graph.UpdateCanvas{
		Name:              req.Name,
		SystemInstruction: req.SystemInstruction,
	})
	if err != nil {
		if errorsIsNotFound(err) {
			return nil, wrap(ErrCanvasNotFound, "%s", id)
		}
		return nil, wrap(ErrDatabase, "failed to update canvas: %v", err)
	}
	return canvas, nil
}

// Delete removes the canvas and everything in it. Topics go first so a
// failure partway leaves the canvas present and the operation retryable.
func (s *CanvasService) Delete(ctx context.Context, id string) error {
	canvas, err := s.canvases.GetCanvas(ctx, id)
	if err != nil {
		return wrap(ErrDatabase, "failed to get canvas: %v", err)
	}
	if canvas == nil {
		return wrap(ErrCanvasNotFound, "%s", id)
	}

	if err := s.topics.DeleteTopicsForCanvas(ctx, id); err != nil {
		return wrap(ErrDatabase, "failed to delete canvas topics: %v", err)
	}
	if err := s.canvases.DeleteCanvas(ctx, id); err != nil {
		if errorsIsNotFound(err) {
			return wrap(ErrCanvasNotFound, "%s", id)
		}
		return wrap(ErrDatabase, "failed to delete canvas: %v", err)
	}
	return nil
}

// Graph returns the canvas with all its topics and relationships.
func (s *CanvasService) Graph(ctx context.Context, id string) (*CanvasGraph, error) {
	canvas, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	topics, err := s.topics.GetTopicsForCanvas(ctx, id)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to list topics: %v", err)
	}
	rels, err := s.canvases.RelationshipsForCanvas(ctx, id)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to list relationships: %v", err)
	}

	return &CanvasGraph{Canvas: canvas, Topics: topics, Relationships: rels}, nil
}

func validateName(name string) error {
	if name == "" {
		return wrap(ErrValidation, "name must not be empty")
	}
	if len(name) > maxNameLen {
		return wrap(ErrValidation, "name exceeds %d characters", maxNameLen)
	}
	return nil
}
