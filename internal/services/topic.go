package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mindgrove/mindgrove-backend/internal/data/graph"
	"github.com/mindgrove/mindgrove-backend/internal/domain"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

type CreateTopicRequest struct {
	Name        string           `json:"name"`
	Kind        domain.TopicKind `json:"type,omitempty"`
	Description string           `json:"description,omitempty"`
	ParentID    string           `json:"parentId,omitempty"`
	PositionX   float64          `json:"positionX,omitempty"`
	PositionY   float64          `json:"positionY,omitempty"`
}

type UpdateTopicRequest struct {
	Name        *string           `json:"name,omitempty"`
	Kind        *domain.TopicKind `json:"type,omitempty"`
	Description *string           `json:"description,omitempty"`
	PositionX   *float64          `json:"positionX,omitempty"`
	PositionY   *float64          `json:"positionY,omitempty"`
}

// TopicService owns manual topic lifecycle. Name uniqueness within a canvas
// is enforced here, not by the store.
type TopicService struct {
	log      *logger.Logger
	canvases CanvasStore
	topics   TopicStore
}

func NewTopicService(log *logger.Logger, canvases CanvasStore, topics TopicStore) *TopicService {
	return &TopicService{
		log:      log.With("service", "TopicService"),
		canvases: canvases,
		topics:   topics,
	}
}

// Create adds a topic to a canvas. When ParentID is set, the parent must
// already exist in the same canvas and a RELATED_TO edge is created from it.
func (s *TopicService) Create(ctx context.Context, canvasID string, req CreateTopicRequest) (*domain.Topic, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = domain.TopicOriginal
	}
	if !kind.Valid() {
		return nil, wrap(ErrValidation, "unknown topic type %q", kind)
	}

	canvas, err := s.canvases.GetCanvas(ctx, canvasID)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to get canvas: %v", err)
	}
	if canvas == nil {
		return nil, wrap(ErrCanvasNotFound, "%s", canvasID)
	}

	existing, err := s.topics.GetTopicByName(ctx, canvasID, name)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to check topic name: %v", err)
	}
	if existing != nil {
		return nil, wrap(ErrTopicExists, "%q in canvas %s", name, canvasID)
	}

	var parent *domain.Topic
	if req.ParentID != "" {
		parent, err = s.topics.GetTopic(ctx, req.ParentID)
		if err != nil {
			return nil, wrap(ErrDatabase, "failed to get parent topic: %v", err)
		}
		if parent == nil || parent.CanvasID != canvasID {
			return nil, wrap(ErrTopicNotFound, "parent %s", req.ParentID)
		}
	}

	topic, err := s.topics.CreateTopic(ctx, graph.InsertTopic{
		ID:          uuid.NewString(),
		CanvasID:    canvasID,
		Name:        name,
		Kind:        kind,
		Description: req.Description,
		PositionX:   req.PositionX,
		PositionY:   req.PositionY,
	})
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to create topic: %v", err)
	}

	if parent != nil {
		if _, err := s.topics.CreateRelationship(ctx, graph.InsertRelationship{
			ID:       uuid.NewString(),
			CanvasID: canvasID,
			SourceID: parent.ID,
			TargetID: topic.ID,
		}); err != nil {
			return nil, wrap(ErrDatabase, "failed to link topic to parent: %v", err)
		}
	}
	return topic, nil
}

func (s *TopicService) Get(ctx context.Context, id string) (*domain.Topic, error) {
	topic, err := s.topics.GetTopic(ctx, id)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to get topic: %v", err)
	}
	if topic == nil {
		return nil, wrap(ErrTopicNotFound, "%s", id)
	}
	return topic, nil
}

func (s *TopicService) ListForCanvas(ctx context.Context, canvasID string) ([]*domain.Topic, error) {
	topics, err := s.topics.GetTopicsForCanvas(ctx, canvasID)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to list topics: %v", err)
	}
	return topics, nil
}

func (s *TopicService) Update(ctx context.Context, id string, req UpdateTopicRequest) (*domain.Topic, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if err := validateName(trimmed); err != nil {
			return nil, err
		}
		req.Name = &trimmed
	}
	if req.Kind != nil && !req.Kind.Valid() {
		return nil, wrap(ErrValidation, "unknown topic type %q", *req.Kind)
	}

	if req.Name != nil {
		current, err := s.topics.GetTopic(ctx, id)
		if err != nil {
			return nil, wrap(ErrDatabase, "failed to get topic: %v", err)
		}
		if current == nil {
			return nil, wrap(ErrTopicNotFound, "%s", id)
		}
		if *req.Name != current.Name {
			clash, err := s.topics.GetTopicByName(ctx, current.CanvasID, *req.Name)
			if err != nil {
				return nil, wrap(ErrDatabase, "failed to check topic name: %v", err)
			}
			if clash != nil {
				return nil, wrap(ErrTopicExists, "%q in canvas %s", *req.Name, current.CanvasID)
			}
		}
	}

	topic, err := s.topics.Update(ctx, id, graph.UpdateTopic{
		Name:        req.Name,
		Kind:        req.Kind,
		Description: req.Description,
		PositionX:   req.PositionX,
		PositionY:   req.PositionY,
	})
	if err != nil {
		if errorsIsNotFound(err) {
			return nil, wrap(ErrTopicNotFound, "%s", id)
		}
		return nil, wrap(ErrDatabase, "failed to update topic: %v", err)
	}
	return topic, nil
}

func (s *TopicService) Delete(ctx context.Context, id string) error {
	if err := s.topics.DeleteTopic(ctx, id); err != nil {
		if errorsIsNotFound(err) {
			return wrap(ErrTopicNotFound, "%s", id)
		}
		return wrap(ErrDatabase, "failed to delete topic: %v", err)
	}
	return nil
}
