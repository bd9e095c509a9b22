package services

import (
	"context"

	"github.com/mindgrove/mindgrove-backend/internal/data/graph"
	"github.com/mindgrove/mindgrove-backend/internal/domain"
)

// CanvasStore is the slice of the canvas repository the services consume.
type CanvasStore interface {
	CreateCanvas(ctx context.Context, in graph.InsertCanvas) (*domain.Canvas, error)
	GetCanvas(ctx context.Context, id string) (*domain.Canvas, error)
	ListCanvases(ctx context.Context, authorID string, limit, offset int) (*graph.CanvasPage, error)
	UpdateCanvas(ctx context.Context, id string, updates graph.UpdateCanvas) (*domain.Canvas, error)
	DeleteCanvas(ctx context.Context, id string) error
	RelationshipsForCanvas(ctx context.Context, canvasID string) ([]*domain.Relationship, error)
}

// TopicStore is the slice of the topic repository the services consume.
type TopicStore interface {
	CreateTopic(ctx context.Context, in graph.InsertTopic) (*domain.Topic, error)
	GetTopic(ctx context.Context, id string) (*domain.Topic, error)
	GetTopicByName(ctx context.Context, canvasID, name string) (*domain.Topic, error)
	GetTopicsForCanvas(ctx context.Context, canvasID string) ([]*domain.Topic, error)
	PathToRoot(ctx context.Context, topicID, canvasID string) ([]string, error)
	Siblings(ctx context.Context, topicID, canvasID string) ([]string, error)
	Children(ctx context.Context, topicID, canvasID string) ([]string, error)
	RelationshipExists(ctx context.Context, sourceID, targetID string) (bool, error)
	CreateRelationship(ctx context.Context, in graph.InsertRelationship) (*domain.Relationship, error)
	Update(ctx context.Context, id string, updates graph.UpdateTopic) (*domain.Topic, error)
	UpdateKnowledge(ctx context.Context, topicID, knowledge string) (*domain.Topic, error)
	DeleteTopic(ctx context.Context, id string) error
	DeleteTopicsForCanvas(ctx context.Context, canvasID string) error
}
