// Package graph owns the Cypher surface of the canvas store: topic and canvas
// repositories plus the best-effort schema bootstrap.
package graph

import (
	"errors"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/mindgrove/mindgrove-backend/internal/domain"
)

// ErrNotFound reports that the addressed node or edge does not exist. All
// other repository errors are store-level failures.
var ErrNotFound = errors.New("graph: not found")

func topicFromNode(node neo4j.Node) (*domain.Topic, error) {
	id, err := neo4j.GetProperty[string](node, "id")
	if err != nil {
		return nil, err
	}
	name, err := neo4j.GetProperty[string](node, "name")
	if err != nil {
		return nil, err
	}
	t := &domain.Topic{
		ID:        id,
		Name:      name,
		Kind:      domain.TopicOriginal,
		CanvasID:  optionalProp[string](node, "canvasId"),
		PositionX: optionalProp[float64](node, "positionX"),
		PositionY: optionalProp[float64](node, "positionY"),
		CreatedAt: optionalProp[time.Time](node, "createdAt"),
	}
	if kind := optionalProp[string](node, "type"); kind != "" {
		t.Kind = domain.TopicKind(kind)
	}
	t.Description = optionalProp[string](node, "description")
	t.Knowledge = optionalProp[string](node, "knowledge")
	return t, nil
}

func canvasFromNode(node neo4j.Node) (*domain.Canvas, error) {
	id, err := neo4j.GetProperty[string](node, "id")
	if err != nil {
		return nil, err
	}
	authorID, err := neo4j.GetProperty[string](node, "authorId")
	if err != nil {
		return nil, err
	}
	name, err := neo4j.GetProperty[string](node, "name")
	if err != nil {
		return nil, err
	}
	return &domain.Canvas{
		ID:                id,
		AuthorID:          authorID,
		Name:              name,
		SystemInstruction: optionalProp[string](node, "systemInstruction"),
		CreatedAt:         optionalProp[time.Time](node, "createdAt"),
		UpdatedAt:         optionalProp[time.Time](node, "updatedAt"),
	}, nil
}

func optionalProp[T neo4j.PropertyValue](node neo4j.Node, key string) T {
	v, err := neo4j.GetProperty[T](node, key)
	if err != nil {
		var zero T
		return zero
	}
	return v
}

func stringSliceValue(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
