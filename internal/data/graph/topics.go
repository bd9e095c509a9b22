package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/mindgrove/mindgrove-backend/internal/domain"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
	"github.com/mindgrove/mindgrove-backend/internal/platform/neo4jdb"
)

// InsertTopic carries the fields of a topic node to create. The caller
// allocates the id.
type InsertTopic struct {
	ID          string
	CanvasID    string
	Name        string
	Kind        domain.TopicKind
	Description string
	Knowledge   string
	PositionX   float64
	PositionY   float64
}

// UpdateTopic lists the mutable topic fields; nil means "leave unchanged".
type UpdateTopic struct {
	Name        *string
	Kind        *domain.TopicKind
	Description *string
	Knowledge   *string
	PositionX   *float64
	PositionY   *float64
}

// InsertRelationship carries a RELATED_TO edge to create. Callers are expected
// to call RelationshipExists first; the create itself is not atomic with that
// check.
type InsertRelationship struct {
	ID       string
	CanvasID string
	SourceID string
	TargetID string
}

type TopicRepo struct {
	db  *neo4jdb.Client
	log *logger.Logger
}

func NewTopicRepo(db *neo4jdb.Client, log *logger.Logger) *TopicRepo {
	return &TopicRepo{db: db, log: log.With("repo", "TopicRepo")}
}

func (r *TopicRepo) CreateTopic(ctx context.Context, in InsertTopic) (*domain.Topic, error) {
	session := r.db.WriteSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (c:Canvas {id: $canvas_id})
CREATE (n:Topic {
    id: $id,
    canvasId: $canvas_id,
    name: $name,
    type: $type,
    description: $description,
    knowledge: $knowledge,
    positionX: $position_x,
    positionY: $position_y,
    createdAt: datetime()
})
CREATE (c)-[:CONTAINS]->(n)
RETURN n
`, map[string]any{
			"id":          in.ID,
			"canvas_id":   in.CanvasID,
			"name":        in.Name,
			"type":        string(in.Kind),
			"description": in.Description,
			"knowledge":   in.Knowledge,
			"position_x":  in.PositionX,
			"position_y":  in.PositionY,
		})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			return res.Record().AsMap()["n"], nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("canvas %s missing, no node created", in.CanvasID)
	})
	if err != nil {
		return nil, fmt.Errorf("topics: create %q: %w", in.Name, err)
	}
	node, ok := out.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("topics: create %q: unexpected record shape", in.Name)
	}
	topic, err := topicFromNode(node)
	if err != nil {
		return nil, fmt.Errorf("topics: create %q: decode node: %w", in.Name, err)
	}
	return topic, nil
}

func (r *TopicRepo) GetTopic(ctx context.Context, id string) (*domain.Topic, error) {
	return r.readOneTopic(ctx, `MATCH (n:Topic {id: $id}) RETURN n`, map[string]any{"id": id})
}

// GetTopicByName resolves a topic by exact name within a canvas. Absence is
// (nil, nil), not an error; this backs duplicate detection.
func (r *TopicRepo) GetTopicByName(ctx context.Context, canvasID, name string) (*domain.Topic, error) {
	return r.readOneTopic(ctx,
		`MATCH (n:Topic {name: $name, canvasId: $canvas_id}) RETURN n`,
		map[string]any{"name": name, "canvas_id": canvasID})
}

func (r *TopicRepo) GetTopicsForCanvas(ctx context.Context, canvasID string) ([]*domain.Topic, error) {
	session := r.db.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (n:Topic {canvasId: $canvas_id})
RETURN n
ORDER BY n.createdAt ASC
`, map[string]any{"canvas_id": canvasID})
		if err != nil {
			return nil, err
		}
		var topics []*domain.Topic
		for res.Next(ctx) {
			raw, _ := res.Record().Get("n")
			node, ok := raw.(neo4j.Node)
			if !ok {
				continue
			}
			topic, err := topicFromNode(node)
			if err != nil {
				return nil, err
			}
			topics = append(topics, topic)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return topics, nil
	})
	if err != nil {
		return nil, fmt.Errorf("topics: list canvas %s: %w", canvasID, err)
	}
	return out.([]*domain.Topic), nil
}

// PathToRoot returns topic names from the canvas root down to the given topic,
// inclusive, along the shortest such path. A topic unreachable from any
// parentless node yields an empty slice.
func (r *TopicRepo) PathToRoot(ctx context.Context, topicID, canvasID string) ([]string, error) {
	return r.readNames(ctx, `
MATCH path = (root:Topic {canvasId: $canvas_id})-[:RELATED_TO*0..]->(target:Topic {id: $topic_id})
WHERE NOT (:Topic)-[:RELATED_TO]->(root)
RETURN [node IN nodes(path) | node.name] AS names
ORDER BY length(path) ASC
LIMIT 1
`, map[string]any{"topic_id": topicID, "canvas_id": canvasID})
}

// Siblings returns names of other topics sharing the same direct parent.
func (r *TopicRepo) Siblings(ctx context.Context, topicID, canvasID string) ([]string, error) {
	return r.readNames(ctx, `
MATCH (parent:Topic)-[:RELATED_TO]->(current:Topic {id: $topic_id, canvasId: $canvas_id})
MATCH (parent)-[:RELATED_TO]->(sibling:Topic)
WHERE sibling.id <> $topic_id
RETURN collect(sibling.name) AS names
`, map[string]any{"topic_id": topicID, "canvas_id": canvasID})
}

// Children returns names of direct children of the given topic.
func (r *TopicRepo) Children(ctx context.Context, topicID, canvasID string) ([]string, error) {
	return r.readNames(ctx, `
MATCH (current:Topic {id: $topic_id, canvasId: $canvas_id})-[:RELATED_TO]->(child:Topic)
RETURN collect(child.name) AS names
`, map[string]any{"topic_id": topicID, "canvas_id": canvasID})
}

func (r *TopicRepo) RelationshipExists(ctx context.Context, sourceID, targetID string) (bool, error) {
	session := r.db.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Topic {id: $source_id})-[e:RELATED_TO]->(t:Topic {id: $target_id})
RETURN count(e) > 0 AS present
`, map[string]any{"source_id": sourceID, "target_id": targetID})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			raw, _ := res.Record().Get("present")
			present, _ := raw.(bool)
			return present, nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return false, nil
	})
	if err != nil {
		return false, fmt.Errorf("topics: relationship exists %s->%s: %w", sourceID, targetID, err)
	}
	return out.(bool), nil
}

func (r *TopicRepo) CreateRelationship(ctx context.Context, in InsertRelationship) (*domain.Relationship, error) {
	session := r.db.WriteSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (source:Topic {id: $source_id})
MATCH (target:Topic {id: $target_id})
CREATE (source)-[e:RELATED_TO {
    id: $id,
    canvasId: $canvas_id,
    sourceId: $source_id,
    targetId: $target_id,
    createdAt: datetime()
}]->(target)
RETURN e.id AS id, e.canvasId AS canvasId, e.sourceId AS sourceId, e.targetId AS targetId
`, map[string]any{
			"id":        in.ID,
			"canvas_id": in.CanvasID,
			"source_id": in.SourceID,
			"target_id": in.TargetID,
		})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			return res.Record().AsMap(), nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("source or target topic missing, no edge created")
	})
	if err != nil {
		return nil, fmt.Errorf("topics: create relationship %s->%s: %w", in.SourceID, in.TargetID, err)
	}
	fields := out.(map[string]any)
	rel := &domain.Relationship{}
	rel.ID, _ = fields["id"].(string)
	rel.CanvasID, _ = fields["canvasId"].(string)
	rel.SourceID, _ = fields["sourceId"].(string)
	rel.TargetID, _ = fields["targetId"].(string)
	return rel, nil
}

// UpdateKnowledge overwrites the whole knowledge field. Missing topics report
// ErrNotFound.
func (r *TopicRepo) UpdateKnowledge(ctx context.Context, topicID, knowledge string) (*domain.Topic, error) {
	k := knowledge
	return r.Update(ctx, topicID, UpdateTopic{Knowledge: &k})
}

func (r *TopicRepo) Update(ctx context.Context, id string, updates UpdateTopic) (*domain.Topic, error) {
	setClauses := make([]string, 0, 6)
	params := map[string]any{"id": id}
	if updates.Name != nil {
		setClauses = append(setClauses, "n.name = $name")
		params["name"] = *updates.Name
	}
	if updates.Kind != nil {
		setClauses = append(setClauses, "n.type = $type")
		params["type"] = string(*updates.Kind)
	}
	if updates.Description != nil {
		setClauses = append(setClauses, "n.description = $description")
		params["description"] = *updates.Description
	}
	if updates.Knowledge != nil {
		setClauses = append(setClauses, "n.knowledge = $knowledge")
		params["knowledge"] = *updates.Knowledge
	}
	if updates.PositionX != nil {
		setClauses = append(setClauses, "n.positionX = $position_x")
		params["position_x"] = *updates.PositionX
	}
	if updates.PositionY != nil {
		setClauses = append(setClauses, "n.positionY = $position_y")
		params["position_y"] = *updates.PositionY
	}
	if len(setClauses) == 0 {
		topic, err := r.GetTopic(ctx, id)
		if err != nil {
			return nil, err
		}
		if topic == nil {
			return nil, fmt.Errorf("topics: update %s: %w", id, ErrNotFound)
		}
		return topic, nil
	}

	cypher := "MATCH (n:Topic {id: $id})\nSET " + strings.Join(setClauses, ", ") + "\nRETURN n"

	session := r.db.WriteSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			raw, _ := res.Record().Get("n")
			return raw, nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("topics: update %s: %w", id, err)
	}
	if out == nil {
		return nil, fmt.Errorf("topics: update %s: %w", id, ErrNotFound)
	}
	node, ok := out.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("topics: update %s: unexpected record shape", id)
	}
	topic, err := topicFromNode(node)
	if err != nil {
		return nil, fmt.Errorf("topics: update %s: decode node: %w", id, err)
	}
	return topic, nil
}

// DeleteTopic detach-deletes a single topic. Deleting a missing id is
// ErrNotFound, not a silent success.
func (r *TopicRepo) DeleteTopic(ctx context.Context, id string) error {
	deleted, err := r.detachDelete(ctx,
		`MATCH (n:Topic {id: $id}) DETACH DELETE n RETURN count(n) AS deleted`,
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("topics: delete %s: %w", id, err)
	}
	if deleted == 0 {
		return fmt.Errorf("topics: delete %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTopicsForCanvas removes every topic of a canvas; an empty canvas is
// fine.
func (r *TopicRepo) DeleteTopicsForCanvas(ctx context.Context, canvasID string) error {
	_, err := r.detachDelete(ctx,
		`MATCH (n:Topic {canvasId: $canvas_id}) DETACH DELETE n RETURN count(n) AS deleted`,
		map[string]any{"canvas_id": canvasID})
	if err != nil {
		return fmt.Errorf("topics: delete canvas %s: %w", canvasID, err)
	}
	return nil
}

func (r *TopicRepo) detachDelete(ctx context.Context, cypher string, params map[string]any) (int64, error) {
	session := r.db.WriteSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			raw, _ := res.Record().Get("deleted")
			n, _ := raw.(int64)
			return n, nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return int64(0), nil
	})
	if err != nil {
		return 0, err
	}
	return out.(int64), nil
}

func (r *TopicRepo) readOneTopic(ctx context.Context, cypher string, params map[string]any) (*domain.Topic, error) {
	session := r.db.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			raw, _ := res.Record().Get("n")
			return raw, nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("topics: read: %w", err)
	}
	if out == nil {
		return nil, nil
	}
	node, ok := out.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("topics: read: unexpected record shape")
	}
	topic, err := topicFromNode(node)
	if err != nil {
		return nil, fmt.Errorf("topics: read: decode node: %w", err)
	}
	return topic, nil
}

func (r *TopicRepo) readNames(ctx context.Context, cypher string, params map[string]any) ([]string, error) {
	session := r.db.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			raw, _ := res.Record().Get("names")
			return stringSliceValue(raw), nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return []string(nil), nil
	})
	if err != nil {
		return nil, fmt.Errorf("topics: read names: %w", err)
	}
	names, _ := out.([]string)
	return names, nil
}
