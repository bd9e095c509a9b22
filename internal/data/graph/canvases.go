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

type InsertCanvas struct {
	ID                string
	AuthorID          string
	Name              string
	SystemInstruction string
}

type UpdateCanvas struct {
	Name              *string
	SystemInstruction *string
}

// CanvasPage is one page of an author's canvases.
type CanvasPage struct {
	Canvases []*domain.Canvas
	Total    int64
}

type CanvasRepo struct {
	db  *neo4jdb.Client
	log *logger.Logger
}

func NewCanvasRepo(db *neo4jdb.Client, log *logger.Logger) *CanvasRepo {
	return &CanvasRepo{db: db, log: log.With("repo", "CanvasRepo")}
}

func (r *CanvasRepo) CreateCanvas(ctx context.Context, in InsertCanvas) (*domain.Canvas, error) {
	session := r.db.WriteSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
CREATE (c:Canvas {
    id: $id,
    authorId: $author_id,
    name: $name,
    systemInstruction: $system_instruction,
    createdAt: datetime(),
    updatedAt: datetime()
})
RETURN c
`, map[string]any{
			"id":                 in.ID,
			"author_id":          in.AuthorID,
			"name":               in.Name,
			"system_instruction": in.SystemInstruction,
		})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			raw, _ := res.Record().Get("c")
			return raw, nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no node created")
	})
	if err != nil {
		return nil, fmt.Errorf("canvases: create %q: %w", in.Name, err)
	}
	node, ok := out.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("canvases: create %q: unexpected record shape", in.Name)
	}
	canvas, err := canvasFromNode(node)
	if err != nil {
		return nil, fmt.Errorf("canvases: create %q: decode node: %w", in.Name, err)
	}
	return canvas, nil
}

// GetCanvas resolves a canvas by id; absence is (nil, nil).
func (r *CanvasRepo) GetCanvas(ctx context.Context, id string) (*domain.Canvas, error) {
	session := r.db.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (c:Canvas {id: $id}) RETURN c`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			raw, _ := res.Record().Get("c")
			return raw, nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("canvases: get %s: %w", id, err)
	}
	if out == nil {
		return nil, nil
	}
	node, ok := out.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("canvases: get %s: unexpected record shape", id)
	}
	canvas, err := canvasFromNode(node)
	if err != nil {
		return nil, fmt.Errorf("canvases: get %s: decode node: %w", id, err)
	}
	return canvas, nil
}

// ListCanvases pages an author's canvases, most recently updated first.
func (r *CanvasRepo) ListCanvases(ctx context.Context, authorID string, limit, offset int) (*CanvasPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	session := r.db.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (c:Canvas {authorId: $author_id})
RETURN count(c) AS total
`, map[string]any{"author_id": authorID})
		if err != nil {
			return nil, err
		}
		page := &CanvasPage{}
		if res.Next(ctx) {
			raw, _ := res.Record().Get("total")
			page.Total, _ = raw.(int64)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, `
MATCH (c:Canvas {authorId: $author_id})
RETURN c
ORDER BY c.updatedAt DESC
SKIP $offset
LIMIT $limit
`, map[string]any{"author_id": authorID, "offset": offset, "limit": limit})
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			raw, _ := res.Record().Get("c")
			node, ok := raw.(neo4j.Node)
			if !ok {
				continue
			}
			canvas, err := canvasFromNode(node)
			if err != nil {
				return nil, err
			}
			page.Canvases = append(page.Canvases, canvas)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return page, nil
	})
	if err != nil {
		return nil, fmt.Errorf("canvases: list: %w", err)
	}
	return out.(*CanvasPage), nil
}

func (r *CanvasRepo) UpdateCanvas(ctx context.Context, id string, updates UpdateCanvas) (*domain.Canvas, error) {
	setClauses := make([]string, 0, 3)
	params := map[string]any{"id": id}
	if updates.Name != nil {
		setClauses = append(setClauses, "c.name = $name")
		params["name"] = *updates.Name
	}
	if updates.SystemInstruction != nil {
		setClauses = append(setClauses, "c.systemInstruction = $system_instruction")
		params["system_instruction"] = *updates.SystemInstruction
	}
	if len(setClauses) == 0 {
		canvas, err := r.GetCanvas(ctx, id)
		if err != nil {
			return nil, err
		}
		if canvas == nil {
			return nil, fmt.Errorf("canvases: update %s: %w", id, ErrNotFound)
		}
		return canvas, nil
	}
	setClauses = append(setClauses, "c.updatedAt = datetime()")
	cypher := "MATCH (c:Canvas {id: $id})\nSET " + strings.Join(setClauses, ", ") + "\nRETURN c"

	session := r.db.WriteSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			raw, _ := res.Record().Get("c")
			return raw, nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("canvases: update %s: %w", id, err)
	}
	if out == nil {
		return nil, fmt.Errorf("canvases: update %s: %w", id, ErrNotFound)
	}
	node, ok := out.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("canvases: update %s: unexpected record shape", id)
	}
	canvas, err := canvasFromNode(node)
	if err != nil {
		return nil, fmt.Errorf("canvases: update %s: decode node: %w", id, err)
	}
	return canvas, nil
}

// DeleteCanvas removes the canvas node itself. Cascading topic deletion is the
// canvas service's job (DeleteTopicsForCanvas runs first).
func (r *CanvasRepo) DeleteCanvas(ctx context.Context, id string) error {
	session := r.db.WriteSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (c:Canvas {id: $id})
DETACH DELETE c
RETURN count(c) AS deleted
`, map[string]any{"id": id})
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
		return fmt.Errorf("canvases: delete %s: %w", id, err)
	}
	if out.(int64) == 0 {
		return fmt.Errorf("canvases: delete %s: %w", id, ErrNotFound)
	}
	return nil
}

// RelationshipsForCanvas returns the full edge set of a canvas for graph
// rendering.
func (r *CanvasRepo) RelationshipsForCanvas(ctx context.Context, canvasID string) ([]*domain.Relationship, error) {
	session := r.db.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Topic {canvasId: $canvas_id})-[e:RELATED_TO]->(t:Topic {canvasId: $canvas_id})
RETURN e.id AS id, s.id AS sourceId, t.id AS targetId
`, map[string]any{"canvas_id": canvasID})
		if err != nil {
			return nil, err
		}
		var edges []*domain.Relationship
		for res.Next(ctx) {
			fields := res.Record().AsMap()
			edge := &domain.Relationship{CanvasID: canvasID}
			edge.ID, _ = fields["id"].(string)
			edge.SourceID, _ = fields["sourceId"].(string)
			edge.TargetID, _ = fields["targetId"].(string)
			if edge.ID == "" {
				edge.ID = edge.SourceID + "-" + edge.TargetID
			}
			edges = append(edges, edge)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return edges, nil
	})
	if err != nil {
		return nil, fmt.Errorf("canvases: relationships %s: %w", canvasID, err)
	}
	edges, _ := out.([]*domain.Relationship)
	return edges, nil
}
