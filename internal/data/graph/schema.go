package graph

import (
	"context"

	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
	"github.com/mindgrove/mindgrove-backend/internal/platform/neo4jdb"
)

// EnsureSchema creates id uniqueness constraints and the RELATED_TO edge key
// that closes the duplicate-edge window left by check-then-create callers.
// Best-effort: restricted users may not hold schema privileges, so failures
// are logged and skipped.
func EnsureSchema(ctx context.Context, client *neo4jdb.Client, log *logger.Logger) {
	if client == nil || client.Driver == nil {
		return
	}
	session := client.WriteSession(ctx)
	defer session.Close(ctx)

	statements := []string{
		`CREATE CONSTRAINT canvas_id_unique IF NOT EXISTS FOR (c:Canvas) REQUIRE c.id IS UNIQUE`,
		`CREATE CONSTRAINT topic_id_unique IF NOT EXISTS FOR (t:Topic) REQUIRE t.id IS UNIQUE`,
		`CREATE CONSTRAINT related_to_pair_unique IF NOT EXISTS FOR ()-[e:RELATED_TO]-() REQUIRE (e.sourceId, e.targetId) IS UNIQUE`,
		`CREATE INDEX topic_canvas_name_idx IF NOT EXISTS FOR (t:Topic) ON (t.canvasId, t.name)`,
	}
	for _, stmt := range statements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			if log != nil {
				log.Warn("neo4j schema init failed (continuing)", "error", err)
			}
			continue
		}
		if _, err := res.Consume(ctx); err != nil && log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	}
}
