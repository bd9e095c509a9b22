package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/mindgrove/mindgrove-backend/internal/data/graph"
	"github.com/mindgrove/mindgrove-backend/internal/domain"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

const defaultNodeCount = 3

// ExpandRequest asks for generated sub-topics under an existing topic,
// addressed by name within a canvas. NodeCount 0 means the default of 3;
// Automatic lets the model pick the count instead.
type ExpandRequest struct {
	CanvasID  string `json:"canvasId"`
	TopicName string `json:"topicName"`
	NodeCount int    `json:"nodeCount,omitempty"`
	Automatic bool   `json:"isAutomatic,omitempty"`
}

// ExpandResult reports the generated keywords and the ids of the edges that
// were actually created. A keyword whose edge already existed contributes to
// Keywords but not to Edges.
type ExpandResult struct {
	Keywords []string `json:"keywords"`
	Edges    []string `json:"edges"`
}

// ExpansionService grows the knowledge map: it asks the model for keywords in
// the context of a topic's position in the hierarchy, then materializes each
// keyword as a generated topic linked to the source.
type ExpansionService struct {
	log      *logger.Logger
	canvases CanvasStore
	topics   TopicStore
	model    TextGenerator
	docs     DocumentSearcher
}

// NewExpansionService wires the orchestrator. docs may be nil; expansion then
// runs without document context.
func NewExpansionService(log *logger.Logger, canvases CanvasStore, topics TopicStore, model TextGenerator, docs DocumentSearcher) *ExpansionService {
	return &ExpansionService{
		log:      log.With("service", "ExpansionService"),
		canvases: canvases,
		topics:   topics,
		model:    model,
		docs:     docs,
	}
}

func (s *ExpansionService) Expand(ctx context.Context, req ExpandRequest) (*ExpandResult, error) {
	nodeCount := req.NodeCount
	if nodeCount <= 0 {
		nodeCount = defaultNodeCount
	}

	canvas, err := s.canvases.GetCanvas(ctx, req.CanvasID)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to get canvas: %v", err)
	}
	if canvas == nil {
		return nil, wrap(ErrCanvasNotFound, "%s", req.CanvasID)
	}

	source, err := s.topics.GetTopicByName(ctx, req.CanvasID, req.TopicName)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to get topic by name: %v", err)
	}
	if source == nil {
		return nil, wrap(ErrTopicNotFound, "%s", req.TopicName)
	}

	topicPath, err := s.topics.PathToRoot(ctx, source.ID, req.CanvasID)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to get topic path: %v", err)
	}
	siblings, err := s.topics.Siblings(ctx, source.ID, req.CanvasID)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to get existing siblings: %v", err)
	}
	children, err := s.topics.Children(ctx, source.ID, req.CanvasID)
	if err != nil {
		return nil, wrap(ErrDatabase, "failed to get topic children: %v", err)
	}

	chunks := s.searchChunks(ctx, req.TopicName)

	instructions, input := BuildKeywordPrompt(KeywordPromptInput{
		TopicName:         req.TopicName,
		TopicPath:         topicPath,
		Siblings:          siblings,
		Children:          children,
		NodeCount:         nodeCount,
		Automatic:         req.Automatic,
		SystemInstruction: canvas.SystemInstruction,
		DocumentChunks:    chunks,
	})

	raw, err := s.model.Generate(ctx, instructions+"\n\n"+input, GenerateConfig{
		SystemPrompt:   instructions,
		ResponseSchema: StringArraySchema("keywords"),
	})
	if err != nil {
		return nil, wrap(ErrAIService, "%v", err)
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, wrap(ErrInvalidResponse, "failed to parse model response: %v", err)
	}
	// A missing or wrong-typed keywords field degrades to an empty list.
	var keywords []string
	if field, ok := parsed["keywords"]; ok {
		if err := json.Unmarshal(field, &keywords); err != nil {
			s.log.Warn("model response keywords field unusable, treating as empty",
				"canvas_id", req.CanvasID,
				"topic_name", req.TopicName,
			)
			keywords = nil
		}
	}

	edges := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		created, err := s.topics.CreateTopic(ctx, graph.InsertTopic{
			ID:       uuid.NewString(),
			CanvasID: req.CanvasID,
			Name:     keyword,
			Kind:     domain.TopicGenerated,
		})
		if err != nil {
			return nil, wrap(ErrDatabase, "failed to create keyword topic: %v", err)
		}

		exists, err := s.topics.RelationshipExists(ctx, source.ID, created.ID)
		if err != nil {
			return nil, wrap(ErrDatabase, "failed to check relationship existence: %v", err)
		}
		if exists {
			continue
		}

		rel, err := s.topics.CreateRelationship(ctx, graph.InsertRelationship{
			ID:       uuid.NewString(),
			CanvasID: req.CanvasID,
			SourceID: source.ID,
			TargetID: created.ID,
		})
		if err != nil {
			return nil, wrap(ErrDatabase, "failed to create relationship: %v", err)
		}
		edges = append(edges, rel.ID)
	}

	if keywords == nil {
		keywords = []string{}
	}
	return &ExpandResult{Keywords: keywords, Edges: edges}, nil
}

// searchChunks pulls document context for the prompt. Index failures degrade
// to an expansion without document context.
func (s *ExpansionService) searchChunks(ctx context.Context, topicName string) []domain.DocumentMatch {
	if s.docs == nil {
		return nil
	}
	chunks, err := s.docs.Search(ctx, topicName, documentTopK, documentMaxDistance)
	if err != nil {
		s.log.Warn("document search failed, expanding without document context", "error", err.Error())
		return nil
	}
	return chunks
}
