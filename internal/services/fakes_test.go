package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mindgrove/mindgrove-backend/internal/data/graph"
	"github.com/mindgrove/mindgrove-backend/internal/domain"
)

// fakeCanvasStore and fakeTopicStore back the orchestrator tests with
// in-memory state. Zero values behave like an empty store.

type fakeCanvasStore struct {
	canvases map[string]*domain.Canvas
	getErr   error
}

func newFakeCanvasStore(canvases ...*domain.Canvas) *fakeCanvasStore {
	s := &fakeCanvasStore{canvases: map[string]*domain.Canvas{}}
	for _, c := range canvases {
		s.canvases[c.ID] = c
	}
	return s
}

func (s *fakeCanvasStore) CreateCanvas(_ context.Context, in graph.InsertCanvas) (*domain.Canvas, error) {
	c := &domain.Canvas{ID: in.ID, AuthorID: in.AuthorID, Name: in.Name, SystemInstruction: in.SystemInstruction}
	s.canvases[c.ID] = c
	return c, nil
}

func (s *fakeCanvasStore) GetCanvas(_ context.Context, id string) (*domain.Canvas, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.canvases[id], nil
}

func (s *fakeCanvasStore) ListCanvases(_ context.Context, authorID string, _, _ int) (*graph.CanvasPage, error) {
	page := &graph.CanvasPage{}
	for _, c := range s.canvases {
		if c.AuthorID == authorID {
			page.Canvases = append(page.Canvases, c)
			page.Total++
		}
	}
	return page, nil
}

func (s *fakeCanvasStore) UpdateCanvas(_ context.Context, id string, updates graph.UpdateCanvas) (*domain.Canvas, error) {
	c, ok := s.canvases[id]
	if !ok {
		return nil, graph.ErrNotFound
	}
	if updates.Name != nil {
		c.Name = *updates.Name
	}
	if updates.SystemInstruction != nil {
		c.SystemInstruction = *updates.SystemInstruction
	}
	return c, nil
}

func (s *fakeCanvasStore) DeleteCanvas(_ context.Context, id string) error {
	if _, ok := s.canvases[id]; !ok {
		return graph.ErrNotFound
	}
	delete(s.canvases, id)
	return nil
}

func (s *fakeCanvasStore) RelationshipsForCanvas(_ context.Context, _ string) ([]*domain.Relationship, error) {
	return nil, nil
}

type fakeTopicStore struct {
	topics        map[string]*domain.Topic
	relationships map[string]*domain.Relationship
	paths         map[string][]string
	siblings      map[string][]string
	children      map[string][]string

	createErr       error
	updateKnowledge []string
	knowledgeErr    error
}

func newFakeTopicStore(topics ...*domain.Topic) *fakeTopicStore {
	s := &fakeTopicStore{
		topics:        map[string]*domain.Topic{},
		relationships: map[string]*domain.Relationship{},
		paths:         map[string][]string{},
		siblings:      map[string][]string{},
		children:      map[string][]string{},
	}
	for _, tp := range topics {
		s.topics[tp.ID] = tp
	}
	return s
}

func (s *fakeTopicStore) CreateTopic(_ context.Context, in graph.InsertTopic) (*domain.Topic, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	tp := &domain.Topic{
		ID:          in.ID,
		CanvasID:    in.CanvasID,
		Name:        in.Name,
		Kind:        in.Kind,
		Description: in.Description,
		Knowledge:   in.Knowledge,
	}
	s.topics[tp.ID] = tp
	return tp, nil
}

func (s *fakeTopicStore) GetTopic(_ context.Context, id string) (*domain.Topic, error) {
	return s.topics[id], nil
}

func (s *fakeTopicStore) GetTopicByName(_ context.Context, canvasID, name string) (*domain.Topic, error) {
	for _, tp := range s.topics {
		if tp.CanvasID == canvasID && tp.Name == name {
			return tp, nil
		}
	}
	return nil, nil
}

func (s *fakeTopicStore) GetTopicsForCanvas(_ context.Context, canvasID string) ([]*domain.Topic, error) {
	var out []*domain.Topic
	for _, tp := range s.topics {
		if tp.CanvasID == canvasID {
			out = append(out, tp)
		}
	}
	return out, nil
}

func (s *fakeTopicStore) PathToRoot(_ context.Context, topicID, _ string) ([]string, error) {
	return s.paths[topicID], nil
}

func (s *fakeTopicStore) Siblings(_ context.Context, topicID, _ string) ([]string, error) {
	return s.siblings[topicID], nil
}

func (s *fakeTopicStore) Children(_ context.Context, topicID, _ string) ([]string, error) {
	return s.children[topicID], nil
}

func (s *fakeTopicStore) RelationshipExists(_ context.Context, sourceID, targetID string) (bool, error) {
	_, ok := s.relationships[sourceID+"->"+targetID]
	return ok, nil
}

func (s *fakeTopicStore) CreateRelationship(_ context.Context, in graph.InsertRelationship) (*domain.Relationship, error) {
	rel := &domain.Relationship{ID: in.ID, CanvasID: in.CanvasID, SourceID: in.SourceID, TargetID: in.TargetID}
	s.relationships[in.SourceID+"->"+in.TargetID] = rel
	return rel, nil
}

func (s *fakeTopicStore) Update(_ context.Context, id string, updates graph.UpdateTopic) (*domain.Topic, error) {
	tp, ok := s.topics[id]
	if !ok {
		return nil, graph.ErrNotFound
	}
	if updates.Name != nil {
		tp.Name = *updates.Name
	}
	if updates.Kind != nil {
		tp.Kind = *updates.Kind
	}
	if updates.Description != nil {
		tp.Description = *updates.Description
	}
	if updates.Knowledge != nil {
		tp.Knowledge = *updates.Knowledge
	}
	return tp, nil
}

func (s *fakeTopicStore) UpdateKnowledge(ctx context.Context, topicID, knowledge string) (*domain.Topic, error) {
	if s.knowledgeErr != nil {
		return nil, s.knowledgeErr
	}
	s.updateKnowledge = append(s.updateKnowledge, knowledge)
	return s.Update(ctx, topicID, graph.UpdateTopic{Knowledge: &knowledge})
}

func (s *fakeTopicStore) DeleteTopic(_ context.Context, id string) error {
	if _, ok := s.topics[id]; !ok {
		return graph.ErrNotFound
	}
	delete(s.topics, id)
	return nil
}

func (s *fakeTopicStore) DeleteTopicsForCanvas(_ context.Context, canvasID string) error {
	for id, tp := range s.topics {
		if tp.CanvasID == canvasID {
			delete(s.topics, id)
		}
	}
	return nil
}

type fakeGenerator struct {
	response string
	err      error

	prompts []string
	configs []GenerateConfig
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, cfg GenerateConfig) (string, error) {
	g.prompts = append(g.prompts, prompt)
	g.configs = append(g.configs, cfg)
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type fakeDocSearcher struct {
	matches []domain.DocumentMatch
	err     error
}

func (d *fakeDocSearcher) Search(_ context.Context, _ string, _ int, _ float64) ([]domain.DocumentMatch, error) {
	return d.matches, d.err
}

type fakeInternetSearcher struct {
	webResults  []domain.SearchResult
	newsResults []domain.SearchResult
	webErr      error
	newsErr     error

	webQueries  []string
	newsQueries []string
}

func (f *fakeInternetSearcher) Search(_ context.Context, req SearchRequest) ([]domain.SearchResult, error) {
	f.webQueries = append(f.webQueries, req.Query)
	return f.webResults, f.webErr
}

func (f *fakeInternetSearcher) SearchNews(_ context.Context, req NewsSearchRequest) ([]domain.SearchResult, error) {
	f.newsQueries = append(f.newsQueries, req.Query)
	return f.newsResults, f.newsErr
}

func testTopic(canvasID, name string) *domain.Topic {
	return &domain.Topic{
		ID:       uuid.NewString(),
		CanvasID: canvasID,
		Name:     name,
		Kind:     domain.TopicOriginal,
	}
}

func keywordsJSON(keywords ...string) string {
	out := `{"keywords":[`
	for i, k := range keywords {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%q", k)
	}
	return out + `]}`
}
