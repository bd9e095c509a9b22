package domain

import "time"

type TopicKind string

const (
	TopicOriginal  TopicKind = "original"
	TopicGenerated TopicKind = "generated"
)

func (k TopicKind) Valid() bool {
	return k == TopicOriginal || k == TopicGenerated
}

// Canvas is the top-level container: a named collection of topics owned by one
// author. SystemInstruction, when set, is injected into every prompt composed
// for this canvas.
type Canvas struct {
	ID                string    `json:"id"`
	AuthorID          string    `json:"authorId"`
	Name              string    `json:"name"`
	SystemInstruction string    `json:"systemInstruction"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Topic is a node in the knowledge graph. Knowledge holds the serialized
// enrichment blob; parse it with ParseTopicKnowledge, never by hand.
type Topic struct {
	ID          string    `json:"id"`
	CanvasID    string    `json:"canvasId"`
	Name        string    `json:"name"`
	Kind        TopicKind `json:"type"`
	Description string    `json:"description,omitempty"`
	Knowledge   string    `json:"knowledge,omitempty"`
	PositionX   float64   `json:"positionX"`
	PositionY   float64   `json:"positionY"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Relationship is a directed parent->child RELATED_TO edge between two topics
// in the same canvas.
type Relationship struct {
	ID        string    `json:"id"`
	CanvasID  string    `json:"canvasId"`
	SourceID  string    `json:"sourceId"`
	TargetID  string    `json:"targetId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SearchResult is one ranked hit from a web or news search.
type SearchResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Content       string `json:"content"`
	PublishedDate string `json:"publishedDate,omitempty"`
}

// DocumentMatch is one similarity hit from the document index. Score is the
// vector distance; lower means more relevant.
type DocumentMatch struct {
	ID          string  `json:"chunkId"`
	Filename    string  `json:"filename"`
	Title       string  `json:"name"`
	Description string  `json:"description"`
	Content     string  `json:"text"`
	Score       float64 `json:"score"`
}
