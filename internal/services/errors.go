package services

import (
	"errors"
	"fmt"

	"github.com/mindgrove/mindgrove-backend/internal/data/graph"
)

// Error kinds returned by the orchestration services. Callers match with
// errors.Is; the wrapped message keeps the original diagnostic.
var (
	ErrCanvasNotFound  = errors.New("canvas not found")
	ErrTopicNotFound   = errors.New("topic not found")
	ErrTopicExists     = errors.New("topic already exists")
	ErrValidation      = errors.New("validation failed")
	ErrDatabase        = errors.New("database error")
	ErrAIService       = errors.New("ai service error")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrSearchService   = errors.New("search service error")
	ErrDocumentIndex   = errors.New("document index error")
)

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, graph.ErrNotFound)
}
