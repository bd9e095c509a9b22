package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindgrove/mindgrove-backend/internal/platform/apierr"
	"github.com/mindgrove/mindgrove-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps a service error kind to its HTTP status and code.
func RespondServiceError(c *gin.Context, err error) {
	ae := classify(err)
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func classify(err error) *apierr.Error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return apierr.New(http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, services.ErrCanvasNotFound):
		return apierr.New(http.StatusNotFound, "canvas_not_found", err)
	case errors.Is(err, services.ErrTopicNotFound):
		return apierr.New(http.StatusNotFound, "topic_not_found", err)
	case errors.Is(err, services.ErrTopicExists):
		return apierr.New(http.StatusConflict, "topic_exists", err)
	case errors.Is(err, services.ErrInvalidResponse):
		return apierr.New(http.StatusBadGateway, "invalid_model_response", err)
	case errors.Is(err, services.ErrAIService):
		return apierr.New(http.StatusBadGateway, "ai_service_failed", err)
	case errors.Is(err, services.ErrSearchService):
		return apierr.New(http.StatusBadGateway, "search_service_failed", err)
	case errors.Is(err, services.ErrDocumentIndex):
		return apierr.New(http.StatusBadGateway, "document_index_failed", err)
	default:
		return apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
}
