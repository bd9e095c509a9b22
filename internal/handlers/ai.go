package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
	"github.com/mindgrove/mindgrove-backend/internal/services"
)

// AIHandler exposes the two model-backed operations: keyword expansion and
// insight enrichment.
type AIHandler struct {
	log       *logger.Logger
	expansion *services.ExpansionService
	insight   *services.InsightService
}

func NewAIHandler(log *logger.Logger, expansion *services.ExpansionService, insight *services.InsightService) *AIHandler {
	return &AIHandler{
		log:       log.With("handler", "AIHandler"),
		expansion: expansion,
		insight:   insight,
	}
}

func (h *AIHandler) GenerateKeywords(c *gin.Context) {
	var req services.ExpandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	req.CanvasID = c.Param("canvasId")

	result, err := h.expansion.Expand(c.Request.Context(), req)
	if err != nil {
		h.log.Error("keyword expansion failed", "canvas_id", req.CanvasID, "error", err.Error())
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *AIHandler) GenerateInsights(c *gin.Context) {
	var req services.EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	req.CanvasID = c.Param("canvasId")
	req.TopicID = c.Param("topicId")

	result, err := h.insight.Enrich(c.Request.Context(), req)
	if err != nil {
		h.log.Error("insight enrichment failed", "topic_id", req.TopicID, "error", err.Error())
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
