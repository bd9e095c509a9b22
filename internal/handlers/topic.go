package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
	"github.com/mindgrove/mindgrove-backend/internal/services"
)

type TopicHandler struct {
	log          *logger.Logger
	topicService *services.TopicService
}

func NewTopicHandler(log *logger.Logger, topicService *services.TopicService) *TopicHandler {
	return &TopicHandler{
		log:          log.With("handler", "TopicHandler"),
		topicService: topicService,
	}
}

func (h *TopicHandler) Create(c *gin.Context) {
	var req services.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topic, err := h.topicService.Create(c.Request.Context(), c.Param("canvasId"), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

func (h *TopicHandler) Get(c *gin.Context) {
	topic, err := h.topicService.Get(c.Request.Context(), c.Param("topicId"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, topic)
}

func (h *TopicHandler) ListForCanvas(c *gin.Context) {
	topics, err := h.topicService.ListForCanvas(c.Request.Context(), c.Param("canvasId"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"topics": topics})
}

func (h *TopicHandler) Update(c *gin.Context) {
	var req services.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topic, err := h.topicService.Update(c.Request.Context(), c.Param("topicId"), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, topic)
}

func (h *TopicHandler) Delete(c *gin.Context) {
	if err := h.topicService.Delete(c.Request.Context(), c.Param("topicId")); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
