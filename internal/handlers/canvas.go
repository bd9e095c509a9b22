package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mindgrove/mindgrove-backend/internal/middleware"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
	"github.com/mindgrove/mindgrove-backend/internal/services"
)

type CanvasHandler struct {
	log           *logger.Logger
	canvasService *services.CanvasService
}

func NewCanvasHandler(log *logger.Logger, canvasService *services.CanvasService) *CanvasHandler {
	return &CanvasHandler{
		log:           log.With("handler", "CanvasHandler"),
		canvasService: canvasService,
	}
}

func authorID(c *gin.Context) string {
	return c.GetString(middleware.AuthorIDKey)
}

func (h *CanvasHandler) Create(c *gin.Context) {
	var req services.CreateCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	canvas, err := h.canvasService.Create(c.Request.Context(), authorID(c), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, canvas)
}

func (h *CanvasHandler) Get(c *gin.Context) {
	canvas, err := h.canvasService.Get(c.Request.Context(), c.Param("canvasId"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, canvas)
}

func (h *CanvasHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	page, err := h.canvasService.List(c.Request.Context(), authorID(c), limit, offset)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, page)
}

func (h *CanvasHandler) Update(c *gin.Context) {
	var req services.UpdateCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	canvas, err := h.canvasService.Update(c.Request.Context(), c.Param("canvasId"), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, canvas)
}

func (h *CanvasHandler) Delete(c *gin.Context) {
	if err := h.canvasService.Delete(c.Request.Context(), c.Param("canvasId")); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CanvasHandler) Graph(c *gin.Context) {
	graph, err := h.canvasService.Graph(c.Request.Context(), c.Param("canvasId"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, graph)
}
