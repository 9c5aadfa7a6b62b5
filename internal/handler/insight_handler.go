package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/pitchcoach/internal/pkg/errcode"
	"github.com/xxxsen/pitchcoach/internal/pkg/response"
	"github.com/xxxsen/pitchcoach/internal/service"
)

// InsightHandler serves the read side of a conversation: coverage progress,
// transcript search and free-form questions.
type InsightHandler struct {
	coverage  *service.CoverageService
	search    *service.SearchService
	assistant *service.AssistantService
}

func NewInsightHandler(coverage *service.CoverageService, search *service.SearchService, assistant *service.AssistantService) *InsightHandler {
	return &InsightHandler{coverage: coverage, search: search, assistant: assistant}
}

func (h *InsightHandler) Coverage(c *gin.Context) {
	var currentTime *float64
	if raw := c.Query("current_time"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "current_time must be a number")
			return
		}
		currentTime = &value
	}
	result, err := h.coverage.Coverage(c.Request.Context(), c.Param("id"), currentTime)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *InsightHandler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "query is required")
		return
	}
	results, err := h.search.Search(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, results)
}

type chatRequest struct {
	Question string `json:"question"`
}

func (h *InsightHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	answer, err := h.assistant.Ask(c.Request.Context(), c.Param("id"), req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"answer": answer})
}
