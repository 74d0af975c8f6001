package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizchain/solver-service/internal/models"
	"github.com/quizchain/solver-service/internal/repositories"
	"github.com/quizchain/solver-service/internal/services"
	"github.com/quizchain/solver-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	chainService  services.ChainService
	exportService services.ExportService
}

func NewSessionHandler(
	chainService services.ChainService,
	exportService services.ExportService,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:   NewBaseHandler(logger),
		chainService:  chainService,
		exportService: exportService,
	}
}

func (h *SessionHandler) parseSessionID(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid session id",
			Details: "session id cannot be empty",
		})
	}
	return id
}

func (h *SessionHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Session not found"})
	case errors.Is(err, services.ErrStoreDisabled), errors.Is(err, services.ErrStatusCacheDisabled):
		c.JSON(http.StatusNotImplemented, ErrorResponse{
			Message: "Feature not available",
			Details: err.Error(),
		})
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal error", err)
	}
}

// GetSessionStatus returns the live snapshot of a chain from the status cache.
func (h *SessionHandler) GetSessionStatus(c *gin.Context) {
	id := h.parseSessionID(c)
	if id == "" {
		return
	}

	snapshot, err := h.chainService.GetSessionStatus(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetSession returns a persisted session with its attempt records.
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := h.parseSessionID(c)
	if id == "" {
		return
	}

	session, err := h.chainService.GetSession(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ListSessions returns persisted sessions, newest first by default.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	filters := repositories.SessionFilters{
		Email:     c.Query("email"),
		SortBy:    c.DefaultQuery("sort_by", "started_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := c.Query("status"); status != "" {
		st := models.SessionStatus(status)
		filters.Status = &st
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = offset
	}

	sessions, total, err := h.chainService.ListSessions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    total,
	})
}

// ExportSession streams the session's attempt history as an xlsx workbook.
func (h *SessionHandler) ExportSession(c *gin.Context) {
	id := h.parseSessionID(c)
	if id == "" {
		return
	}

	data, err := h.exportService.ExportSessionResults(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrStoreDisabled) {
			h.handleServiceError(c, err)
			return
		}
		h.RespondWithError(c, http.StatusBadRequest, "Export failed", err, err.Error())
		return
	}

	filename := fmt.Sprintf("session-%s-%s.xlsx", id, time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		data)
}
