package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/internal/app"
	"github.com/yourusername/bookqueue-go/internal/domain"
)

// QueueHandler exposes the reconciled queue view, history, notifications
// and the remote commands over the local API.
type QueueHandler struct {
	store    *app.Store
	commands *app.CommandService
	logger   *zap.Logger
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(store *app.Store, commands *app.CommandService, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{
		store:    store,
		commands: commands,
		logger:   logger,
	}
}

// statusRank orders the rendered queue: active work first, then pending,
// then terminal states.
func statusRank(status domain.UnifiedStatus) int {
	switch status {
	case domain.StatusDownloading:
		return 0
	case domain.StatusProcessing:
		return 1
	case domain.StatusWaiting:
		return 2
	case domain.StatusQueued:
		return 3
	case domain.StatusCompleted:
		return 4
	case domain.StatusError:
		return 5
	default:
		return 6
	}
}

// buildView filters, sorts and positions the live states into the
// rendered queue list. Waiting items carry a countdown projection
// evaluated against the current wall clock.
func buildView(states []domain.LiveJobState, filter domain.UnifiedStatus, now time.Time) []domain.QueueViewItem {
	items := make([]domain.QueueViewItem, 0, len(states))
	for _, state := range states {
		if filter != "" && state.Status != filter {
			continue
		}
		items = append(items, domain.QueueViewItem{LiveJobState: state})
	}

	sort.Slice(items, func(i, j int) bool {
		ri, rj := statusRank(items[i].Status), statusRank(items[j].Status)
		if ri != rj {
			return ri < rj
		}
		if items[i].Title != items[j].Title {
			return items[i].Title < items[j].Title
		}
		return items[i].ID < items[j].ID
	})

	epoch := float64(now.Unix())
	for i := range items {
		items[i].Position = i
		if items[i].Status == domain.StatusWaiting && items[i].WaitTime > 0 {
			countdown := domain.ProjectCountdown(items[i].WaitTime, items[i].WaitStart, epoch)
			items[i].Countdown = &countdown
		}
	}
	return items
}

// GetQueue handles GET /api/v1/queue
func (h *QueueHandler) GetQueue(c *gin.Context) {
	filter := domain.UnifiedStatus(c.Query("status"))
	items := buildView(h.store.All(), filter, time.Now())
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetStats handles GET /api/v1/queue/stats
func (h *QueueHandler) GetStats(c *gin.Context) {
	stats := h.store.Stats()

	response := gin.H{
		"total":   0,
		"history": h.store.HistoryLen(),
	}
	total := 0
	for _, status := range []domain.UnifiedStatus{
		domain.StatusIdle,
		domain.StatusQueued,
		domain.StatusWaiting,
		domain.StatusProcessing,
		domain.StatusDownloading,
		domain.StatusCompleted,
		domain.StatusError,
	} {
		count := stats[status]
		response[string(status)] = count
		total += count
	}
	response["total"] = total

	c.JSON(http.StatusOK, response)
}

// ReorderRequest represents a drag gesture against the rendered queue
type ReorderRequest struct {
	DraggedIndex *int `json:"dragged_index" binding:"required"`
	HoverIndex   *int `json:"hover_index" binding:"required"`
}

// Reorder handles POST /api/v1/queue/reorder. The gesture is applied to
// the queued-only view, confirmed against the server, and the new order
// returned. Until the confirmation lands the next poll reflects server
// order.
func (h *QueueHandler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	queued := buildView(h.store.All(), domain.StatusQueued, time.Now())
	moved, err := domain.Reorder(queued, *req.DraggedIndex, *req.HoverIndex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderedIDs := make([]string, len(moved))
	for i, item := range moved {
		orderedIDs[i] = item.ID
	}

	if err := h.commands.ConfirmOrder(c.Request.Context(), orderedIDs); err != nil {
		h.logger.Error("Failed to confirm queue order", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": moved})
}

// GetHistory handles GET /api/v1/history
func (h *QueueHandler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.store.RecentHistory()})
}

// ClearHistory handles DELETE /api/v1/history
func (h *QueueHandler) ClearHistory(c *gin.Context) {
	if err := h.store.ClearHistory(); err != nil {
		h.logger.Error("Failed to clear history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "history cleared"})
}

// GetNotifications handles GET /api/v1/notifications
func (h *QueueHandler) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"visible": h.store.VisibleNotifications(time.Now()),
		"recent":  h.store.RecentNotifications(),
	})
}

// DismissNotification handles POST /api/v1/notifications/:id/dismiss
func (h *QueueHandler) DismissNotification(c *gin.Context) {
	id := c.Param("id")
	if !h.store.Dismiss(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not visible"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification dismissed"})
}

// StartDownloadRequest represents a request to start a download
type StartDownloadRequest struct {
	ID       string `json:"id" binding:"required"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
}

// StartDownload handles POST /api/v1/downloads
func (h *QueueHandler) StartDownload(c *gin.Context) {
	var req StartDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.commands.StartDownload(c.Request.Context(), req.ID, req.Title, req.Author, req.CoverURL); err != nil {
		h.logger.Error("Failed to start download", zap.String("id", req.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	state, _ := h.store.Get(req.ID)
	c.JSON(http.StatusCreated, state)
}

// GetDownload handles GET /api/v1/downloads/:id
func (h *QueueHandler) GetDownload(c *gin.Context) {
	id := c.Param("id")

	state, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}

	c.JSON(http.StatusOK, state)
}

// CancelDownload handles POST /api/v1/downloads/:id/cancel
func (h *QueueHandler) CancelDownload(c *gin.Context) {
	id := c.Param("id")

	if err := h.commands.Cancel(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to cancel download", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "download cancelled"})
}

// ClearCompleted handles DELETE /api/v1/downloads/completed
func (h *QueueHandler) ClearCompleted(c *gin.Context) {
	removed, err := h.commands.ClearCompleted(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to clear completed downloads", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "completed downloads cleared", "removed": removed})
}
