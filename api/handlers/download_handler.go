package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
)

// DownloadHandler handles download-related HTTP requests
type DownloadHandler struct {
	queueMgr    *app.QueueManager
	downloadMgr *app.DownloadManager
	logger      *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(queueMgr *app.QueueManager, downloadMgr *app.DownloadManager, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		queueMgr:    queueMgr,
		downloadMgr: downloadMgr,
		logger:      logger,
	}
}

// AddDownloadRequest represents a request to add a download
type AddDownloadRequest struct {
	URL      string `json:"url" binding:"required"`
	Platform string `json:"platform,omitempty"`
	Quality  string `json:"quality,omitempty"`
}

// AddDownload handles POST /api/v1/downloads
func (h *DownloadHandler) AddDownload(c *gin.Context) {
	var req AddDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	download, err := h.queueMgr.AddDownload(req.URL, domain.Platform(req.Platform), domain.Quality(req.Quality))
	if err != nil {
		h.logger.Warn("Rejected download request", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, download)
}

// GetDownload handles GET /api/v1/downloads/:id
func (h *DownloadHandler) GetDownload(c *gin.Context) {
	download, err := h.queueMgr.GetDownload(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}
	c.JSON(http.StatusOK, download)
}

// GetOutcome handles GET /api/v1/downloads/:id/outcome and exposes the full
// strategy attempt trail for a finished download.
func (h *DownloadHandler) GetOutcome(c *gin.Context) {
	download, err := h.queueMgr.GetDownload(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}

	outcome := download.ParseOutcome()
	if outcome == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no outcome recorded yet"})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// ListDownloads handles GET /api/v1/downloads
func (h *DownloadHandler) ListDownloads(c *gin.Context) {
	filters := make(map[string]interface{})
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if platform := c.Query("platform"); platform != "" {
		filters["platform"] = platform
	}

	downloads, err := h.queueMgr.ListDownloads(filters)
	if err != nil {
		h.logger.Error("Failed to list downloads", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, downloads)
}

// GetStats handles GET /api/v1/downloads/stats
func (h *DownloadHandler) GetStats(c *gin.Context) {
	stats, err := h.queueMgr.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CancelDownload handles POST /api/v1/downloads/:id/cancel
func (h *DownloadHandler) CancelDownload(c *gin.Context) {
	id := c.Param("id")
	if err := h.downloadMgr.CancelDownload(id); err != nil {
		h.logger.Error("Failed to cancel download", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "download cancelled"})
}

// RetryDownload handles POST /api/v1/downloads/:id/retry
func (h *DownloadHandler) RetryDownload(c *gin.Context) {
	id := c.Param("id")
	if err := h.downloadMgr.RetryDownload(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to retry download", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "download queued for retry"})
}

// DeleteDownload handles DELETE /api/v1/downloads/:id
func (h *DownloadHandler) DeleteDownload(c *gin.Context) {
	id := c.Param("id")
	if err := h.queueMgr.DeleteDownload(id); err != nil {
		h.logger.Error("Failed to delete download", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "download deleted"})
}
