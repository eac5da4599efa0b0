package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"workshop_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusAccepted = "accepted"

	defaultPage     = 1
	defaultPageSize = 25

	errInvalidPaging = "page and size must be positive integers"
	errNotPolling    = "polling is stopped"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err, "request_id", c.GetString(requestIDKey)}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Full dashboard projection
// @Description  Both stream panels, latest card, chart series, table rows and system status
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  view.Dashboard
// @Router       /api/v1/dashboard [get]
func (h *Handler) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Dashboard.Dashboard())
}

// @Summary      Status stream and latest card
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  service.StatusView
// @Router       /api/v1/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Dashboard.Status())
}

// @Summary      History stream and downsampled chart
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  service.HistoryView
// @Router       /api/v1/history [get]
func (h *Handler) getHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Dashboard.History())
}

// @Summary      Paginated history table
// @Tags         dashboard
// @Produce      json
// @Param        page  query  int  false  "Page number, from 1"   default(1)
// @Param        size  query  int  false  "Rows per page"         default(25)
// @Success      200  {object}  view.Page
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/history/table [get]
func (h *Handler) getHistoryTable(c *gin.Context) {
	page, errPage := queryInt(c, "page", defaultPage)
	size, errSize := queryInt(c, "size", defaultPageSize)
	if errPage != nil || errSize != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPaging})
		return
	}
	p, err := h.services.Dashboard.Table(page, size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPaging})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Refresh now
// @Description  Dispatches an out-of-band fetch; the result shows up in later reads
// @Tags         dashboard
// @Produce      json
// @Param        stream  query  string  false  "status, history or all"  default(all)
// @Success      202  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/refresh [post]
func (h *Handler) refresh(c *gin.Context) {
	target := c.DefaultQuery("stream", service.RefreshAll)
	err := h.services.Dashboard.Refresh(target)
	switch {
	case errors.Is(err, service.ErrUnknownStream):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrNotPolling):
		c.JSON(http.StatusConflict, gin.H{"error": errNotPolling})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, "refresh failed", "refresh_failed", err, "stream", target)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted, "stream": target})
}

// queryInt reads an integer query parameter, returning def when it is absent.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	s, ok := c.GetQuery(key)
	if !ok || s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
