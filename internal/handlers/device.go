package handlers

import (
	"errors"
	"net/http"

	"workshop_monitor/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 100

	errGetStatus     = "failed to load status"
	errGetHistory    = "failed to load history"
	errInvalidLimitQ = "limit must be an integer between 1 and 1000"
)

// @Summary      Current device reading
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Failure      500  {object}  map[string]string
// @Router       /status [get]
func (h *Handler) deviceStatus(c *gin.Context) {
	st, err := h.services.Device.Status(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "device_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Archived device samples, newest first
// @Tags         device
// @Produce      json
// @Param        limit  query  int  false  "1..1000"  default(100)
// @Success      200  {array}   models.HistoryRecord
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /history [get]
func (h *Handler) deviceHistory(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultHistoryLimit)
	if err != nil || limit < repository.MinHistoryLimit || limit > repository.MaxHistoryLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLimitQ})
		return
	}
	recs, err := h.services.Device.History(c.Request.Context(), limit)
	if errors.Is(err, repository.ErrLimitOutOfRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLimitQ})
		return
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "device_history_failed", err, "limit", limit)
		return
	}
	c.JSON(http.StatusOK, recs)
}
