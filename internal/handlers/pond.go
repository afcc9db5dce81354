package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"pondwatch"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusIngested = "ingested"

	errGetStatus       = "failed to load pond status"
	errIngestReading   = "failed to store reading"
	errGetHistory      = "failed to load reading history"
	errInvalidBodyPref = "invalid body: "

	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for sensor ingest.
type readingRequest struct {
	Temperature float64 `json:"temperature" binding:"required"`
	PH          float64 `json:"ph" binding:"required"`
	WaterLevel  float64 `json:"water_level" binding:"required"`
	ObservedAt  string  `json:"observed_at,omitempty"` // RFC3339, defaults to now
}

// IngestReadingRequest is an exported model for Swagger docs of the ingest payload.
type IngestReadingRequest struct {
	// Water temperature in Celsius
	Temperature float64 `json:"temperature" example:"26.5"`
	// Acidity
	PH float64 `json:"ph" example:"7.1"`
	// Water level in centimeters
	WaterLevel float64 `json:"water_level" example:"15"`
	// Sample time (RFC3339); server time when omitted
	ObservedAt string `json:"observed_at,omitempty" example:"2025-08-27T15:04:05Z"`
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

// @Summary      Pond status
// @Description  Latest reading, per-metric display-band statuses and aggregate condition
// @Tags         pond
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	ctx := c.Request.Context()
	snap, err := h.services.Monitoring.Latest(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "status_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Ingest sensor reading
// @Tags         pond
// @Accept       json
// @Produce      json
// @Param        body  body   IngestReadingRequest  true  "Sample payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/readings [post]
// @Security     BearerAuth
func (h *Handler) ingestReading(c *gin.Context) {
	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	reading := pondwatch.SensorReading{
		Temperature: req.Temperature,
		PH:          req.PH,
		WaterLevel:  req.WaterLevel,
	}
	if req.ObservedAt != "" {
		ts, err := time.Parse(time.RFC3339, req.ObservedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid observed_at; use RFC3339"})
			return
		}
		reading.ObservedAt = ts
	}

	ctx := c.Request.Context()
	if err := h.services.Sensors.Ingest(ctx, reading); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errIngestReading, "reading_ingest_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusIngested})
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      Hourly reading history
// @Description  Hour-bucketed averages of the reading log, newest hour first. Date-only 'to' is treated as end-of-day inclusive.
// @Tags         pond
// @Produce      json
// @Param        from  query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to    query   string  false  "End of range, same formats. Date-only treated as end of day."  example(2025-08-31)
// @Success      200   {object}  map[string]interface{}  "count, hours"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/readings/hourly [get]
// @Security     BearerAuth
func (h *Handler) getHourlyHistory(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from time.Time
		to   time.Time
		err  error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	// If only a date is provided, make 'to' end-of-day inclusive.
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	hours, err := h.services.Monitoring.HourlyAverages(ctx, from, to)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "history_load_failed", err,
			"from", from, "to", to)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(hours),
		"hours": hours,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
