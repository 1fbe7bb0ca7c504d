package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/habalhub/habal-hub/internal/api/dto"
	"github.com/habalhub/habal-hub/internal/api/middleware"
	"github.com/habalhub/habal-hub/pkg/logger"
	"github.com/habalhub/habal-hub/pkg/websocket"
)

// UpdateMyLocation handles POST /v1/tracking/location
func (h *Handlers) UpdateMyLocation(c *gin.Context) {
	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	driver := middleware.CurrentUser(c)
	if err := h.Tracker.UpdateLocation(c.Request.Context(), driver.ID, req.Latitude, req.Longitude); err != nil {
		h.respondError(c, err)
		return
	}

	h.Hub.BroadcastToRole("admin", websocket.Message{
		Type: "driver_location",
		Data: map[string]interface{}{
			"driver_id": driver.ID.String(),
			"latitude":  req.Latitude,
			"longitude": req.Longitude,
		},
	})

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Location updated"})
}

// NearbyDrivers handles GET /v1/tracking/nearby
func (h *Handlers) NearbyDrivers(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("longitude"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	radius := 5.0
	if r := c.Query("radius_km"); r != "" {
		parsed, err := strconv.ParseFloat(r, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius"})
			return
		}
		radius = parsed
	}

	drivers, err := h.Tracker.NearbyDrivers(c.Request.Context(), lat, lng, radius, 20)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"drivers": drivers, "count": len(drivers)})
}

// WatchDriver handles GET /v1/tracking/drivers/:id/stream, a
// server-sent event stream of the driver's positions. Closing the
// request ends the stream.
func (h *Handlers) WatchDriver(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	positions := h.Tracker.Watch(c.Request.Context(), driverID)
	h.Logger.Debug("Driver watch started", logger.String("driver_id", driverID.String()))

	c.Stream(func(w io.Writer) bool {
		pos, ok := <-positions
		if !ok {
			return false
		}
		c.SSEvent("position", pos)
		return true
	})
}
