package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/habalhub/habal-hub/internal/api/dto"
	"github.com/habalhub/habal-hub/internal/api/middleware"
	"github.com/habalhub/habal-hub/internal/domain/ride"
	"github.com/habalhub/habal-hub/internal/domain/user"
	"github.com/habalhub/habal-hub/internal/service/booking"
	"github.com/habalhub/habal-hub/internal/service/fare"
	"github.com/habalhub/habal-hub/pkg/logger"
)

// BookRide handles POST /v1/rides
func (h *Handlers) BookRide(c *gin.Context) {
	var req dto.BookRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	rider := middleware.CurrentUser(c)
	bookReq := booking.Request{
		RiderID:       rider.ID,
		Mode:          booking.Mode(req.Mode),
		Pickup:        booking.Endpoint(req.Pickup),
		Dropoff:       booking.Endpoint(req.Dropoff),
		PaymentMethod: ride.PaymentMethod(req.PaymentMethod),
	}
	if req.ScheduledTime != nil {
		bookReq.ScheduledTime = *req.ScheduledTime
	}

	r, err := h.Booking.Book(c.Request.Context(), bookReq)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Monitoring.RecordRideBooked(r.ID.String(), r.Fare, string(r.PaymentMethod))
	h.Logger.Info("Ride booked",
		logger.String("ride_id", r.ID.String()),
		logger.String("rider_id", rider.ID.String()),
		logger.Float64("fare", r.Fare),
	)

	c.JSON(http.StatusCreated, r)
}

// EstimateFare handles GET /v1/rides/estimate
func (h *Handlers) EstimateFare(c *gin.Context) {
	pickupLat, err1 := strconv.ParseFloat(c.Query("pickup_lat"), 64)
	pickupLng, err2 := strconv.ParseFloat(c.Query("pickup_lng"), 64)
	dropoffLat, err3 := strconv.ParseFloat(c.Query("dropoff_lat"), 64)
	dropoffLng, err4 := strconv.ParseFloat(c.Query("dropoff_lng"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fare":        h.Fares.Estimate(pickupLat, pickupLng, dropoffLat, dropoffLng),
		"distance_km": fare.Distance(pickupLat, pickupLng, dropoffLat, dropoffLng),
	})
}

// ListRides handles GET /v1/rides. Riders see their own rides, drivers
// see open requests plus rides assigned to them, admins see everything.
func (h *Handlers) ListRides(c *gin.Context) {
	u := middleware.CurrentUser(c)

	filter := ride.Filter{UserID: u.ID, Role: u.Role}
	if statuses := c.Query("status"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			status := ride.Status(strings.TrimSpace(s))
			if !status.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	rides, err := h.Rides.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rides": rides, "count": len(rides)})
}

// GetRide handles GET /v1/rides/:id
func (h *Handlers) GetRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ride ID"})
		return
	}

	r, err := h.Rides.GetByID(c.Request.Context(), rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if !canViewRide(middleware.CurrentUser(c), r) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your ride"})
		return
	}

	c.JSON(http.StatusOK, r)
}

// AcceptRide handles POST /v1/rides/:id/accept
func (h *Handlers) AcceptRide(c *gin.Context) {
	h.transition(c, h.Lifecycle.Accept)
}

// StartRide handles POST /v1/rides/:id/start
func (h *Handlers) StartRide(c *gin.Context) {
	h.transition(c, h.Lifecycle.Start)
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *Handlers) CompleteRide(c *gin.Context) {
	h.transition(c, h.Lifecycle.Complete)
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *Handlers) CancelRide(c *gin.Context) {
	h.transition(c, h.Lifecycle.Cancel)
}

// RateRide handles POST /v1/rides/:id/rate
func (h *Handlers) RateRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ride ID"})
		return
	}

	var req dto.RateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	rider := middleware.CurrentUser(c)
	rev, err := h.Lifecycle.Rate(c.Request.Context(), rideID, rider.ID, req.Rating, req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rev)
}

// transition runs one lifecycle step keyed on the acting user.
func (h *Handlers) transition(c *gin.Context, step func(ctx context.Context, rideID, actorID uuid.UUID) (*ride.Ride, error)) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ride ID"})
		return
	}

	u := middleware.CurrentUser(c)
	r, err := step(c.Request.Context(), rideID, u.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

func canViewRide(u *user.User, r *ride.Ride) bool {
	switch u.Role {
	case user.RoleAdmin:
		return true
	case user.RoleDriver:
		return r.DriverID == nil || *r.DriverID == u.ID
	default:
		return r.RiderID == u.ID
	}
}
