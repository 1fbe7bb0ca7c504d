package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/habalhub/habal-hub/internal/domain/admin"
	"github.com/habalhub/habal-hub/internal/domain/location"
	"github.com/habalhub/habal-hub/internal/domain/payment"
	"github.com/habalhub/habal-hub/internal/domain/review"
	"github.com/habalhub/habal-hub/internal/domain/ride"
	"github.com/habalhub/habal-hub/internal/domain/user"
	"github.com/habalhub/habal-hub/internal/service/booking"
	"github.com/habalhub/habal-hub/internal/service/fare"
	"github.com/habalhub/habal-hub/internal/service/lifecycle"
	"github.com/habalhub/habal-hub/internal/service/session"
	"github.com/habalhub/habal-hub/internal/service/tracking"
	apperrors "github.com/habalhub/habal-hub/pkg/errors"
	"github.com/habalhub/habal-hub/pkg/logger"
	"github.com/habalhub/habal-hub/pkg/monitoring"
	"github.com/habalhub/habal-hub/pkg/websocket"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Sessions       *session.Service
	Booking        *booking.Service
	Lifecycle      *lifecycle.Controller
	Fares          *fare.Calculator
	Rides          ride.Repository
	Reviews        review.Repository
	Users          user.Repository
	SavedLocations location.SavedRepository
	Payments       payment.Repository
	Stats          admin.StatsRepository
	Tracker        *tracking.Tracker
	Hub            *websocket.Hub
	Monitoring     *monitoring.NewRelicApp
	Logger         *logger.Logger
}

// respondError maps domain errors to HTTP responses. Unrecognized
// errors become a 500 and are logged; the message is not leaked.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, session.ErrSessionRevoked):
		status, message = http.StatusUnauthorized, "Session expired"
	case errors.Is(err, user.ErrEmailTaken):
		status, message = http.StatusConflict, "Email already registered"
	case errors.Is(err, user.ErrUserNotFound):
		status, message = http.StatusNotFound, "User not found"
	case errors.Is(err, user.ErrInvalidRole):
		status, message = http.StatusBadRequest, "Invalid role"
	case errors.Is(err, ride.ErrRideNotFound):
		status, message = http.StatusNotFound, "Ride not found"
	case errors.Is(err, ride.ErrRideTaken):
		status, message = http.StatusConflict, "Ride already taken"
	case errors.Is(err, ride.ErrInvalidStatus):
		status, message = http.StatusConflict, "Ride is not in a state that allows this"
	case errors.Is(err, ride.ErrNotRideOwner), errors.Is(err, ride.ErrNotRideDriver):
		status, message = http.StatusForbidden, "Not your ride"
	case errors.Is(err, ride.ErrInvalidPayment):
		status, message = http.StatusBadRequest, "Invalid payment method"
	case errors.Is(err, ride.ErrMissingEndpoints):
		status, message = http.StatusBadRequest, "Pickup and dropoff are required"
	case errors.Is(err, review.ErrInvalidRating):
		status, message = http.StatusBadRequest, "Rating must be between 1 and 5"
	case errors.Is(err, location.ErrSavedLocationNotFound):
		status, message = http.StatusNotFound, "Saved location not found"
	case errors.Is(err, payment.ErrMethodNotFound):
		status, message = http.StatusNotFound, "Payment method not found"
	case errors.Is(err, payment.ErrInvalidType):
		status, message = http.StatusBadRequest, "Invalid payment method type"
	default:
		if appErr := apperrors.GetAppError(err); appErr != nil {
			status, message = appErr.Status, appErr.Message
		}
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error("Request failed", logger.Err(err))
	}
	c.JSON(status, gin.H{"error": message})
}
