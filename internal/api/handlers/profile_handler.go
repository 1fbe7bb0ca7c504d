package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/habalhub/habal-hub/internal/api/dto"
	"github.com/habalhub/habal-hub/internal/api/middleware"
	"github.com/habalhub/habal-hub/internal/domain/location"
	"github.com/habalhub/habal-hub/internal/domain/payment"
	"github.com/habalhub/habal-hub/internal/domain/user"
)

// UpdateProfile handles PUT /v1/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	u := middleware.CurrentUser(c)
	updated, err := h.Sessions.UpdateProfile(c.Request.Context(), u.ID, user.ProfileUpdate{
		Name:      req.Name,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponse(updated))
}

// ListMyReviews handles GET /v1/profile/reviews
func (h *Handlers) ListMyReviews(c *gin.Context) {
	u := middleware.CurrentUser(c)
	reviews, err := h.Reviews.ListByReviewee(c.Request.Context(), u.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

// CreateSavedLocation handles POST /v1/profile/locations
func (h *Handlers) CreateSavedLocation(c *gin.Context) {
	var req dto.SavedLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	u := middleware.CurrentUser(c)
	loc := &location.SavedLocation{
		ID:        uuid.New(),
		UserID:    u.ID,
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		IsHome:    req.IsHome,
		IsWork:    req.IsWork,
	}
	if err := h.SavedLocations.Create(c.Request.Context(), loc); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, loc)
}

// ListSavedLocations handles GET /v1/profile/locations
func (h *Handlers) ListSavedLocations(c *gin.Context) {
	u := middleware.CurrentUser(c)
	locations, err := h.SavedLocations.ListByUser(c.Request.Context(), u.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations, "count": len(locations)})
}

// DeleteSavedLocation handles DELETE /v1/profile/locations/:id
func (h *Handlers) DeleteSavedLocation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location ID"})
		return
	}

	u := middleware.CurrentUser(c)
	if err := h.SavedLocations.Delete(c.Request.Context(), id, u.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Location deleted"})
}

// CreatePaymentMethod handles POST /v1/profile/payment-methods
func (h *Handlers) CreatePaymentMethod(c *gin.Context) {
	var req dto.PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	details, err := json.Marshal(req.Details)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment details"})
		return
	}

	u := middleware.CurrentUser(c)
	method := &payment.Method{
		ID:      uuid.New(),
		UserID:  u.ID,
		Type:    payment.Type(req.Type),
		Details: details,
	}
	if err := h.Payments.Create(c.Request.Context(), method); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, method)
}

// ListPaymentMethods handles GET /v1/profile/payment-methods
func (h *Handlers) ListPaymentMethods(c *gin.Context) {
	u := middleware.CurrentUser(c)
	methods, err := h.Payments.ListByUser(c.Request.Context(), u.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_methods": methods, "count": len(methods)})
}

// SetDefaultPaymentMethod handles POST /v1/profile/payment-methods/:id/default
func (h *Handlers) SetDefaultPaymentMethod(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method ID"})
		return
	}

	u := middleware.CurrentUser(c)
	if err := h.Payments.SetDefault(c.Request.Context(), id, u.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Default payment method updated"})
}

// DeletePaymentMethod handles DELETE /v1/profile/payment-methods/:id
func (h *Handlers) DeletePaymentMethod(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method ID"})
		return
	}

	u := middleware.CurrentUser(c)
	if err := h.Payments.Delete(c.Request.Context(), id, u.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Payment method deleted"})
}
