package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/habalhub/habal-hub/internal/api/dto"
	"github.com/habalhub/habal-hub/internal/domain/user"
)

// AdminOverview handles GET /v1/admin/overview
func (h *Handlers) AdminOverview(c *gin.Context) {
	overview, err := h.Stats.Overview(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// AdminListUsers handles GET /v1/admin/users
func (h *Handlers) AdminListUsers(c *gin.Context) {
	var roleFilter *user.Role
	if roleParam := c.Query("role"); roleParam != "" {
		role := user.Role(roleParam)
		if !role.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role filter"})
			return
		}
		roleFilter = &role
	}

	users, err := h.Users.List(c.Request.Context(), roleFilter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// AdminUpdateUser handles PUT /v1/admin/users/:id. Role and email stay
// as created; only the profile fields move.
func (h *Handlers) AdminUpdateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	updated, err := h.Sessions.UpdateProfile(c.Request.Context(), id, user.ProfileUpdate{
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
