package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/habalhub/habal-hub/internal/api/dto"
	"github.com/habalhub/habal-hub/internal/api/middleware"
	"github.com/habalhub/habal-hub/internal/domain/user"
	"github.com/habalhub/habal-hub/internal/service/session"
	"github.com/habalhub/habal-hub/pkg/logger"
)

// SignUp handles POST /v1/auth/signup
func (h *Handlers) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	u, token, err := h.Sessions.SignUp(c.Request.Context(), session.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Monitoring.RecordUserSignedUp(string(u.Role))
	h.Logger.Info("User signed up",
		logger.String("user_id", u.ID.String()),
		logger.String("role", string(u.Role)),
	)

	c.JSON(http.StatusCreated, dto.AuthResponse{Token: token, User: userResponse(u)})
}

// SignIn handles POST /v1/auth/signin
func (h *Handlers) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	u, token, err := h.Sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, User: userResponse(u)})
}

// SignOut handles POST /v1/auth/signout
func (h *Handlers) SignOut(c *gin.Context) {
	token := middleware.BearerToken(c)
	if err := h.Sessions.SignOut(c.Request.Context(), token); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect_to": "/login"})
}

// Me handles GET /v1/auth/me
func (h *Handlers) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, userResponse(u))
}

func userResponse(u *user.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
		Dashboard: u.Role.DefaultDashboard(),
	}
}
