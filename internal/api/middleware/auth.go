package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/habalhub/habal-hub/internal/domain/user"
	"github.com/habalhub/habal-hub/internal/service/session"
)

const userKey = "current_user"

// BearerToken extracts the session token from the Authorization header,
// falling back to the token query parameter for websocket upgrades.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// RequireAuth resolves the session token and stores the user on the
// context. Anonymous requests get a 401 carrying the login redirect
// with the attempted path so the client can return after signing in.
func RequireAuth(sessions *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			rejectAnonymous(c)
			return
		}

		u, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			rejectAnonymous(c)
			return
		}

		c.Set(userKey, u)
		c.Next()
	}
}

// RequireRoles allows only the given roles past. Wrong-role requests
// get a 403 carrying the user's own dashboard as the redirect, so the
// client sends them home rather than to an error page.
func RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			rejectAnonymous(c)
			return
		}

		for _, role := range roles {
			if u.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":       "Insufficient permissions",
			"redirect_to": u.Role.DefaultDashboard(),
		})
	}
}

// GuestOnly rejects authenticated requests, pointing them at their own
// dashboard. Used on sign-up and sign-in.
func GuestOnly(sessions *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		u, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":       "Already signed in",
			"redirect_to": u.Role.DefaultDashboard(),
		})
	}
}

// CurrentUser returns the authenticated user set by RequireAuth, or
// nil when the request is anonymous.
func CurrentUser(c *gin.Context) *user.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, ok := v.(*user.User)
	if !ok {
		return nil
	}
	return u
}

func rejectAnonymous(c *gin.Context) {
	next := c.Request.URL.Path
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":       "Authentication required",
		"redirect_to": "/login?next=" + url.QueryEscape(next),
	})
}
