// Package ginmw provides Gin HTTP middleware over the session manager.
//
// The middleware functions accept a hostwise.AuthService and gate requests
// on the locally reconciled session state — no direct dependency on any
// specific session provider.
package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	hostwise "github.com/hostwise/hostwise-go"
)

// Context keys for storing session data in gin.Context.
const (
	KeySubjectID = "hostwise_subject_id"
	KeyEmail     = "hostwise_email"
	KeyRole      = "hostwise_role"
	KeyProfile   = "hostwise_profile"
)

// AuthOption configures RequireAuth behavior.
type AuthOption func(*authConfig)

type authConfig struct {
	excludedPaths map[string]bool
}

// WithExcludedPaths sets paths that skip authentication (e.g. health checks).
func WithExcludedPaths(paths ...string) AuthOption {
	return func(cfg *authConfig) {
		for _, p := range paths {
			cfg.excludedPaths[p] = true
		}
	}
}

// RequireAuth returns Gin middleware that rejects requests while no session
// is held. On success it stores the subject's id, email, and profile in the
// Gin context and enriches the request context for downstream handlers.
// Responds with 401 if no session is held.
func RequireAuth(auth hostwise.AuthService, opts ...AuthOption) gin.HandlerFunc {
	cfg := &authConfig{excludedPaths: make(map[string]bool)}
	for _, o := range opts {
		o(cfg)
	}

	return func(c *gin.Context) {
		if cfg.excludedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		sess := auth.Session()
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}

		c.Set(KeySubjectID, sess.User.ID)
		c.Set(KeyEmail, sess.User.Email)

		ctx := hostwise.WithSubjectID(c.Request.Context(), sess.User.ID)
		if profile := auth.Profile(); profile != nil {
			c.Set(KeyProfile, profile)
			c.Set(KeyRole, profile.Role)
			ctx = hostwise.WithProfile(ctx, profile)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole returns Gin middleware that checks the signed-in subject's
// role against the given minimum. Requires RequireAuth to run first.
// Responds with 403 if the role is insufficient or no profile is resolved.
func RequireRole(auth hostwise.AuthService, role hostwise.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.HasPermission(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// --- Context helpers ---

// GetSubjectID returns the signed-in subject's id from the Gin context.
func GetSubjectID(c *gin.Context) string {
	v, _ := c.Get(KeySubjectID)
	s, _ := v.(string)
	return s
}

// GetEmail returns the signed-in subject's email from the Gin context.
func GetEmail(c *gin.Context) string {
	v, _ := c.Get(KeyEmail)
	s, _ := v.(string)
	return s
}

// GetRole returns the resolved profile role from the Gin context.
func GetRole(c *gin.Context) hostwise.Role {
	v, _ := c.Get(KeyRole)
	r, _ := v.(hostwise.Role)
	return r
}

// GetProfile returns the resolved profile from the Gin context, or nil.
func GetProfile(c *gin.Context) *hostwise.Profile {
	v, _ := c.Get(KeyProfile)
	p, _ := v.(*hostwise.Profile)
	return p
}
