// auth.go - Session authentication middleware
// This is the only access-control gate: every protected route runs it first.
//
// Authentication Flow:
// 1. Read the session token from the session cookie
// 2. Resolve it to a user through the session manager
// 3. On failure clear the cookie and redirect to /login
// 4. On success store the user in the gin context for handlers

package middleware // Declares the package name

import ( // Import required packages
	"context"  // Request context for session lookups
	"errors"   // Matching sentinel errors
	"log/slog" // Structured logging
	"net/http" // HTTP status codes (303, 500)
	"time"     // Cookie lifetimes

	"go-forecast-backend/models"  // User model and auth errors
	"go-forecast-backend/session" // Cookie name

	"github.com/gin-gonic/gin" // Gin web framework (for middleware)
)

const currentUserKey = "currentUser" // gin context key holding *models.User

// SessionResolver maps a session token to its user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// SessionMiddleware - Returns a Gin middleware that only lets requests with a
// valid session through. Anything else is redirected to the login page.
func SessionMiddleware(sessions SessionResolver, secureCookie bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) { // Middleware handler (runs before each protected request)
		token, _ := c.Cookie(session.CookieName) // Missing cookie resolves to ErrUnauthenticated

		user, err := sessions.Resolve(c.Request.Context(), token)
		if errors.Is(err, models.ErrUnauthenticated) {
			ClearSessionCookie(c, secureCookie)       // Drop the stale token
			c.Redirect(http.StatusSeeOther, "/login") // Never a raw error
			c.Abort()
			return
		}
		if err != nil { // Session store unavailable
			logger.ErrorContext(c.Request.Context(), "session lookup failed", slog.String("error", err.Error()))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(currentUserKey, user) // Store user in Gin context for handlers
		c.Next()                    // Continue to next handler (authentication successful)
	}
}

// CurrentUser returns the user SessionMiddleware stored for this request.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// SetSessionCookie hands the token to the client as an HttpOnly cookie.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", secure, true)
}
