// handler.go - Dependencies shared by every HTTP handler
// Handlers get their stores and session manager explicitly through Handler;
// the only per-request state they read is the user the session gate set.

package handlers // Declares the package name

import ( // Import required packages
	"context"  // Request-scoped calls into stores
	"errors"   // Matching sentinel errors
	"log/slog" // Structured logging
	"net/http" // HTTP status codes
	"time"     // Session lifetimes

	"go-forecast-backend/models" // User, ForecastRow and sentinel errors

	"github.com/gin-gonic/gin" // Gin web framework
)

// CredentialStore is what the handlers need from the user repository.
type CredentialStore interface {
	Register(ctx context.Context, username, email, rawPassword string) (uint, error)
	Verify(ctx context.Context, username, rawPassword string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

// ForecastStore is what the handlers need from the forecast repository.
type ForecastStore interface {
	Submit(ctx context.Context, userID uint, first, second, third string, percentage int) (uint, error)
	ListByUser(ctx context.Context, userID uint) ([]models.ForecastRow, error)
	ListAll(ctx context.Context) ([]models.ForecastRow, error)
}

// SessionManager opens, resolves and closes login sessions.
type SessionManager interface {
	Login(ctx context.Context, user *models.User) (string, error)
	Resolve(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
	TTL() time.Duration
}

// Publisher announces stored forecasts; mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

type Handler struct { // Handler bundles the collaborators of every route
	users     CredentialStore
	forecasts ForecastStore
	sessions  SessionManager
	logger    *slog.Logger

	events     Publisher // nil when no broker is configured
	eventTopic string

	SecureCookie bool // Set the Secure flag on the session cookie
}

func NewHandler(users CredentialStore, forecasts ForecastStore, sessions SessionManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{users: users, forecasts: forecasts, sessions: sessions, logger: logger}
}

// WithEvents publishes a ForecastSubmittedEvent to topic after every stored forecast.
func (h *Handler) WithEvents(p Publisher, topic string) *Handler {
	h.events = p
	h.eventTopic = topic
	return h
}

// fail ends the request with a hard error. An exhausted lock retry is the
// one storage failure reported as 503; the rest are 500.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, models.ErrStorageLocked) {
		h.logger.ErrorContext(c.Request.Context(), "write failed, database locked", slog.String("error", err.Error()))
		c.String(http.StatusServiceUnavailable, "database is busy, please try again")
		c.Abort()
		return
	}
	h.logger.ErrorContext(c.Request.Context(), "request failed", slog.String("error", err.Error()))
	c.String(http.StatusInternalServerError, "internal server error")
	c.Abort()
}
