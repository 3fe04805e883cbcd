// user.go - Handles user registration, login and logout

package handlers // Declares the package name

import ( // Import required packages
	"errors"   // Matching sentinel errors
	"log/slog" // Structured logging
	"net/http" // HTTP status codes

	"go-forecast-backend/metrics"    // Prometheus counters
	"go-forecast-backend/middleware" // Session cookie helpers
	"go-forecast-backend/models"     // Sentinel errors
	"go-forecast-backend/session"    // Cookie name

	"github.com/gin-gonic/gin" // Gin web framework
)

type RegisterInput struct { // Struct for registration form input
	Username string `form:"username" binding:"required"` // Username (required)
	Email    string `form:"email" binding:"required"`    // Email (required)
	Password string `form:"password" binding:"required"` // Password (required)
}

type LoginInput struct { // Struct for login form input
	Username string `form:"username" binding:"required"` // Username (required)
	Password string `form:"password" binding:"required"` // Password (required)
}

const invalidLogin = "Invalid username or password!" // Never says which field was wrong

// Home sends logged-in users to the forecast form and everyone else to registration.
func (h *Handler) Home(c *gin.Context) {
	token, _ := c.Cookie(session.CookieName)
	if _, err := h.sessions.Resolve(c.Request.Context(), token); err == nil {
		c.Redirect(http.StatusFound, "/submit")
		return
	}
	c.Redirect(http.StatusFound, "/register")
}

func (h *Handler) RegisterForm(c *gin.Context) { // GET /register
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

func (h *Handler) Register(c *gin.Context) { // Handler for user registration
	var input RegisterInput                      // Declare input variable
	if err := c.ShouldBind(&input); err != nil { // Parse form input
		c.HTML(http.StatusBadRequest, "register.html", gin.H{"error": "Username, email and password are required."})
		return
	}
	ctx := c.Request.Context()

	// Checked here for a friendly message; the unique index still decides
	taken, err := h.users.UsernameTaken(ctx, input.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	if taken {
		c.HTML(http.StatusConflict, "register.html", gin.H{"error": "Username already exists!"})
		return
	}

	if _, err := h.users.Register(ctx, input.Username, input.Email, input.Password); err != nil { // Hash and save user
		if errors.Is(err, models.ErrDuplicateIdentity) { // Lost a race, or the email is taken
			c.HTML(http.StatusConflict, "register.html", gin.H{"error": "Username or email already exists!"})
			return
		}
		h.fail(c, err)
		return
	}

	metrics.Registrations.Inc()
	h.logger.InfoContext(ctx, "user registered", slog.String("username", input.Username))
	c.Redirect(http.StatusSeeOther, "/login") // Success: go log in
}

func (h *Handler) LoginForm(c *gin.Context) { // GET /login
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

func (h *Handler) Login(c *gin.Context) { // Handler for user login
	var input LoginInput                         // Declare input variable
	if err := c.ShouldBind(&input); err != nil { // Parse form input
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"error": invalidLogin})
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.Verify(ctx, input.Username, input.Password) // Check password against stored hash
	if errors.Is(err, models.ErrInvalidCredentials) {
		metrics.Logins.WithLabelValues("failure").Inc()
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"error": invalidLogin})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	token, err := h.sessions.Login(ctx, user) // Open a session
	if err != nil {
		h.fail(c, err)
		return
	}

	metrics.Logins.WithLabelValues("success").Inc()
	middleware.SetSessionCookie(c, token, h.sessions.TTL(), h.SecureCookie)
	c.Redirect(http.StatusSeeOther, "/submit")
}

// Logout revokes the session (if any) and always lands on the login page.
func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(session.CookieName)
	if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
		h.logger.WarnContext(c.Request.Context(), "logout failed", slog.String("error", err.Error()))
	}
	middleware.ClearSessionCookie(c, h.SecureCookie)
	c.Redirect(http.StatusSeeOther, "/login")
}
