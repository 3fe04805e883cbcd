package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go-forecast-backend/config"
	"go-forecast-backend/database"
	"go-forecast-backend/handlers"
	"go-forecast-backend/repository"
	"go-forecast-backend/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEngine(t *testing.T, diagnostics bool) *gin.Engine {
	t.Helper()
	db, err := database.Connect(&config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "router.db"),
		GinMode:  "release",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	writer := database.NewLockRetrier(logger)
	users := repository.NewUserRepository(db, writer, 4)
	forecasts := repository.NewForecastRepository(db, writer)
	sessions := session.NewManager(session.NewMemoryStore(), users, "test-secret", time.Hour)

	h := handlers.NewHandler(users, forecasts, sessions, logger)
	return Setup(h, sessions, Options{Mode: gin.TestMode, EnableDiagnostics: diagnostics, Logger: logger})
}

func TestSetupRoutes(t *testing.T) {
	r := setupEngine(t, false)

	tests := []struct {
		path     string
		code     int
		location string
	}{
		{"/", http.StatusFound, "/register"},
		{"/register", http.StatusOK, ""},
		{"/login", http.StatusOK, ""},
		{"/logout", http.StatusSeeOther, "/login"},
		{"/submit", http.StatusSeeOther, "/login"},
		{"/forecasts", http.StatusSeeOther, "/login"},
		{"/download_csv", http.StatusSeeOther, "/login"},
		{"/download_xlsx", http.StatusSeeOther, "/login"},
		{"/check_forecasts", http.StatusNotFound, ""},
		{"/metrics", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, w.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, w.Header().Get("Location"))
			}
		})
	}
}

func TestDiagnosticsStayBehindSessionGate(t *testing.T) {
	r := setupEngine(t, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/check_forecasts", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
