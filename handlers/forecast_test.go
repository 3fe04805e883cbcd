// forecast_test.go - Tests for forecast submission, listing and export

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"go-forecast-backend/models"
	"go-forecast-backend/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func forecastForm(first, second, third, percentage string) url.Values {
	return url.Values{
		"firstPlace":  {first},
		"secondPlace": {second},
		"thirdPlace":  {third},
		"percentage":  {percentage},
	}
}

// TestEndToEndForecastFlow walks register -> login -> submit -> list -> logout
func TestEndToEndForecastFlow(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	app.register(t, "alice", "a@x.com", "pw1")
	cookie := app.login(t, "alice", "pw1")

	w := app.postForm("/submit", forecastForm("Horse1", "Horse2", "Horse3", "80"), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Forecast saved.")

	user, err := app.sessions.Resolve(ctx, cookie.Value)
	require.NoError(t, err)
	rows, err := app.forecasts.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Horse1", rows[0].FirstPlace)
	assert.Equal(t, "Horse2", rows[0].SecondPlace)
	assert.Equal(t, "Horse3", rows[0].ThirdPlace)
	assert.Equal(t, 80, rows[0].Percentage)

	w = app.get("/forecasts", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<td>Horse1</td>")

	w = app.get("/logout", cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	_, err = app.sessions.Resolve(ctx, cookie.Value)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/submit", "/forecasts", "/download_csv", "/download_xlsx", "/check_forecasts"} {
		w := app.get(path, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}

	w := app.postForm("/submit", forecastForm("a", "b", "c", "1"), &http.Cookie{Name: session.CookieName, Value: "forged"})
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestForecastsAreScopedPerUser(t *testing.T) {
	app := newTestApp(t)

	app.register(t, "alice", "a@x.com", "pw1")
	app.register(t, "bob", "b@x.com", "pw2")
	alice := app.login(t, "alice", "pw1")
	bob := app.login(t, "bob", "pw2")

	require.Equal(t, http.StatusOK, app.postForm("/submit", forecastForm("Horse1", "Horse2", "Horse3", "80"), alice).Code)

	w := app.get("/forecasts", bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Horse1")
	assert.Contains(t, w.Body.String(), "No forecasts yet.")

	w = app.get("/download_csv", bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "First Place,Second Place,Third Place,Percentage,Username,Email\n", w.Body.String())
}

func TestDownloadCSV(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "a@x.com", "pw1")
	cookie := app.login(t, "alice", "pw1")

	require.Equal(t, http.StatusOK, app.postForm("/submit", forecastForm("Horse1", "Horse2", "Horse3", "80"), cookie).Code)
	require.Equal(t, http.StatusOK, app.postForm("/submit", forecastForm("Comet, Jr", "Dasher", "Vixen", "55"), cookie).Code)

	w := app.get("/download_csv", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=forecasts.csv", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))

	want := "First Place,Second Place,Third Place,Percentage,Username,Email\n" +
		"Horse1,Horse2,Horse3,80,alice,a@x.com\n" +
		"\"Comet, Jr\",Dasher,Vixen,55,alice,a@x.com\n"
	assert.Equal(t, want, w.Body.String())
}

func TestDownloadXLSX(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "a@x.com", "pw1")
	cookie := app.login(t, "alice", "pw1")
	require.Equal(t, http.StatusOK, app.postForm("/submit", forecastForm("Horse1", "Horse2", "Horse3", "80"), cookie).Code)

	w := app.get("/download_xlsx", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=forecasts.xlsx", w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.ExportHeader, rows[0])
	assert.Equal(t, []string{"Horse1", "Horse2", "Horse3", "80", "alice", "a@x.com"}, rows[1])
}

func TestSubmitRejectsNonIntegerPercentage(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "a@x.com", "pw1")
	cookie := app.login(t, "alice", "pw1")

	for _, pct := range []string{"eighty", "80.5"} {
		w := app.postForm("/submit", forecastForm("a", "b", "c", pct), cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code, pct)
	}

	w := app.postForm("/submit", url.Values{"firstPlace": {"a"}}, cookie) // percentage missing
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckForecastsDiagnostic(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "a@x.com", "pw1")
	cookie := app.login(t, "alice", "pw1")

	w := app.get("/check_forecasts", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Check console for forecasts data", w.Body.String())
}

func TestCheckForecastsNotMountedByDefault(t *testing.T) {
	app := newTestApp(t)
	app.router = setupRouter(app.handler, app.sessions, false)

	app.register(t, "alice", "a@x.com", "pw1")
	cookie := app.login(t, "alice", "pw1")

	w := app.get("/check_forecasts", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	topic    string
	payloads []interface{}
	err      error
}

func (p *recordingPublisher) Publish(topic string, payload interface{}) error {
	p.topic = topic
	p.payloads = append(p.payloads, payload)
	return p.err
}

func TestSubmitPublishesEvent(t *testing.T) {
	app := newTestApp(t)
	pub := &recordingPublisher{}
	app.handler.WithEvents(pub, "forecasts/submitted")

	app.register(t, "alice", "a@x.com", "pw1")
	cookie := app.login(t, "alice", "pw1")
	require.Equal(t, http.StatusOK, app.postForm("/submit", forecastForm("Horse1", "Horse2", "Horse3", "80"), cookie).Code)

	assert.Equal(t, "forecasts/submitted", pub.topic)
	require.Len(t, pub.payloads, 1)
	event, ok := pub.payloads[0].(ForecastSubmittedEvent)
	require.True(t, ok)
	assert.Equal(t, "alice", event.Username)
	assert.Equal(t, 80, event.Percentage)

	body, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"first_place":"Horse1"`)
}

func TestSubmitSurvivesPublishFailure(t *testing.T) {
	app := newTestApp(t)
	app.handler.WithEvents(&recordingPublisher{err: errors.New("broker down")}, "forecasts/submitted")

	app.register(t, "alice", "a@x.com", "pw1")
	cookie := app.login(t, "alice", "pw1")

	w := app.postForm("/submit", forecastForm("Horse1", "Horse2", "Horse3", "80"), cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

// lockedForecasts is a ForecastStore whose writes always end locked.
type lockedForecasts struct{ ForecastStore }

func (lockedForecasts) Submit(context.Context, uint, string, string, string, int) (uint, error) {
	return 0, fmt.Errorf("submit forecast: %w after 5 attempts", models.ErrStorageLocked)
}

func TestSubmitLockedStorageIsHardError(t *testing.T) {
	users, _ := setupTestDB(t)
	sessions := session.NewManager(session.NewMemoryStore(), users, "test-secret", time.Hour)
	h := NewHandler(users, lockedForecasts{}, sessions, discardLogger())
	app := &testApp{router: setupRouter(h, sessions, false), handler: h, users: users, sessions: sessions}

	app.register(t, "alice", "a@x.com", "pw1")
	cookie := app.login(t, "alice", "pw1")

	w := app.postForm("/submit", forecastForm("a", "b", "c", "1"), cookie)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
