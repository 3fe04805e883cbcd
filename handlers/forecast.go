// forecast.go - Handles forecast submission, listing and export
// Every handler here sits behind middleware.SessionMiddleware and only ever
// touches the authenticated user's own rows (except the diagnostic dump).

package handlers // Declares the package name

import ( // Import required packages
	"bytes"        // Export buffers
	"encoding/csv" // CSV export
	"log/slog"     // Structured logging
	"net/http"     // HTTP status codes
	"time"         // Event timestamps

	"go-forecast-backend/metrics"    // Prometheus counters
	"go-forecast-backend/middleware" // Current user lookup
	"go-forecast-backend/models"     // ForecastRow and export header

	"github.com/gin-gonic/gin"    // Gin web framework
	"github.com/xuri/excelize/v2" // XLSX export
)

type ForecastInput struct { // Struct for forecast form input; text is accepted verbatim
	FirstPlace  string `form:"firstPlace"`                    // Predicted winner
	SecondPlace string `form:"secondPlace"`                   // Predicted runner-up
	ThirdPlace  string `form:"thirdPlace"`                    // Predicted third
	Percentage  *int   `form:"percentage" binding:"required"` // Confidence, must be an integer
}

// ForecastSubmittedEvent is published after a forecast is stored.
type ForecastSubmittedEvent struct {
	ForecastID  uint      `json:"forecast_id"`
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	FirstPlace  string    `json:"first_place"`
	SecondPlace string    `json:"second_place"`
	ThirdPlace  string    `json:"third_place"`
	Percentage  int       `json:"percentage"`
	SubmittedAt time.Time `json:"submitted_at"`
}

const xlsxSheet = "Forecasts"

func (h *Handler) SubmitForm(c *gin.Context) { // GET /submit
	c.HTML(http.StatusOK, "index.html", gin.H{"success": false})
}

func (h *Handler) Submit(c *gin.Context) { // POST /submit
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var input ForecastInput                      // Declare input variable
	if err := c.ShouldBind(&input); err != nil { // Parse form input
		c.HTML(http.StatusBadRequest, "index.html", gin.H{"success": false, "error": "Percentage must be a whole number."})
		return
	}
	ctx := c.Request.Context()

	id, err := h.forecasts.Submit(ctx, user.ID, input.FirstPlace, input.SecondPlace, input.ThirdPlace, *input.Percentage)
	if err != nil {
		h.fail(c, err)
		return
	}

	metrics.ForecastsSubmitted.Inc()
	h.logger.InfoContext(ctx, "forecast saved", slog.Uint64("forecast_id", uint64(id)), slog.Uint64("user_id", uint64(user.ID)))
	h.publishSubmitted(c, ForecastSubmittedEvent{
		ForecastID:  id,
		UserID:      user.ID,
		Username:    user.Username,
		FirstPlace:  input.FirstPlace,
		SecondPlace: input.SecondPlace,
		ThirdPlace:  input.ThirdPlace,
		Percentage:  *input.Percentage,
		SubmittedAt: time.Now().UTC(),
	})

	c.HTML(http.StatusOK, "index.html", gin.H{"success": true})
}

func (h *Handler) ListForecasts(c *gin.Context) { // GET /forecasts
	rows, ok := h.ownRows(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "forecasts.html", gin.H{"forecasts": rows})
}

// DownloadCSV exports the user's forecasts with a fixed header row.
func (h *Handler) DownloadCSV(c *gin.Context) {
	rows, ok := h.ownRows(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(models.ExportHeader)
	for _, row := range rows {
		_ = w.Write(row.Record())
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=forecasts.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// DownloadXLSX is the spreadsheet twin of DownloadCSV.
func (h *Handler) DownloadXLSX(c *gin.Context) {
	rows, ok := h.ownRows(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		h.fail(c, err)
		return
	}

	header := make([]interface{}, len(models.ExportHeader))
	for i, title := range models.ExportHeader {
		header[i] = title
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		h.fail(c, err)
		return
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			h.fail(c, err)
			return
		}
		values := []interface{}{row.FirstPlace, row.SecondPlace, row.ThirdPlace, row.Percentage, row.Username, row.Email}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			h.fail(c, err)
			return
		}
	}
	_ = f.SetColWidth(xlsxSheet, "A", "C", 18)
	_ = f.SetColWidth(xlsxSheet, "E", "F", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=forecasts.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// CheckForecasts dumps every user's forecasts to the log. It is a
// diagnostic: only registered when enabled, and still behind the session gate.
func (h *Handler) CheckForecasts(c *gin.Context) {
	ctx := c.Request.Context()
	rows, err := h.forecasts.ListAll(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	for _, row := range rows {
		h.logger.InfoContext(ctx, "forecast",
			slog.Uint64("id", uint64(row.ID)),
			slog.String("username", row.Username),
			slog.String("first_place", row.FirstPlace),
			slog.String("second_place", row.SecondPlace),
			slog.String("third_place", row.ThirdPlace),
			slog.Int("percentage", row.Percentage),
		)
	}
	c.String(http.StatusOK, "Check console for forecasts data")
}

// requireUser returns the user set by the session gate. Routes are never
// mounted without the gate; this only guards against wiring mistakes.
func (h *Handler) requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
	return user, ok
}

func (h *Handler) ownRows(c *gin.Context) ([]models.ForecastRow, bool) {
	user, ok := h.requireUser(c)
	if !ok {
		return nil, false
	}
	rows, err := h.forecasts.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return rows, true
}

// publishSubmitted is best effort: a broker outage never fails the submission.
func (h *Handler) publishSubmitted(c *gin.Context, event ForecastSubmittedEvent) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(h.eventTopic, event); err != nil {
		h.logger.WarnContext(c.Request.Context(), "publish forecast event failed",
			slog.String("topic", h.eventTopic),
			slog.String("error", err.Error()),
		)
	}
}
