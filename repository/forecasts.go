// forecasts.go - Forecast store: inserts and per-user listings

package repository

import (
	"context"
	"errors"
	"fmt"

	"go-forecast-backend/models"

	"gorm.io/gorm"
)

const forecastRowColumns = `forecasts.id, forecasts.first_place, forecasts.second_place,
	forecasts.third_place, forecasts.percentage, users.username, users.email`

type ForecastRepository struct {
	db     *gorm.DB
	writer Writer
}

func NewForecastRepository(db *gorm.DB, writer Writer) *ForecastRepository {
	return &ForecastRepository{db: db, writer: writer}
}

// Submit stores the fields verbatim and returns the new forecast id.
func (r *ForecastRepository) Submit(ctx context.Context, userID uint, first, second, third string, percentage int) (uint, error) {
	forecast := models.Forecast{
		UserID:      userID,
		FirstPlace:  first,
		SecondPlace: second,
		ThirdPlace:  third,
		Percentage:  percentage,
	}
	err := r.writer.Do(ctx, func() error {
		return r.db.WithContext(ctx).Omit("User").Create(&forecast).Error
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return 0, fmt.Errorf("submit forecast for user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("submit forecast for user %d: %w", userID, err)
	}
	return forecast.ID, nil
}

// ListByUser returns the user's forecasts in insertion order, joined with
// the owner's username and email. No forecasts is an empty slice.
func (r *ForecastRepository) ListByUser(ctx context.Context, userID uint) ([]models.ForecastRow, error) {
	rows := make([]models.ForecastRow, 0)
	err := r.joined(ctx).
		Where("forecasts.user_id = ?", userID).
		Order("forecasts.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list forecasts for user %d: %w", userID, err)
	}
	return rows, nil
}

// ListAll returns every user's forecasts. Only the diagnostic dump uses it.
func (r *ForecastRepository) ListAll(ctx context.Context) ([]models.ForecastRow, error) {
	rows := make([]models.ForecastRow, 0)
	if err := r.joined(ctx).Order("forecasts.id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}
	return rows, nil
}

func (r *ForecastRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Forecast{}).
		Select(forecastRowColumns).
		Joins("JOIN users ON forecasts.user_id = users.id")
}
