// forecast.go - Defines the Forecast model and its joined listing row

package models

import "strconv"

type Forecast struct { // Forecast is one immutable prediction submitted by a user
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`                                             // Foreign key to users table
	User        User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Owner reference
	FirstPlace  string `json:"first_place"`
	SecondPlace string `json:"second_place"`
	ThirdPlace  string `json:"third_place"`
	Percentage  int    `json:"percentage"` // Confidence, accepted verbatim
}

// ForecastRow is a forecast joined with its owner's username and email.
type ForecastRow struct {
	ID          uint
	FirstPlace  string
	SecondPlace string
	ThirdPlace  string
	Percentage  int
	Username    string
	Email       string
}

// ExportHeader is the fixed first row of every forecast export.
var ExportHeader = []string{"First Place", "Second Place", "Third Place", "Percentage", "Username", "Email"}

// Record returns the row in ExportHeader column order.
func (r ForecastRow) Record() []string {
	return []string{r.FirstPlace, r.SecondPlace, r.ThirdPlace, strconv.Itoa(r.Percentage), r.Username, r.Email}
}
