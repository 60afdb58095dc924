package services

import (
	"time"

	"github.com/nbowman189/vitruvian/config"
	"github.com/nbowman189/vitruvian/models"
)

func dayStartLocal(t time.Time) time.Time {
	loc := time.Local
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, loc)
}

// UpsertCheckIn records a weigh-in, one row per (user, local day).
func UpsertCheckIn(userID uint, date time.Time, weight, bodyFat float64) (*models.CheckIn, error) {
	start := dayStartLocal(date)

	checkin := models.CheckIn{
		UserID:  userID,
		Date:    start,
		Weight:  weight,
		BodyFat: bodyFat,
	}

	err := config.DB.
		Where("user_id = ? AND date = ?", userID, start).
		Assign(map[string]any{"weight": weight, "body_fat": bodyFat}).
		FirstOrCreate(&checkin).Error
	if err != nil {
		return nil, err
	}

	EmitAlert(userID, "checkin", "Check-in recorded for "+start.Format("2006-01-02"))
	return &checkin, nil
}

func GetCheckIn(userID uint, date time.Time) (*models.CheckIn, error) {
	start := dayStartLocal(date)

	var checkin models.CheckIn
	err := config.DB.
		Where("user_id = ? AND date = ?", userID, start).
		First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

func ListCheckIns(userID uint, from, to time.Time) ([]models.CheckIn, error) {
	var checkins []models.CheckIn
	err := config.DB.
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStartLocal(from), dayStartLocal(to).Add(24*time.Hour)).
		Order("date asc").
		Find(&checkins).Error
	return checkins, err
}

// TrendPoint is one point in the trend series returned to graphing clients.
type TrendPoint struct {
	Date       string  `json:"date"`
	Weight     float64 `json:"weight"`
	BodyFat    float64 `json:"bodyFat"`
	WeightAvg  float64 `json:"weightAvg"`  // trailing 7-calendar-day average
	BodyFatAvg float64 `json:"bodyFatAvg"` // same window, recorded values only
}

// GetTrend returns the check-in series with trailing 7-calendar-day averages.
// Days without a check-in shrink the sample, never widen the window.
func GetTrend(userID uint, from, to time.Time) ([]TrendPoint, error) {
	checkins, err := ListCheckIns(userID, from, to)
	if err != nil {
		return nil, err
	}

	points := make([]TrendPoint, 0, len(checkins))
	for i, c := range checkins {
		windowStart := c.Date.AddDate(0, 0, -6)

		var wSum, bfSum float64
		wN, bfN := 0, 0
		for j := i; j >= 0 && !checkins[j].Date.Before(windowStart); j-- {
			wSum += checkins[j].Weight
			wN++
			if checkins[j].BodyFat > 0 {
				bfSum += checkins[j].BodyFat
				bfN++
			}
		}

		p := TrendPoint{
			Date:      c.Date.Format("2006-01-02"),
			Weight:    c.Weight,
			BodyFat:   c.BodyFat,
			WeightAvg: wSum / float64(wN),
		}
		if bfN > 0 {
			p.BodyFatAvg = bfSum / float64(bfN)
		}
		points = append(points, p)
	}
	return points, nil
}

// LatestCheckIn returns the most recent check-in, or ErrRecordNotFound.
func LatestCheckIn(userID uint) (*models.CheckIn, error) {
	var checkin models.CheckIn
	err := config.DB.
		Where("user_id = ?", userID).
		Order("date desc").
		First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

// BMIFor computes BMI from a height in centimeters and a weight in pounds.
func BMIFor(heightCm, weightLbs float64) float64 {
	if heightCm <= 0 || weightLbs <= 0 {
		return 0
	}
	h := heightCm / 100.0
	kg := weightLbs / 2.2046226218
	return kg / (h * h)
}
