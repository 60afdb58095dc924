package models

import (
	"time"

	"gorm.io/gorm"
)

// CheckIn is one day's weigh-in. One row per user per local day.
type CheckIn struct {
	gorm.Model
	UserID  uint      `gorm:"uniqueIndex:idx_checkin_user_date;not null"`
	Date    time.Time `gorm:"uniqueIndex:idx_checkin_user_date;not null"` // truncate to local midnight
	Weight  float64   // e.g. 185.4 (lbs)
	BodyFat float64   // e.g. 18.2 (percent), 0 = not recorded
}
