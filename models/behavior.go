package models

import (
	"time"

	"gorm.io/gorm"
)

// BehaviorDefinition is a user-defined habit ("stretch", "no late snacks", …).
type BehaviorDefinition struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	Name        string `gorm:"not null"`
	Description string
	Active      bool `gorm:"default:true"`
}

// BehaviorLog records whether a behavior was done on a given day.
type BehaviorLog struct {
	gorm.Model
	UserID     uint      `gorm:"uniqueIndex:idx_behavior_user_day;not null"`
	BehaviorID uint      `gorm:"uniqueIndex:idx_behavior_user_day;not null"`
	Date       time.Time `gorm:"uniqueIndex:idx_behavior_user_day;not null"`
	Completed  bool      `gorm:"default:false"`
}
