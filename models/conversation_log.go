package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConversationLog holds one coaching conversation per row. Messages is the
// full chat transcript as a JSON array (system/user/assistant/tool turns).
// At most one row per user has Active = true.
type ConversationLog struct {
	gorm.Model
	UserID        uint      `gorm:"index;not null"`
	StartedAt     time.Time `gorm:"not null"`
	Messages      datatypes.JSON
	MessageCount  int
	ToolCallCount int
	Active        bool `gorm:"default:true;index"`
}
