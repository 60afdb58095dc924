package models

import "gorm.io/gorm"

// Post is a blog entry. Body is raw markdown; rendering happens at read time.
type Post struct {
	gorm.Model
	UserID    uint   `gorm:"index;not null"`
	Title     string `gorm:"not null"`
	Slug      string `gorm:"uniqueIndex;not null"`
	Body      string `gorm:"type:text"`
	Published bool   `gorm:"default:false"`
}
