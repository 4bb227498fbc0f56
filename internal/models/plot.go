package models

import (
	"time"

	"gorm.io/gorm"
)

// Plot represents a published plot: a rendered figure plus the code that
// produced it.
type Plot struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"size:4000" json:"description"`
	Code        string `gorm:"type:text;not null" json:"code"`
	ImageURL    string `json:"image_url"`
	Likes       int    `gorm:"not null;default:0" json:"likes"`
	AuthorID    uint   `gorm:"not null;index" json:"author_id"`
	Author      User   `gorm:"foreignKey:AuthorID" json:"author"`
	// MyFavorite indicates whether the requesting user liked this plot (computed)
	MyFavorite bool           `gorm:"->" json:"my_favorite"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
