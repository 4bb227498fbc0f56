package models

import "time"

// Like represents a user's like on a plot.
// The combination of UserID and PlotID must be unique. Likes are removed
// with hard deletes so a later re-like inserts a fresh row.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_plot" json:"user_id"`
	PlotID    uint      `gorm:"not null;uniqueIndex:idx_user_plot" json:"plot_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user"`
	Plot Plot `gorm:"foreignKey:PlotID" json:"plot"`
}
