package models

import "time"

const (
	MinScore = 1
	MaxScore = 5
)

// Rating is unique per (user, book); a second submission overwrites Score.
type Rating struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_book"`
	BookID    int64     `json:"book_id" gorm:"not null;uniqueIndex:idx_ratings_user_book;index:idx_ratings_book_id"`
	Score     int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 5"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Book *Book `json:"book,omitempty" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE;"`
}

func (Rating) TableName() string {
	return "ratings"
}

// RatingSummary is the derived aggregate for one book. Average is nil when Count is 0.
type RatingSummary struct {
	BookID  int64
	Average *float64
	Count   int64
}
