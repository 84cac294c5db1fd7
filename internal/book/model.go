package book

import (
	"time"

	"bookshop/internal/user"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Book and Review both belong to a User; the User fields exist so the schema carries
// the foreign keys and are never loaded or serialized.
type Book struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	Author    string    `json:"author" gorm:"not null"`
	Price     float64   `json:"price" gorm:"not null"`
	Condition string    `json:"condition" gorm:"not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      user.User `json:"-" gorm:"foreignKey:UserID"`
	Reviews   []Review  `json:"-" gorm:"foreignKey:BookID"`
}

type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   *string   `json:"comment"`
	Date      time.Time `json:"date"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	BookID    uint      `json:"book_id" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updated_at"`
	User      user.User `json:"-" gorm:"foreignKey:UserID"`
}

func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
