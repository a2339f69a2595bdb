package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a rating with optional text posted by a user on a book.
// Reviews are removed by the database when their book is deleted.
type Review struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	BookID       uint      `json:"book_id" gorm:"not null;index"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	Rating       int       `json:"rating" gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5"`
	ReviewText   string    `json:"review_text" gorm:"type:text;not null;default:''"`
	DatePosted   time.Time `json:"date_posted" gorm:"autoCreateTime"`
	UpvotesCount int       `json:"upvotes_count" gorm:"not null;default:0"`

	// Relations
	Book Book `json:"-" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// OwnerID returns the id of the reviewer, the only user allowed to mutate the review.
func (r Review) OwnerID() uint {
	return r.UserID
}
