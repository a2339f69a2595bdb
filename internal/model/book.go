package model

import "time"

// Book is a listing created by a user, who owns it for its whole lifetime.
type Book struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"size:200;not null"`
	Author          string    `json:"author" gorm:"size:100;not null"`
	CoverImageURL   *string   `json:"cover_image_url" gorm:"size:255"`
	Description     *string   `json:"description" gorm:"type:text"`
	PublicationDate time.Time `json:"publication_date" gorm:"type:date"`
	Genres          GenreList `json:"genres" gorm:"column:genres;size:200"`
	AffiliateLink   *string   `json:"affiliate_link" gorm:"size:255"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// OwnerID returns the id of the user allowed to mutate the book.
func (b Book) OwnerID() uint {
	return b.UserID
}
