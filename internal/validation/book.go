package validation

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
)

// DateLayout is the accepted publication_date format.
const DateLayout = "2006-01-02"

// MaxGenresLength is the size of the stored, comma-joined genres column.
const MaxGenresLength = 200

// BookPayload is the body of book create and update requests. Pointer fields
// distinguish an absent field from an empty one; fields sent as null are
// recorded separately so they can be cleared.
type BookPayload struct {
	Title           *string   `json:"title" validate:"omitempty,max=200"`
	Author          *string   `json:"author" validate:"omitempty,max=100"`
	CoverImageURL   *string   `json:"cover_image_url" validate:"omitempty,max=255"`
	Description     *string   `json:"description"`
	PublicationDate *string   `json:"publication_date" swaggertype:"string" example:"1965-08-01"`
	Genres          *[]string `json:"genres"`
	AffiliateLink   *string   `json:"affiliate_link" validate:"omitempty,max=255"`

	nulls map[string]bool
}

// UnmarshalJSON decodes the payload and remembers which keys were null.
func (p *BookPayload) UnmarshalJSON(data []byte) error {
	type plain BookPayload
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	nulls, err := nullFields(data)
	if err != nil {
		return err
	}
	*p = BookPayload(decoded)
	p.nulls = nulls
	return nil
}

// IsNull reports whether field was sent as JSON null.
func (p BookPayload) IsNull(field string) bool {
	return p.nulls[field]
}

// nullableBookFields may be cleared by sending null.
var nullableBookFields = []string{"cover_image_url", "description", "genres", "affiliate_link"}

// ValidBook is a book payload that passed every creation rule.
type ValidBook struct {
	Title           string
	Author          string
	CoverImageURL   *string
	Description     *string
	PublicationDate time.Time
	Genres          []string
	AffiliateLink   *string
}

// Book builds the model owned by ownerID.
func (b ValidBook) Book(ownerID uint) *model.Book {
	return &model.Book{
		Title:           b.Title,
		Author:          b.Author,
		CoverImageURL:   b.CoverImageURL,
		Description:     b.Description,
		PublicationDate: b.PublicationDate,
		Genres:          model.GenreList(b.Genres),
		AffiliateLink:   b.AffiliateLink,
		UserID:          ownerID,
	}
}

// BookChanges holds the fields present in a partial update.
type BookChanges struct {
	Title           *string
	Author          *string
	CoverImageURL   *string
	Description     *string
	PublicationDate *time.Time
	Genres          *[]string
	AffiliateLink   *string
	// Cleared names the optional fields sent as null.
	Cleared map[string]bool
}

// Apply overwrites the present fields of b. Ownership is never touched.
func (c BookChanges) Apply(b *model.Book) {
	if c.Cleared["cover_image_url"] {
		b.CoverImageURL = nil
	}
	if c.Cleared["description"] {
		b.Description = nil
	}
	if c.Cleared["genres"] {
		b.Genres = model.GenreList{}
	}
	if c.Cleared["affiliate_link"] {
		b.AffiliateLink = nil
	}
	if c.Title != nil {
		b.Title = *c.Title
	}
	if c.Author != nil {
		b.Author = *c.Author
	}
	if c.CoverImageURL != nil {
		b.CoverImageURL = c.CoverImageURL
	}
	if c.Description != nil {
		b.Description = c.Description
	}
	if c.PublicationDate != nil {
		b.PublicationDate = *c.PublicationDate
	}
	if c.Genres != nil {
		b.Genres = model.GenreList(*c.Genres)
	}
	if c.AffiliateLink != nil {
		b.AffiliateLink = c.AffiliateLink
	}
}

// ValidateBookPayload checks a creation payload. Required fields are checked
// first, then lengths, then the date, then genres.
func (v *Validator) ValidateBookPayload(p BookPayload) (ValidBook, error) {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"title", p.Title},
		{"author", p.Author},
		{"publication_date", p.PublicationDate},
	} {
		if isBlank(f.value) {
			return ValidBook{}, apperrors.MissingField(f.name)
		}
	}

	changes, err := v.ValidateBookUpdate(p)
	if err != nil {
		return ValidBook{}, err
	}

	book := ValidBook{
		Title:           *changes.Title,
		Author:          *changes.Author,
		CoverImageURL:   changes.CoverImageURL,
		Description:     changes.Description,
		PublicationDate: *changes.PublicationDate,
		Genres:          []string{},
		AffiliateLink:   changes.AffiliateLink,
	}
	if changes.Genres != nil {
		book.Genres = *changes.Genres
	}
	return book, nil
}

// ValidateBookUpdate checks the fields present in a partial update with the
// same rules as creation. Present required fields may not be blank or null.
func (v *Validator) ValidateBookUpdate(p BookPayload) (BookChanges, error) {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"title", p.Title},
		{"author", p.Author},
		{"publication_date", p.PublicationDate},
	} {
		if p.IsNull(f.name) || (f.value != nil && isBlank(f.value)) {
			return BookChanges{}, apperrors.MissingField(f.name)
		}
	}

	if err := v.Validate(p); err != nil {
		return BookChanges{}, err
	}

	changes := BookChanges{
		Title:         trimmed(p.Title),
		Author:        trimmed(p.Author),
		CoverImageURL: p.CoverImageURL,
		Description:   p.Description,
		AffiliateLink: p.AffiliateLink,
	}
	for _, name := range nullableBookFields {
		if p.IsNull(name) {
			if changes.Cleared == nil {
				changes.Cleared = make(map[string]bool)
			}
			changes.Cleared[name] = true
		}
	}

	if p.PublicationDate != nil {
		date, err := time.Parse(DateLayout, strings.TrimSpace(*p.PublicationDate))
		if err != nil {
			return BookChanges{}, apperrors.ErrBadDate
		}
		changes.PublicationDate = &date
	}

	if p.Genres != nil {
		genres, err := NormalizeGenres(*p.Genres)
		if err != nil {
			return BookChanges{}, err
		}
		changes.Genres = &genres
	}

	return changes, nil
}

// NormalizeGenres trims tags and drops empty ones. Tags containing the storage
// delimiter are rejected, as is a list whose stored form would not fit.
func NormalizeGenres(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if strings.Contains(tag, model.GenreDelimiter) {
			return nil, apperrors.ErrInvalidGenre
		}
		out = append(out, tag)
	}
	if utf8.RuneCountInString(strings.Join(out, model.GenreDelimiter)) > MaxGenresLength {
		return nil, apperrors.FieldTooLong("genres")
	}
	return out, nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
