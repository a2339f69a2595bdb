package validation

import (
	"bytes"
	"encoding/json"
	"strconv"

	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
)

// ReviewPayload is the body of review create and update requests. Rating is
// kept raw so that fractional, string and boolean values can be told apart
// from a missing one.
type ReviewPayload struct {
	Rating     json.RawMessage `json:"rating" swaggertype:"integer" example:"4"`
	ReviewText *string         `json:"review_text"`

	nulls map[string]bool
}

// UnmarshalJSON decodes the payload and remembers which keys were null.
func (p *ReviewPayload) UnmarshalJSON(data []byte) error {
	type plain ReviewPayload
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	nulls, err := nullFields(data)
	if err != nil {
		return err
	}
	*p = ReviewPayload(decoded)
	p.nulls = nulls
	return nil
}

// IsNull reports whether field was sent as JSON null.
func (p ReviewPayload) IsNull(field string) bool {
	return p.nulls[field]
}

// ValidReview is a review payload that passed every creation rule.
type ValidReview struct {
	Rating     int
	ReviewText string
}

// ReviewChanges holds the fields present in a partial update.
type ReviewChanges struct {
	Rating     *int
	ReviewText *string
}

// Apply overwrites the present fields of r.
func (c ReviewChanges) Apply(r *model.Review) {
	if c.Rating != nil {
		r.Rating = *c.Rating
	}
	if c.ReviewText != nil {
		r.ReviewText = *c.ReviewText
	}
}

// ParseRating accepts only a JSON integer literal between MinRating and MaxRating.
func ParseRating(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, apperrors.ErrMissingRating
	}
	rating, err := strconv.Atoi(string(raw))
	if err != nil || rating < model.MinRating || rating > model.MaxRating {
		return 0, apperrors.ErrRatingOutOfRange
	}
	return rating, nil
}

// ValidateReviewPayload checks a creation payload. review_text defaults to empty.
func ValidateReviewPayload(p ReviewPayload) (ValidReview, error) {
	rating, err := ParseRating(p.Rating)
	if err != nil {
		return ValidReview{}, err
	}
	review := ValidReview{Rating: rating}
	if p.ReviewText != nil {
		review.ReviewText = *p.ReviewText
	}
	return review, nil
}

// ValidateReviewUpdate checks the fields present in a partial update.
func ValidateReviewUpdate(p ReviewPayload) (ReviewChanges, error) {
	var changes ReviewChanges
	if p.Rating != nil {
		rating, err := ParseRating(p.Rating)
		if err != nil {
			return ReviewChanges{}, err
		}
		changes.Rating = &rating
	}
	changes.ReviewText = p.ReviewText
	if p.IsNull("review_text") {
		empty := ""
		changes.ReviewText = &empty
	}
	return changes, nil
}
