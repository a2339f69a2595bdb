package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// GenreDelimiter separates tags in the stored column. Tags may not contain it.
const GenreDelimiter = ","

// GenreList is the ordered set of genre tags of a book. It is a plain slice
// everywhere except in the database, where it is stored as one delimited string.
type GenreList []string

// GormDataType makes gorm size the column as a string.
func (GenreList) GormDataType() string {
	return "string"
}

// Value implements driver.Valuer.
func (g GenreList) Value() (driver.Value, error) {
	return strings.Join(g, GenreDelimiter), nil
}

// Scan implements sql.Scanner.
func (g *GenreList) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		raw = ""
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan genres: unsupported type %T", src)
	}

	if raw == "" {
		*g = GenreList{}
		return nil
	}
	*g = strings.Split(raw, GenreDelimiter)
	return nil
}
