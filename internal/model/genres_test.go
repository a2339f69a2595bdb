package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreList_Value(t *testing.T) {
	v, err := GenreList{"fantasy", "science fiction"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "fantasy,science fiction", v)

	v, err = GenreList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestGenreList_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want GenreList
	}{
		{"string", "horror,mystery", GenreList{"horror", "mystery"}},
		{"bytes", []byte("poetry"), GenreList{"poetry"}},
		{"empty string", "", GenreList{}},
		{"null", nil, GenreList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g GenreList
			require.NoError(t, g.Scan(tt.src))
			assert.Equal(t, tt.want, g)
		})
	}

	var g GenreList
	assert.Error(t, g.Scan(42))
}
