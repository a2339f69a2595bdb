package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
)

// 1x1 transparent PNG
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func pngBytes(t *testing.T) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(pixelPNG)
	require.NoError(t, err)
	return b
}

func TestLocalStore_PutOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	ctx := context.Background()

	img := pngBytes(t)
	require.NoError(t, store.Put(ctx, "user_alice.png", bytes.NewReader(img)))

	rc, contentType, err := store.Open(ctx, "user_alice.png")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, img, got)
	assert.Equal(t, "image/png", contentType)

	entries, err := os.ReadDir(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files should be gone")
}

func TestLocalStore_PutReplaces(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.txt", strings.NewReader("first")))
	require.NoError(t, store.Put(ctx, "a.txt", strings.NewReader("second")))

	rc, _, err := store.Open(ctx, "a.txt")
	require.NoError(t, err)
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "second", string(got))
}

func TestLocalStore_OpenMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Open(context.Background(), "nope.png")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, _, err = store.Open(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"user_bob.png", "user_bob.png", false},
		{"../../etc/passwd", "passwd", false},
		{`..\..\boot.ini`, "boot.ini", false},
		{"/abs/path/pic.gif", "pic.gif", false},
		{"", "", true},
		{"..", "", true},
		{".hidden", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanName(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImageExt(t *testing.T) {
	for name, want := range map[string]bool{
		"me.PNG":     true,
		"me.jpg":     true,
		"me.jpeg":    true,
		"me.gif":     true,
		"me.webp":    false,
		"me":         false,
		"me.png.exe": false,
	} {
		_, ok := ImageExt(name)
		assert.Equal(t, want, ok, name)
	}
	ext, _ := ImageExt("Me.JPG")
	assert.Equal(t, ".jpg", ext)
}

func TestSniffImage(t *testing.T) {
	img := pngBytes(t)

	r, ok, err := SniffImage(bytes.NewReader(img))
	require.NoError(t, err)
	assert.True(t, ok)
	all, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, img, all, "sniffing must not drop bytes")

	_, ok, err = SniffImage(strings.NewReader("#!/bin/sh\necho pwned\n"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = SniffImage(strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, ok)
}
