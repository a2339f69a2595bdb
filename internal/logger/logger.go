// Package logger builds the zerolog logger shared by the server and the seeder.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON in production and human readable console
// output otherwise. Unknown levels fall back to info.
func New(production bool, level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if !production {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
