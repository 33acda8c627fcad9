package sapling

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the console logger used when Config.Logger is nil.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("component", "sapling").Logger()
}
