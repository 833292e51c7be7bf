/*

This file sets up the zerolog console logger. Pipeline stages bind tagged
child loggers through GetForComponent at package init, so the root logger
is built in init here and Initialize only adjusts the global level.

*/

package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the root logger every component logger derives from.
var Logger zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}
	Logger = zerolog.New(console).With().Timestamp().Caller().Logger()
	log.Logger = Logger
}

// Initialize sets the global log level: debug, info, warn or error.
// Anything else falls back to info.
func Initialize(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// GetForComponent returns a child logger tagged with a pipeline component
// name, e.g. "distribution" or "polygon_client".
func GetForComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
