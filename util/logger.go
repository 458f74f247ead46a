package util

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the application logger from the config:
//
//  1. Console output in development, JSON to stderr otherwise.
//  2. If LogFile is set, JSON records are also written to the file, rotated with lumberjack.
//  3. Unknown levels fall back to info.
func NewLogger(config Config) zerolog.Logger {
	var out io.Writer = os.Stderr
	if config.Environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	if strings.TrimSpace(config.LogFile) != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	return zerolog.New(out).Level(ParseLogLevel(config.LogLevel)).With().Timestamp().Logger()
}

func ParseLogLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
