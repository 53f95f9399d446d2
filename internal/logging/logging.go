package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs a console logger at the named level as the global
// zerolog logger. A nil writer means stderr, keeping stdout free for
// command output.
func Setup(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return log.Logger, err
	}
	if w == nil {
		w = os.Stderr
	}

	// Colour only when writing to the terminal.
	consoleWriter := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: w != os.Stderr}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger().Level(lvl)
	log.Logger = logger
	return logger, nil
}

// ParseLevel accepts zerolog level names in any case. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.TrimSpace(strings.ToLower(level))
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("log level %q: %w", level, err)
	}
	return lvl, nil
}
