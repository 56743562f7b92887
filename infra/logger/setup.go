package logger

import (
	"fmt"

	"github.com/rs/zerolog"
)

var consoleFormat bool

// Configure applies the run-wide minimum level and output format. Loggers
// created before Configure keep their original format.
func Configure(level, format string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	consoleFormat = format == "console"
	return nil
}
