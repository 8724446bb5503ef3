package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

// NewFromConfig builds a logger from config values: a level name and an
// output format ("json" for production, anything else for pretty console).
func NewFromConfig(level, format string) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var logger *Logger
	if format == "json" {
		logger = NewProduction()
	} else {
		logger = NewDevelopment()
	}
	logger.zl = logger.zl.Level(lvl)
	return logger, nil
}
