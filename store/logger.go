package store

import (
	"strings"

	"github.com/rs/zerolog"
)

// badgerLogger sends badger's logs to zerolog
type badgerLogger struct {
	logger zerolog.Logger
}

func newBadgerLogger(logger zerolog.Logger) *badgerLogger {
	return &badgerLogger{logger: logger}
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}
