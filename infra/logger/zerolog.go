package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Zerolog implements Logger using rs/zerolog.
type Zerolog struct {
	log zerolog.Logger
}

// NewZerolog creates a component-tagged zerolog logger. APP_ENV=dev
// switches to the human-readable console writer; LOG_LEVEL sets the
// minimum level (default info).
func NewZerolog(component string) *Zerolog {
	var z zerolog.Logger
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		z = zerolog.New(writer).With().Timestamp().Str("component", component).Logger()
	} else {
		z = zerolog.New(os.Stdout).With().Timestamp().Str("component", component).Logger()
	}
	if lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && lvl != zerolog.NoLevel {
		z = z.Level(lvl)
	} else {
		z = z.Level(zerolog.InfoLevel)
	}
	return &Zerolog{log: z}
}

func (l *Zerolog) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *Zerolog) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *Zerolog) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *Zerolog) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

func (l *Zerolog) Infow(msg string, fields map[string]any) {
	ev := l.log.Info()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
