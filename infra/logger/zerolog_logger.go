package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger writes leveled, component-tagged entries through zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a logger tagged with component. It picks up the
// output and format set by Configure and SetOutput at creation time.
func NewZerologLogger(component string) Logger {
	z := zerolog.New(writer()).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

// writer returns the configured output, wrapped for humans when the format
// is console or, with no format set, when APP_ENV=dev.
func writer() io.Writer {
	mu.RLock()
	w, f := out, format
	mu.RUnlock()
	if f == "" && strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		f = "console"
	}
	if f != "console" {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: w != os.Stderr}
}

func (l *ZerologLogger) Debugf(format string, args ...any) { l.log.Debug().Msgf(format, args...) }

// Debugw attaches fields as typed values rather than formatting them.
func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any)  { l.log.Info().Msgf(format, args...) }
func (l *ZerologLogger) Warnf(format string, args ...any)  { l.log.Warn().Msgf(format, args...) }
func (l *ZerologLogger) Errorf(format string, args ...any) { l.log.Error().Msgf(format, args...) }
