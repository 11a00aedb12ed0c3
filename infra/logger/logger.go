package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/prodseq/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// Config sets the level and format shared by every component logger.
type Config struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `json:"level" validate:"omitempty,oneof=debug info warn error"`
	// Format is json or console. Empty selects console when APP_ENV=dev.
	Format string `json:"format" validate:"omitempty,oneof=json console"`
}

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stderr
	format string
)

// Configure applies cfg to loggers created afterwards. Results go to stdout,
// so logs are written to stderr unless SetOutput says otherwise.
func Configure(cfg Config) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	mu.Lock()
	format = cfg.Format
	mu.Unlock()
}

// SetOutput redirects loggers created afterwards to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
