package observability

import (
	"io"
	"log/slog"
	"os"

	"github.com/fairyhunter13/jobfit/internal/config"
)

type loggerOptions struct {
	w     io.Writer
	text  bool
	debug bool
}

// LoggerOption customises SetupLogger.
type LoggerOption func(*loggerOptions)

// WithWriter sends log lines to w instead of stdout. The CLI logs to stderr
// so its JSON results stay on stdout.
func WithWriter(w io.Writer) LoggerOption { return func(o *loggerOptions) { o.w = w } }

// WithText switches to the human-readable text handler.
func WithText() LoggerOption { return func(o *loggerOptions) { o.text = true } }

// WithDebug forces debug level regardless of APP_ENV.
func WithDebug(on bool) LoggerOption { return func(o *loggerOptions) { o.debug = o.debug || on } }

// SetupLogger configures a slog logger with service and env fields.
// JSON to stdout unless options say otherwise; debug level in dev.
func SetupLogger(cfg config.Config, opts ...LoggerOption) *slog.Logger {
	o := loggerOptions{w: os.Stdout, debug: cfg.IsDev()}
	for _, opt := range opts {
		opt(&o)
	}
	hopts := &slog.HandlerOptions{}
	if o.debug {
		hopts.Level = slog.LevelDebug
	}
	var h slog.Handler = slog.NewJSONHandler(o.w, hopts)
	if o.text {
		h = slog.NewTextHandler(o.w, hopts)
	}
	return slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}
