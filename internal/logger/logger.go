package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Init initializes the global logger.
// Development: text format, Debug level. Production: JSON format, Info level.
// LOG_LEVEL overrides the level. Output goes to stderr so command output on
// stdout stays clean. Errors are optionally forwarded to Sentry.
func Init(isDev bool, level, sentryDSN string) {
	slog.SetDefault(slog.New(newHandler(os.Stderr, isDev, level, sentryDSN)))
}

// Flush waits for buffered Sentry events before the process exits.
func Flush() {
	sentry.Flush(2 * time.Second)
}

func newHandler(w io.Writer, isDev bool, level, sentryDSN string) slog.Handler {
	var handlers []slog.Handler

	opts := &slog.HandlerOptions{Level: parseLevel(level, isDev)}
	if isDev {
		handlers = append(handlers, slog.NewTextHandler(w, opts))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(w, opts))
	}

	// Optional Sentry handler (sends errors only)
	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			TracesSampleRate: 1.0,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	if len(handlers) > 1 {
		return slogmulti.Fanout(handlers...)
	}
	return handlers[0]
}

func parseLevel(level string, isDev bool) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if isDev {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
