package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the logging surface the SDK writes to. Implementations are
// expected to be safe for concurrent use.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ZeroLogger adapts a zerolog.Logger to the Logger interface. Trailing
// args are interpreted as alternating key/value pairs, matching the
// slog convention used elsewhere in the SDK.
type ZeroLogger struct {
	logger zerolog.Logger
}

// New returns a ZeroLogger writing JSON lines to w. A nil w defaults
// to os.Stderr.
func New(w io.Writer) *ZeroLogger {
	if w == nil {
		w = os.Stderr
	}
	return &ZeroLogger{
		logger: zerolog.New(w).With().Timestamp().Logger(),
	}
}

func (z *ZeroLogger) Error(msg string, args ...any) {
	withFields(z.logger.Error(), args).Msg(msg)
}

func (z *ZeroLogger) Warn(msg string, args ...any) {
	withFields(z.logger.Warn(), args).Msg(msg)
}

func (z *ZeroLogger) Info(msg string, args ...any) {
	withFields(z.logger.Info(), args).Msg(msg)
}

func (z *ZeroLogger) Debug(msg string, args ...any) {
	withFields(z.logger.Debug(), args).Msg(msg)
}

func withFields(ev *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	return ev
}
