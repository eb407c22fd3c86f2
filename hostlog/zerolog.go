package hostlog

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a zerolog.Logger configured for interactive use: a
// console-formatted writer on stderr with RFC3339 timestamps, at the
// requested level. Unrecognized levels fall back to info, matching
// Satishg2606-lanmon's pkg/logger.Init.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(lvl).With().Timestamp().Logger()
}

// Zerolog adapts a zerolog.Logger to the core's Logger interfaces
// (reactor.Logger needs only Debug; statemachine.Logger needs all four
// levels) by pairing a message with an even list of key/value pairs,
// mirroring zerolog's own Fields-from-map convention.
type Zerolog struct {
	L zerolog.Logger
}

func (z Zerolog) Debug(msg string, keyvals ...interface{}) { z.log(z.L.Debug(), msg, keyvals) }
func (z Zerolog) Info(msg string, keyvals ...interface{})  { z.log(z.L.Info(), msg, keyvals) }
func (z Zerolog) Warn(msg string, keyvals ...interface{})  { z.log(z.L.Warn(), msg, keyvals) }
func (z Zerolog) Error(msg string, keyvals ...interface{}) { z.log(z.L.Error(), msg, keyvals) }

func (z Zerolog) log(ev *zerolog.Event, msg string, keyvals []interface{}) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, keyvals[i+1])
	}
	ev.Msg(msg)
}
