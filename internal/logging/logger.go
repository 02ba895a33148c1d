package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Development gets a human
// readable console writer, every other environment gets JSON lines.
func Init(serviceName, env string) {
	InitWithWriter(serviceName, env, os.Stdout)
}

func InitWithWriter(serviceName, env string, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if env == "development" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Str("service", serviceName).
			Logger()
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}

	log.Logger = zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// FromContext returns the request scoped logger, or the global one when the
// context carries none.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &log.Logger
}
