package logs

import (
	slog "log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Shorten caller to only filename; from Zerolog docs.
func shortenCaller(pc uintptr, file string, line int) string {
	short := file
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			break
		}
	}
	file = short
	return file + ":" + strconv.Itoa(line)
}

type stubLogWriter struct {
	lvl zerolog.Level
	log zerolog.Logger
}

func (s *stubLogWriter) Write(p []byte) (n int, err error) {
	// The logging library insists on a LF here
	msg := strings.TrimRight(string(p), "\n")
	s.log.WithLevel(s.lvl).Msg(msg)
	return len(p), nil
}

type Opts struct {
	Level  string
	Pretty bool
}

func WithLevel(level string) InitOpt {
	return func(o *Opts) {
		o.Level = level
	}
}

func WithPretty() InitOpt {
	return func(o *Opts) {
		o.Pretty = true
	}
}

type InitOpt func(*Opts)

func InitLogger(opts ...InitOpt) {

	var (
		o = &Opts{}
	)

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	zerolog.CallerMarshalFunc = shortenCaller

	for _, opt := range opts {
		opt(o)
	}

	zlvl, _ := zerolog.ParseLevel(o.Level)
	zerolog.SetGlobalLevel(zlvl)

	nlog := log.Logger

	if o.Pretty {
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.StampMicro,
		}

		nlog = log.Output(output)
	}

	// Turn on caller. This has a runtime penalty; possibly turn off in production.
	nlog = nlog.With().Caller().Logger()

	log.Logger = nlog

	// Install our stub writer on default standard logger
	slog.SetOutput(&stubLogWriter{zerolog.InfoLevel, nlog})
}
