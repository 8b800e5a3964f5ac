package log

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type LogFormat string

var (
	Pretty LogFormat = "pretty"
	JSON   LogFormat = "json"
	Text   LogFormat = "text"
)

var (
	// current and stdout hold the *zerolog.Logger for stderr and stdout. They are swapped
	// atomically so SetLevel, SetFormat and SetOutput can be called while other goroutines log
	current atomic.Value
	stdout  atomic.Value
	format  atomic.Value
)

func init() {
	store(zerolog.New(os.Stderr).With().Timestamp().Logger())
	stdout.Store(ptr(zerolog.New(os.Stdout).With().Timestamp().Logger()))
	format.Store(JSON)
}

func ptr(l zerolog.Logger) *zerolog.Logger { return &l }

// Logger returns the current stderr logger
func Logger() *zerolog.Logger {
	return current.Load().(*zerolog.Logger)
}

// Stdout returns the logger writing to stdout
func Stdout() *zerolog.Logger {
	return stdout.Load().(*zerolog.Logger)
}

func store(l zerolog.Logger) {
	current.Store(&l)
}

func Fatal() *zerolog.Event { return Logger().Fatal() }
func Panic() *zerolog.Event { return Logger().Panic() }
func Error() *zerolog.Event { return Logger().Error() }
func Warn() *zerolog.Event  { return Logger().Warn() }
func Info() *zerolog.Event  { return Logger().Info() }
func Debug() *zerolog.Event { return Logger().Debug() }
func Trace() *zerolog.Event { return Logger().Trace() }
func Log() *zerolog.Event   { return Logger().Log() }

func Err(err error) *zerolog.Event { return Logger().Err(err) }

func With() zerolog.Context { return Logger().With() }

func WithLevel(level zerolog.Level) *zerolog.Event { return Logger().WithLevel(level) }

func GetLevel() zerolog.Level { return Logger().GetLevel() }

func Print(v ...interface{})                 { Logger().Print(v...) }
func Printf(format string, v ...interface{}) { Logger().Printf(format, v...) }

const (
	FatalLevel = zerolog.FatalLevel
	PanicLevel = zerolog.PanicLevel
	ErrorLevel = zerolog.ErrorLevel
	WarnLevel  = zerolog.WarnLevel
	InfoLevel  = zerolog.InfoLevel
	DebugLevel = zerolog.DebugLevel
	TraceLevel = zerolog.TraceLevel
	Disabled   = zerolog.Disabled
)

func SetLevelString(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	SetLevel(l)
	return nil
}

func SetLevel(l zerolog.Level) {
	store(Logger().Level(l))
	stdout.Store(ptr(Stdout().Level(l)))
}

// SetOutput redirects the stderr logger, this is mostly useful for capturing logs in tests
func SetOutput(w io.Writer) {
	store(Logger().Output(w))
}

var (
	ErrUnsupportedFormat = fmt.Errorf("unsupported format. supported 'json', 'pretty', 'text")
)

func GetLogFormat() LogFormat {
	return format.Load().(LogFormat)
}

func SetFormat(f string) error {
	switch f {
	case "json", "":
		format.Store(JSON)
	case "pretty", "text":
		noColor := f == "text"
		store(Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor, TimeFormat: "\r3:04PM"}))
		stdout.Store(ptr(Stdout().Output(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: noColor, TimeFormat: "\r3:04PM"})))
		if noColor {
			format.Store(Text)
		} else {
			format.Store(Pretty)
		}
	default:
		return ErrUnsupportedFormat
	}
	return nil
}
