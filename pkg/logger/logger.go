package logger

import (
	"fmt"
	"strings"
)

type Level int8

const (
	Disabled   Level = iota - 1 // Disabled turns logging off.
	TraceLevel                  // TraceLevel is used for per-bar simulation detail.
	DebugLevel                  // DebugLevel is used for trade-level detail.
	InfoLevel                   // InfoLevel is used for run summaries.
	WarnLevel                   // WarnLevel is used for margin calls and skipped conditions.
	ErrorLevel                  // ErrorLevel is used for failed runs.
	FatalLevel                  // FatalLevel logs and exits the program.
	PanicLevel                  // PanicLevel logs and panics.
	NoLevel                     // NoLevel logs without a level.
)

var levelNames = map[Level]string{
	Disabled:   "disabled",
	TraceLevel: "trace",
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
	FatalLevel: "fatal",
	PanicLevel: "panic",
	NoLevel:    "",
}

func (l Level) String() string {
	return levelNames[l]
}

// ParseLevel converts a level name into a Level
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return WarnLevel, nil
	}
	for level, levelName := range levelNames {
		if level != NoLevel && levelName == name {
			return level, nil
		}
	}
	return NoLevel, fmt.Errorf("logger: unknown level %q", name)
}

type Logger interface {
	// Returns a logger based off the root logger and decorates it with the given context and arguments.
	WithField(key string, value any) Logger  // WithField returns a logger with the given key-value pair.
	WithFields(fields map[string]any) Logger // WithFields returns a logger with the given fields.
	WithError(err error) Logger              // WithError returns a logger with the given error.

	// Default log functions
	Print(args ...any)
	Trace(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Fatal(args ...any)
	Panic(args ...any)

	// Log functions with format
	Printf(format string, args ...any)
	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Panicf(format string, args ...any)

	SetLevel(level Level)
	GetLevel() Level
}

// Nop returns a logger that discards every entry
func Nop() Logger {
	return nop{}
}

type nop struct{}

func (n nop) WithField(string, any) Logger { return n }
func (n nop) WithFields(map[string]any) Logger { return n }
func (n nop) WithError(error) Logger { return n }
func (nop) Print(...any) {}
func (nop) Trace(...any) {}
func (nop) Debug(...any) {}
func (nop) Info(...any) {}
func (nop) Warn(...any) {}
func (nop) Error(...any) {}
func (nop) Fatal(...any) {}
func (nop) Panic(args ...any) { panic(fmt.Sprint(args...)) }
func (nop) Printf(string, ...any) {}
func (nop) Tracef(string, ...any) {}
func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any) {}
func (nop) Warnf(string, ...any) {}
func (nop) Errorf(string, ...any) {}
func (nop) Fatalf(string, ...any) {}
func (nop) Panicf(format string, args ...any) { panic(fmt.Sprintf(format, args...)) }
func (nop) SetLevel(Level) {}
func (nop) GetLevel() Level { return Disabled }
