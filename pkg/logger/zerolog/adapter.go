package zerolog

import (
	"fmt"

	"github.com/raykavin/stratbench/pkg/logger"
	"github.com/rs/zerolog"
)

// Adapter exposes a zerolog logger through logger.Logger
type Adapter struct {
	log *zerolog.Logger
}

var _ logger.Logger = (*Adapter)(nil)

func NewAdapter(log *zerolog.Logger) *Adapter {
	return &Adapter{log: log}
}

// Zerolog returns the wrapped logger
func (a *Adapter) Zerolog() *zerolog.Logger {
	return a.log
}

// GetLevel implements logger.Logger.
func (a *Adapter) GetLevel() logger.Level {
	return toLevel(a.log.GetLevel())
}

// SetLevel implements logger.Logger. Only this adapter is affected.
func (a *Adapter) SetLevel(level logger.Level) {
	leveled := a.log.Level(toZerologLevel(level))
	a.log = &leveled
}

func (a *Adapter) Print(args ...any) {
	a.log.Print(args...)
}

func (a *Adapter) Trace(args ...any) {
	a.log.Trace().Msg(fmt.Sprint(args...))
}

func (a *Adapter) Debug(args ...any) {
	a.log.Debug().Msg(fmt.Sprint(args...))
}

func (a *Adapter) Info(args ...any) {
	a.log.Info().Msg(fmt.Sprint(args...))
}

func (a *Adapter) Warn(args ...any) {
	a.log.Warn().Msg(fmt.Sprint(args...))
}

func (a *Adapter) Error(args ...any) {
	a.log.Error().Msg(fmt.Sprint(args...))
}

func (a *Adapter) Fatal(args ...any) {
	a.log.Fatal().Msg(fmt.Sprint(args...))
}

func (a *Adapter) Panic(args ...any) {
	a.log.Panic().Msg(fmt.Sprint(args...))
}

func (a *Adapter) Printf(format string, args ...any) {
	a.log.Printf(format, args...)
}

func (a *Adapter) Tracef(format string, args ...any) {
	a.log.Trace().Msgf(format, args...)
}

func (a *Adapter) Debugf(format string, args ...any) {
	a.log.Debug().Msgf(format, args...)
}

func (a *Adapter) Infof(format string, args ...any) {
	a.log.Info().Msgf(format, args...)
}

func (a *Adapter) Warnf(format string, args ...any) {
	a.log.Warn().Msgf(format, args...)
}

func (a *Adapter) Errorf(format string, args ...any) {
	a.log.Error().Msgf(format, args...)
}

func (a *Adapter) Fatalf(format string, args ...any) {
	a.log.Fatal().Msgf(format, args...)
}

func (a *Adapter) Panicf(format string, args ...any) {
	a.log.Panic().Msgf(format, args...)
}

// WithError implements logger.Logger.
func (a *Adapter) WithError(err error) logger.Logger {
	child := a.log.With().Err(err).Logger()
	return &Adapter{log: &child}
}

// WithField implements logger.Logger.
func (a *Adapter) WithField(key string, value any) logger.Logger {
	child := a.log.With().Interface(key, value).Logger()
	return &Adapter{log: &child}
}

// WithFields implements logger.Logger.
func (a *Adapter) WithFields(fields map[string]any) logger.Logger {
	child := a.log.With().Fields(fields).Logger()
	return &Adapter{log: &child}
}

var (
	fromZerolog = map[zerolog.Level]logger.Level{
		zerolog.Disabled:   logger.Disabled,
		zerolog.NoLevel:    logger.NoLevel,
		zerolog.TraceLevel: logger.TraceLevel,
		zerolog.DebugLevel: logger.DebugLevel,
		zerolog.InfoLevel:  logger.InfoLevel,
		zerolog.WarnLevel:  logger.WarnLevel,
		zerolog.ErrorLevel: logger.ErrorLevel,
		zerolog.FatalLevel: logger.FatalLevel,
		zerolog.PanicLevel: logger.PanicLevel,
	}

	toZerolog = map[logger.Level]zerolog.Level{
		logger.Disabled:   zerolog.Disabled,
		logger.NoLevel:    zerolog.NoLevel,
		logger.TraceLevel: zerolog.TraceLevel,
		logger.DebugLevel: zerolog.DebugLevel,
		logger.InfoLevel:  zerolog.InfoLevel,
		logger.WarnLevel:  zerolog.WarnLevel,
		logger.ErrorLevel: zerolog.ErrorLevel,
		logger.FatalLevel: zerolog.FatalLevel,
		logger.PanicLevel: zerolog.PanicLevel,
	}
)

func toLevel(level zerolog.Level) logger.Level {
	if converted, ok := fromZerolog[level]; ok {
		return converted
	}
	return logger.NoLevel
}

func toZerologLevel(level logger.Level) zerolog.Level {
	if converted, ok := toZerolog[level]; ok {
		return converted
	}
	return zerolog.NoLevel
}
