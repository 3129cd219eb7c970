package logrus

import (
	"io"
	"os"

	"github.com/raykavin/stratbench/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Adapter exposes a logrus entry through logger.Logger
type Adapter struct {
	*logrus.Entry
}

var _ logger.Logger = (*Adapter)(nil)

// New creates a text or JSON logrus logger at the given level
func New(level string, out io.Writer, json bool) (*Adapter, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	if out == nil {
		out = os.Stdout
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(parsed)
	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Adapter{logrus.NewEntry(log)}, nil
}

func NewAdapter(log *logrus.Logger) *Adapter {
	return &Adapter{logrus.NewEntry(log)}
}

func (a *Adapter) WithField(key string, value any) logger.Logger {
	return &Adapter{a.Entry.WithField(key, value)}
}

func (a *Adapter) WithFields(fields map[string]any) logger.Logger {
	return &Adapter{a.Entry.WithFields(fields)}
}

func (a *Adapter) WithError(err error) logger.Logger {
	return &Adapter{a.Entry.WithError(err)}
}

func (a *Adapter) SetLevel(level logger.Level) {
	if level == logger.Disabled {
		a.Logger.SetOutput(io.Discard)
		return
	}
	if converted, ok := toLogrus[level]; ok {
		a.Logger.SetLevel(converted)
	}
}

func (a *Adapter) GetLevel() logger.Level {
	for level, converted := range toLogrus {
		if converted == a.Logger.GetLevel() {
			return level
		}
	}
	return logger.NoLevel
}

var toLogrus = map[logger.Level]logrus.Level{
	logger.TraceLevel: logrus.TraceLevel,
	logger.DebugLevel: logrus.DebugLevel,
	logger.InfoLevel:  logrus.InfoLevel,
	logger.WarnLevel:  logrus.WarnLevel,
	logger.ErrorLevel: logrus.ErrorLevel,
	logger.FatalLevel: logrus.FatalLevel,
	logger.PanicLevel: logrus.PanicLevel,
}
