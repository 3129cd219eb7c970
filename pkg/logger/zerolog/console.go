package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options configures the console logger
type Options struct {
	Level      string
	TimeLayout string
	Colored    bool
	JSON       bool
	Caller     bool
	Out        io.Writer // defaults to stdout
}

// New builds a zerolog logger writing either JSON lines or the aligned console format
func New(opts Options) (*zerolog.Logger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if !opts.JSON {
		out = consoleWriter(out, opts.TimeLayout, opts.Colored)
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if opts.Caller {
		ctx = ctx.CallerWithSkipFrameCount(3)
	}

	log := ctx.Logger()
	return &log, nil
}

func consoleWriter(out io.Writer, timeLayout string, colored bool) zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !colored,
		TimeFormat: timeLayout,
	}

	if !colored {
		return writer
	}

	writer.FormatLevel = formatLevel
	writer.FormatMessage = formatMessage
	writer.FormatCaller = formatCaller
	writer.FormatTimestamp = func(i any) string {
		return formatTimestamp(i, timeLayout)
	}
	return writer
}

func formatLevel(i any) string {
	level, ok := i.(string)
	if !ok {
		return term.Whitef("[UNK]")
	}

	switch level {
	case zerolog.LevelTraceValue:
		return term.Cyanf("[TRC]")
	case zerolog.LevelDebugValue:
		return term.Cyanf("[DBG]")
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelErrorValue:
		return term.Redf("[ERR]")
	case zerolog.LevelFatalValue:
		return term.Redf("[FTL]")
	case zerolog.LevelPanicValue:
		return term.Redf("[PAN]")
	default:
		return term.Whitef("[UNK]")
	}
}

func formatMessage(i any) string {
	const width = 80

	msg, ok := i.(string)
	if !ok || msg == "" {
		return ">"
	}

	if len(msg) > width {
		msg = msg[:width]
	}
	return term.Whitef("> %-*s", width, msg)
}

func formatCaller(i any) string {
	const (
		fileWidth = 18
		lineWidth = 4
	)

	name, ok := i.(string)
	if !ok || name == "" {
		return ""
	}

	file, line, found := strings.Cut(filepath.Base(name), ":")
	if !found {
		return term.Yellowf("[%s]", file)
	}

	if len(file) > fileWidth {
		file = file[:fileWidth]
	}
	if len(line) > lineWidth {
		line = line[len(line)-lineWidth:]
	}

	return term.Yellowf("[%s]", fmt.Sprintf("%-*s:%*s", fileWidth, file, lineWidth, line))
}

func formatTimestamp(i any, layout string) string {
	value, ok := i.(string)
	if !ok {
		return term.Cyanf("[%v]", i)
	}

	if ts, err := time.ParseInLocation(time.RFC3339, value, time.Local); err == nil {
		value = ts.In(time.Local).Format(layout)
	}
	return term.Cyanf("[%s]", value)
}
