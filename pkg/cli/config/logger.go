package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Logger holds CLI flags for logging configuration
type Logger struct {
	level  string
	format string
	output string
}

// Flags returns CLI flags for logging configuration
func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("REMEDIOS_LOG_LEVEL"),
			Destination: &l.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console or json)",
			Value:       "console",
			Sources:     cli.EnvVars("REMEDIOS_LOG_FORMAT"),
			Destination: &l.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output (stdout, stderr or file path)",
			Value:       "stdout",
			Sources:     cli.EnvVars("REMEDIOS_LOG_OUTPUT"),
			Destination: &l.output,
		},
	}
}

// Configure builds the process logger and installs it as the default. The
// returned closer releases the log file when output points at one.
func (l *Logger) Configure() (func(), error) {
	closer := func() {}

	var w io.Writer
	switch l.output {
	case "stdout", "":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(l.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", l.output))
		}
		w = f
		closer = func() {
			_ = f.Close()
		}
	}

	var level slog.Level
	switch l.level {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		closer()
		return nil, goerr.New("invalid log level", goerr.V("level", l.level))
	}

	// Tokens and secrets tagged with masq must never reach the log stream
	redactor := masq.New(masq.WithTag("secret"))

	var handler slog.Handler
	switch l.format {
	case "console", "":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(redactor),
			clog.WithSource(true),
			clog.WithColorMap(&clog.ColorMap{
				Level: map[slog.Level]*color.Color{
					slog.LevelDebug: color.New(color.FgGreen, color.Bold),
					slog.LevelInfo:  color.New(color.FgCyan, color.Bold),
					slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
					slog.LevelError: color.New(color.FgRed, color.Bold),
				},
				LevelDefault: color.New(color.FgBlue, color.Bold),
				Time:         color.New(color.FgWhite),
				Message:      color.New(color.FgHiWhite),
				AttrKey:      color.New(color.FgHiCyan),
				AttrValue:    color.New(color.FgHiWhite),
			}),
		)
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redactor,
		})
	default:
		closer()
		return nil, goerr.New("invalid log format", goerr.V("format", l.format))
	}

	logging.SetDefault(slog.New(handler))
	return closer, nil
}

// LogValue exposes the settings for startup logging without the internals.
func (l Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.level),
		slog.String("format", l.format),
		slog.String("output", l.output),
	)
}
