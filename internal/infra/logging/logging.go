package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level      string
	Format     string // json | console
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init configura o logger global do zerolog. O io.Closer devolvido fecha o
// arquivo de log (no-op sem LOG_FILE).
func Init(opts Options) io.Closer {
	return initWith(opts, os.Stdout)
}

func initWith(opts Options, stdout io.Writer) io.Closer {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = stdout
	if strings.EqualFold(opts.Format, "console") {
		out = zerolog.ConsoleWriter{Out: stdout, TimeFormat: "02/01 15:04:05"}
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "crm-followup").Logger()
	log.Debug().Str("level", level.String()).Str("file", opts.File).Msg("Logger inicializado")
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
