// Package logging builds the process-wide zerolog.Logger from the config.
package logging

import (
	"io"
	"time"

	"github.com/indigo-web/tinyd/config"
	"github.com/rs/zerolog"
)

func New(cfg config.Log, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	if cfg.Format == config.FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
