package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

const defaultLogLevel = "warn"

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	if level == "" {
		level = defaultLogLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	return zerolog.New(out).Level(parsed), nil
}
