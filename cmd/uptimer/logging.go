// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package main

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger creates a new logger configured by the log.* flags.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	rawLevel, err := cmd.Flags().GetString("log.level")
	if err != nil {
		return nil, errs.Wrap(err)
	}
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(rawLevel)); err != nil {
		return nil, errs.New("invalid log level %q: %v", rawLevel, err)
	}

	encoding, err := cmd.Flags().GetString("log.encoding")
	if err != nil {
		return nil, errs.Wrap(err)
	}
	output, err := cmd.Flags().GetString("log.output")
	if err != nil {
		return nil, errs.Wrap(err)
	}

	levelEncoder := zapcore.CapitalColorLevelEncoder
	if runtime.GOOS == "windows" {
		levelEncoder = zapcore.CapitalLevelEncoder
	}

	return zap.Config{
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      "C",
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    levelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{output},
	}.Build()
}
