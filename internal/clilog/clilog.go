// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package clilog wires github.com/datawire/dlib/dlog's context-scoped
// logging over a github.com/sirupsen/logrus formatter, for use by the
// demo CLI (and by package tests that want to observe cache traffic).
// None of the library packages (seq, arena, dlist, lru, ordmap) import
// this package or any logging facility at all -- the core stays usable
// in a context with no logger configured.
package clilog

import (
	"context"
	"fmt"
	"strings"

	"github.com/datawire/dlib/dlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// LevelFlag is a pflag.Value for choosing a dlog.LogLevel on the
// command line (--log-level=debug, etc).
type LevelFlag struct {
	Level dlog.LogLevel
}

var _ pflag.Value = (*LevelFlag)(nil)

func NewLevelFlag() *LevelFlag {
	return &LevelFlag{Level: dlog.LogLevelInfo}
}

func (f *LevelFlag) Type() string { return "level" }

func (f *LevelFlag) Set(str string) error {
	switch strings.ToLower(str) {
	case "error":
		f.Level = dlog.LogLevelError
	case "warn", "warning":
		f.Level = dlog.LogLevelWarn
	case "info":
		f.Level = dlog.LogLevelInfo
	case "debug":
		f.Level = dlog.LogLevelDebug
	case "trace":
		f.Level = dlog.LogLevelTrace
	default:
		return fmt.Errorf("invalid log level: %q", str)
	}
	return nil
}

func (f *LevelFlag) String() string {
	switch f.Level {
	case dlog.LogLevelError:
		return "error"
	case dlog.LogLevelWarn:
		return "warn"
	case dlog.LogLevelInfo:
		return "info"
	case dlog.LogLevelDebug:
		return "debug"
	case dlog.LogLevelTrace:
		return "trace"
	default:
		return "info"
	}
}

func toLogrusLevel(lvl dlog.LogLevel) logrus.Level {
	switch lvl {
	case dlog.LogLevelError:
		return logrus.ErrorLevel
	case dlog.LogLevelWarn:
		return logrus.WarnLevel
	case dlog.LogLevelInfo:
		return logrus.InfoLevel
	case dlog.LogLevelDebug:
		return logrus.DebugLevel
	case dlog.LogLevelTrace:
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// WithLogger returns a context carrying a logrus-backed dlog.Logger at
// the given level.
func WithLogger(ctx context.Context, lvl dlog.LogLevel) context.Context {
	logger := logrus.New()
	logger.SetLevel(toLogrusLevel(lvl))
	return dlog.WithLogger(ctx, dlog.WrapLogrus(logger))
}
