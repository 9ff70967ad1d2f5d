// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging provides the logger interface abstraction
// and implementation for the module. It uses logrus under the hood.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type Logger interface {
	Tracef(format string, args ...interface{})
	Trace(args ...interface{})
	Debugf(format string, args ...interface{})
	Debug(args ...interface{})
	Infof(format string, args ...interface{})
	Info(args ...interface{})
	Warningf(format string, args ...interface{})
	Warning(args ...interface{})
	Errorf(format string, args ...interface{})
	Error(args ...interface{})
	WithField(key string, value interface{}) *logrus.Entry
	WithFields(fields logrus.Fields) *logrus.Entry
	WriterLevel(logrus.Level) *io.PipeWriter
	NewEntry() *logrus.Entry
	Metrics() []prometheus.Collector
}

type logger struct {
	*logrus.Logger
	metrics metrics
}

func New(w io.Writer, level logrus.Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}
	metrics := newMetrics()
	l.AddHook(metrics)
	return &logger{
		Logger:  l,
		metrics: metrics,
	}
}

// ParseVerbosity maps a verbosity name or number to a logrus level. The
// silent verbosity is reported with ok false.
func ParseVerbosity(verbosity string) (level logrus.Level, ok bool, err error) {
	switch strings.ToLower(verbosity) {
	case "0", "silent":
		return 0, false, nil
	case "1", "error":
		return logrus.ErrorLevel, true, nil
	case "2", "warn":
		return logrus.WarnLevel, true, nil
	case "3", "info":
		return logrus.InfoLevel, true, nil
	case "4", "debug":
		return logrus.DebugLevel, true, nil
	case "5", "trace":
		return logrus.TraceLevel, true, nil
	default:
		return 0, false, fmt.Errorf("unknown verbosity level %q", verbosity)
	}
}

// NewWithVerbosity returns a logger writing to w at the named verbosity.
func NewWithVerbosity(w io.Writer, verbosity string) (Logger, error) {
	level, ok, err := ParseVerbosity(verbosity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return New(io.Discard, 0), nil
	}
	return New(w, level), nil
}

func (l *logger) NewEntry() *logrus.Entry {
	return logrus.NewEntry(l.Logger)
}
