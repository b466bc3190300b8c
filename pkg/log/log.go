// Copyright 2025 The Hostwatch Authors, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// A Logger provides printf-style logging for one module.
// Loggers are safe for concurrent use and follow the process-wide level,
// so a logger created before SetLogLevel still honours the new level.
// Format strings do not need a trailing newline.
type Logger struct {
	moduleName string
	sugar      *zap.SugaredLogger
}

// Log levels for use with NewLogger.
const (
	LogLevelSilent  = iota // No logging
	LogLevelVerbose        // Debug logging
	LogLevelInfo           // Info logging
	LogLevelWarning        // Warning logging
	LogLevelError          // Error logging
)

var (
	mu      sync.RWMutex
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	silent  bool
	sink    zapcore.WriteSyncer = zapcore.Lock(os.Stdout)
	root    *zap.Logger
	loggers = make(map[string]*Logger)
)

func init() {
	root = build(sink)
}

func build(ws zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// ParseLevel maps a level name to one of the LogLevel constants.
// Unknown names map to LogLevelInfo.
func ParseLevel(name string) int {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "silent", "off", "none":
		return LogLevelSilent
	case "verbose", "debug":
		return LogLevelVerbose
	case "warn", "warning":
		return LogLevelWarning
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func setLevel(l int) {
	mu.Lock()
	defer mu.Unlock()
	silent = l == LogLevelSilent
	switch l {
	case LogLevelVerbose:
		level.SetLevel(zapcore.DebugLevel)
	case LogLevelWarning:
		level.SetLevel(zapcore.WarnLevel)
	case LogLevelError:
		level.SetLevel(zapcore.ErrorLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

// SetLogLevel sets the process-wide level by name (silent, verbose, debug,
// info, warning, error).
func SetLogLevel(name string) {
	setLevel(ParseLevel(name))
}

// SetOutput redirects every logger to w. Mostly useful in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	sink = zapcore.AddSync(w)
	root = build(zapcore.Lock(sink))
	for name, l := range loggers {
		l.sugar = root.Named(name).Sugar()
	}
}

// NewLogger sets the process-wide level and returns the logger for prepend.
func NewLogger(level int, prepend string) *Logger {
	setLevel(level)
	return GetLogger(prepend)
}

// GetLogger returns the shared logger for a module.
func GetLogger(module string) *Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[module]; ok {
		return l
	}
	l := &Logger{moduleName: module, sugar: root.Named(module).Sugar()}
	loggers[module] = l
	return l
}

func (logger *Logger) get() (*zap.SugaredLogger, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return logger.sugar, !silent
}

// Module returns the module name the logger was created with.
func (logger *Logger) Module() string {
	return logger.moduleName
}

func (logger *Logger) Verbosef(format string, args ...any) {
	if s, on := logger.get(); on {
		s.Debugf(format, args...)
	}
}

func (logger *Logger) Infof(format string, args ...any) {
	if s, on := logger.get(); on {
		s.Infof(format, args...)
	}
}

func (logger *Logger) Warningf(format string, args ...any) {
	if s, on := logger.get(); on {
		s.Warnf(format, args...)
	}
}

func (logger *Logger) Errorf(format string, args ...any) {
	if s, on := logger.get(); on {
		s.Errorf(format, args...)
	}
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}
