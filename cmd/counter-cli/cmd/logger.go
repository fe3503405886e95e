// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logMaxSize  = 8 // megabytes
	logMaxAge   = 7 // days
	logMaxFiles = 4
)

type logWrapper struct {
	logger       logging.Logger
	displayLevel zap.AtomicLevel
	logLevel     zap.AtomicLevel
}

// logFactory writes colored output to stderr and rotates a JSON file per
// logger under the configured directory.
type logFactory struct {
	config logging.Config
	lock   sync.Mutex

	// Logger name --> the logger.
	loggers map[string]logWrapper
}

func newLogFactory(config logging.Config) *logFactory {
	return &logFactory{
		config:  config,
		loggers: make(map[string]logWrapper),
	}
}

func newLogConfig(level string, dir string, quiet bool) (logging.Config, error) {
	lvl, err := logging.ToLevel(level)
	if err != nil {
		return logging.Config{}, err
	}
	config := logging.Config{
		LogLevel:                lvl,
		DisplayLevel:            lvl,
		LogFormat:               logging.JSON,
		DisableWriterDisplaying: quiet,
	}
	config.Directory = dir
	config.MaxSize = logMaxSize
	config.MaxAge = logMaxAge
	config.MaxFiles = logMaxFiles
	return config, nil
}

// Assumes [f.lock] is held
func (f *logFactory) makeLogger(config logging.Config) (logging.Logger, error) {
	if _, ok := f.loggers[config.LoggerName]; ok {
		return nil, fmt.Errorf("logger with name %q already exists", config.LoggerName)
	}
	consoleEnc := logging.Colors.ConsoleEncoder()
	fileEnc := config.LogFormat.FileEncoder()

	var consoleWriter io.WriteCloser
	if config.DisableWriterDisplaying {
		consoleWriter = newDiscardWriteCloser()
	} else {
		consoleWriter = os.Stderr
	}

	consoleCore := logging.NewWrappedCore(config.DisplayLevel, consoleWriter, consoleEnc)
	consoleCore.WriterDisabled = config.DisableWriterDisplaying

	rw := &lumberjack.Logger{
		Filename:   filepath.Join(config.Directory, config.LoggerName+".log"),
		MaxSize:    config.MaxSize,
		MaxAge:     config.MaxAge,
		MaxBackups: config.MaxFiles,
		Compress:   config.Compress,
	}
	fileCore := logging.NewWrappedCore(config.LogLevel, rw, fileEnc)
	prefix := config.LogFormat.WrapPrefix(config.MsgPrefix)

	l := logging.NewLogger(prefix, consoleCore, fileCore)
	f.loggers[config.LoggerName] = logWrapper{
		logger:       l,
		displayLevel: consoleCore.AtomicLevel,
		logLevel:     fileCore.AtomicLevel,
	}
	return l, nil
}

func (f *logFactory) Make(name string) (logging.Logger, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	config := f.config
	config.LoggerName = name
	return f.makeLogger(config)
}

// SetLogLevel changes the display and file level of the named logger.
func (f *logFactory) SetLogLevel(name string, level logging.Level) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	lw, ok := f.loggers[name]
	if !ok {
		return fmt.Errorf("logger with name %q not found", name)
	}
	lw.logLevel.SetLevel(zapcore.Level(level))
	lw.displayLevel.SetLevel(zapcore.Level(level))
	return nil
}

func (f *logFactory) Close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, lw := range f.loggers {
		lw.logger.Stop()
	}
	f.loggers = nil
}

type discardWriteCloser struct {
	io.Writer
}

func newDiscardWriteCloser() *discardWriteCloser {
	return &discardWriteCloser{io.Discard}
}

func (*discardWriteCloser) Close() error {
	return nil
}
