// Package logging sets up the process-wide log/v3 root logger: a
// terminal-formatted console handler plus an optional rotating file
// handler, in the style of turbo/logging's SetupLoggerCtx but trimmed to
// this indexer's single-binary use (no cobra/cmd split, no async option).
package logging

import (
	"os"
	"path/filepath"

	"github.com/ledgerwatch/log/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the root logger.
type Options struct {
	ConsoleLevel log.Lvl
	DirPath      string // empty disables file logging
	FilePrefix   string
	DirLevel     log.Lvl
}

// Setup installs a console handler, and a rotating file handler when
// DirPath is non-empty, onto the log/v3 root logger.
func Setup(opts Options) log.Logger {
	logger := log.Root()

	consoleHandler := log.LvlFilterHandler(opts.ConsoleLevel, log.StreamHandler(os.Stderr, log.TerminalFormatNoColor()))
	logger.SetHandler(consoleHandler)

	if opts.DirPath == "" {
		logger.Info("console logging only")
		return logger
	}

	if err := os.MkdirAll(opts.DirPath, 0o764); err != nil {
		logger.Warn("failed to create log dir, console logging only", "err", err)
		return logger
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(opts.DirPath, opts.FilePrefix+".log"),
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	fileHandler := log.LvlFilterHandler(opts.DirLevel, log.StreamHandler(rotator, log.TerminalFormatNoColor()))

	logger.SetHandler(log.MultiHandler(consoleHandler, fileHandler))
	logger.Info("logging to file system", "dir", opts.DirPath, "prefix", opts.FilePrefix)
	return logger
}
