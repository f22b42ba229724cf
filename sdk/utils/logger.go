// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	loggerMu sync.RWMutex
	logger   = newLogger()
)

func newLogger() *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "dvcli",
		ReportTimestamp: true,
	})
	if lvl, err := log.ParseLevel(os.Getenv(LogLevelEnv)); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// Logger returns the shared logger.
func Logger() *log.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger replaces the shared logger, nil restores the default one.
func SetLogger(l *log.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		l = newLogger()
	}
	logger = l
}
