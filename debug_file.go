// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
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

package cc2500

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Session log rotation limits
const (
	sessionLogMaxSizeMB  = 10
	sessionLogMaxBackups = 5
	sessionLogMaxAgeDays = 14
)

var (
	sessionMu     sync.Mutex
	sessionLogger *lumberjack.Logger
)

func sessionWriter() io.Writer {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if sessionLogger == nil {
		return nil
	}
	return sessionLogger
}

// InitSessionLog starts writing debug output to a rotating log file. An
// empty path creates a timestamped file in the current directory. Returns
// the log file path for display to the user.
func InitSessionLog(path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("cc2500_%s.log", time.Now().Format("20060102_150405"))
	}

	logger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    sessionLogMaxSizeMB,
		MaxBackups: sessionLogMaxBackups,
		MaxAge:     sessionLogMaxAgeDays,
	}
	if err := writeSessionHeader(logger); err != nil {
		_ = logger.Close()
		return "", fmt.Errorf("failed to create session log: %w", err)
	}

	sessionMu.Lock()
	old := sessionLogger
	sessionLogger = logger
	sessionMu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return path, nil
}

// CloseSessionLog closes the current session log file.
func CloseSessionLog() error {
	sessionMu.Lock()
	logger := sessionLogger
	sessionLogger = nil
	sessionMu.Unlock()

	if logger == nil {
		return nil
	}
	timestamp := time.Now().Format("15:04:05.000")
	_, _ = fmt.Fprintf(logger, "\n%s === Session ended ===\n", timestamp)
	if err := logger.Close(); err != nil {
		return fmt.Errorf("failed to close session log: %w", err)
	}
	return nil
}

// GetSessionLogPath returns the current session log file path.
func GetSessionLogPath() string {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if sessionLogger == nil {
		return ""
	}
	return sessionLogger.Filename
}

func writeSessionHeader(w io.Writer) error {
	var b strings.Builder
	b.WriteString("=== CC2500 Debug Session Log ===\n")
	_, _ = fmt.Fprintf(&b, "Started: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&b, "PID: %d\n", os.Getpid())
	_, _ = fmt.Fprintf(&b, "OS: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&b, "Go Version: %s\n", runtime.Version())
	if exe, err := os.Executable(); err == nil {
		_, _ = fmt.Fprintf(&b, "Executable: %s\n", exe)
	}
	_, _ = fmt.Fprintf(&b, "Command Line: %s\n", strings.Join(os.Args, " "))
	b.WriteString("================================\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}
