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

//nolint:paralleltest // tests mutate package-level debug state
package cc2500

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSessionLog(t *testing.T) string {
	t.Helper()
	origEnabled := debugEnabled
	debugEnabled = false

	path := filepath.Join(t.TempDir(), "session.log")
	_, err := InitSessionLog(path)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = CloseSessionLog()
		debugEnabled = origEnabled
	})
	return path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path) //nolint:gosec // test temp file
	require.NoError(t, err)
	return string(content)
}

func TestDebugf_WritesToSessionLog(t *testing.T) {
	path := withSessionLog(t)

	Debugf("calibrated %d channels", 47)

	content := readLog(t, path)
	assert.Contains(t, content, "DEBUG: calibrated 47 channels\n")
	matched, err := regexp.MatchString(`\d{2}:\d{2}:\d{2}\.\d{3} DEBUG:`, content)
	require.NoError(t, err)
	assert.True(t, matched, "timestamp missing in %q", content)
}

func TestDebugln_WritesToSessionLog(t *testing.T) {
	path := withSessionLog(t)

	Debugln("hop", 3, "channel", 0x43)

	assert.Contains(t, readLog(t, path), "DEBUG: hop 3 channel 67\n")
}

func TestDebugf_NoSessionLog(t *testing.T) {
	origEnabled := debugEnabled
	t.Cleanup(func() { debugEnabled = origEnabled })
	debugEnabled = false

	require.NoError(t, CloseSessionLog())
	assert.NotPanics(t, func() { Debugf("no writer %d", 1) })
}

func TestSetDebugEnabled(t *testing.T) {
	origEnabled := debugEnabled
	t.Cleanup(func() { debugEnabled = origEnabled })

	SetDebugEnabled(true)
	assert.True(t, debugEnabled)
	SetDebugEnabled(false)
	assert.False(t, debugEnabled)
}

func TestInitSessionLog_WritesHeaderAndFooter(t *testing.T) {
	path := withSessionLog(t)
	assert.Equal(t, path, GetSessionLogPath())

	require.NoError(t, CloseSessionLog())
	assert.Empty(t, GetSessionLogPath())

	content := readLog(t, path)
	for _, want := range []string{
		"=== CC2500 Debug Session Log ===",
		"Started:",
		"PID:",
		"OS:",
		"Go Version:",
		"Command Line:",
		"=== Session ended ===",
	} {
		assert.Contains(t, content, want)
	}
}

func TestInitSessionLog_DefaultName(t *testing.T) {
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		_ = CloseSessionLog()
		_ = os.Chdir(origDir)
	})

	path, err := InitSessionLog("")
	require.NoError(t, err)
	assert.Regexp(t, `^cc2500_\d{8}_\d{6}\.log$`, path)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestInitSessionLog_ReplacesPrevious(t *testing.T) {
	first := withSessionLog(t)
	second := filepath.Join(t.TempDir(), "second.log")

	_, err := InitSessionLog(second)
	require.NoError(t, err)
	Debugf("after switch")

	assert.False(t, strings.Contains(readLog(t, first), "after switch"))
	assert.Contains(t, readLog(t, second), "after switch")
}
