/*
 * logging_test.go, part of goConf.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(Te *testing.T) {
	for s, want := range map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"DEBUG": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	} {
		l, err := ParseLevel(s)
		require.NoError(Te, err, s)
		assert.Equal(Te, want, l, s)
	}
	_, err := ParseLevel("loud")
	assert.Error(Te, err)
}

func TestNew(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "goconf.log")
	l, err := New(LogConfig{Level: "debug", Format: "json", OutputPaths: []string{path}})
	require.NoError(Te, err)
	l.Debug("conformer generated")
	require.NoError(Te, l.Sync())
	b, err := os.ReadFile(path)
	require.NoError(Te, err)
	assert.Contains(Te, string(b), `"msg":"conformer generated"`)
	assert.Contains(Te, string(b), `"level":"debug"`)

	_, err = New(LogConfig{Format: "xml"})
	assert.Error(Te, err)
	_, err = New(LogConfig{Level: "loud"})
	assert.Error(Te, err)
}
