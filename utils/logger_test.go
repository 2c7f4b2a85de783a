/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsRegistered(t *testing.T) {
	a := NewLogger("REGISTRY-TEST")
	b := NewLogger("REGISTRY-TEST")
	assert.Same(t, a, b)

	assert.True(t, SetLoggerLevel("REGISTRY-TEST", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("NOT-REGISTERED", "debug"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel(" warning "))
	assert.Equal(t, logrus.TraceLevel, ParseLogLevel("trace"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("verbose"))
}

func TestJSONLogFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&JSONLogFormatter{LoggerName: "JSON"})

	l.WithFields(logrus.Fields{"error": errors.New("boom"), "rows": 2}).Warn("query failed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "query failed", line["msg"])
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "JSON", line["logger"])
	assert.Equal(t, "boom", line["error"])
	assert.EqualValues(t, 2, line["rows"])
	assert.NotEmpty(t, line["ts"])
}

func TestTextLogFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&TextLogFormatter{LoggerName: "A-VERY-LONG-NAME", NameWidth: 6})

	l.WithFields(logrus.Fields{"b": 2, "a": 1}).Info("hello")

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "hello a=1 b=2\n"), out)
	assert.Contains(t, out, "A-VERY")
	assert.NotContains(t, out, "A-VERY-")
}

func TestConfigureOutputAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("CONFIGURE-TEST")
	ConfigureOutput(&buf)
	ConfigureLogFormat(FormatJSON)
	ConfigureLogLevel("debug")
	t.Cleanup(func() {
		ConfigureOutput(os.Stdout)
		ConfigureLogFormat(FormatText)
		ConfigureLogLevel("info")
	})

	l.Debug("visible")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "CONFIGURE-TEST", line["logger"])
	assert.Equal(t, "visible", line["msg"])
}

func TestEnvDefaultString(t *testing.T) {
	t.Setenv("TOMBSTONE_ENV_PROBE", "  ")
	assert.Equal(t, "fallback", EnvDefaultString("TOMBSTONE_ENV_PROBE", "fallback"))
	t.Setenv("TOMBSTONE_ENV_PROBE", "set")
	assert.Equal(t, "set", EnvDefaultString("TOMBSTONE_ENV_PROBE", "fallback"))
}
