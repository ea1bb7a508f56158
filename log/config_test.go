package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFilterRules(t *testing.T) {
	buf := bytes.Buffer{}
	opt, err := WithFilterRules("info:* debug:coach")
	require.NoError(t, err)

	l := New(&buf, DebugLevel, opt)
	l.Named("service").Debug("hidden")
	l.Named("coach").Debug("visible")
	l.Named("service").Info("also visible")
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "\"visible\"")
	assert.Contains(t, out, "also visible")
}

func TestWithFilterRulesInvalid(t *testing.T) {
	_, err := WithFilterRules("nolevel:*")
	assert.Error(t, err)
}

func TestFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.log")
	cfgFile := filepath.Join(dir, "log.yml")
	content := strings.Join([]string{
		"level: warn",
		"encoding: json",
		"outputPaths: [" + out + "]",
		"errorOutputPaths: [stderr]",
	}, "\n")
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o600))

	l, err := FromConfigFile(cfgFile)
	require.NoError(t, err)
	l.Info("dropped")
	l.Warn("kept")
	_ = l.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
