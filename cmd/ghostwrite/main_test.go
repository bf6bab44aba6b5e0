package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghostwrite "github.com/Paranoid-AF/ghostwrite"
	"github.com/Paranoid-AF/ghostwrite/persona"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("GHOSTWRITE_CONFIG_DIR", t.TempDir())
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "ghostwrite dev\n", run(t, "version"))
}

func TestPersonasCommand(t *testing.T) {
	out := run(t, "personas")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, persona.Names(), lines)
}

func TestConfigCommandMasksKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-secret")
	out := run(t, "config")
	assert.NotContains(t, out, "sk-secret")
	assert.Contains(t, out, `api_key = "***"`)
}

func TestConfigDefaultsCommand(t *testing.T) {
	out := run(t, "config", "--defaults")
	assert.Contains(t, out, ghostwrite.DefaultConfig().Editor.DefaultModel)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestNewLoggerWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ghostwrite.log")
	logger, closer := newLogger(&rootOptions{verbose: true}, ghostwrite.LoggingConfig{File: path}, os.Stderr)
	logger.Debug("hello", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
}

func TestNewLoggerFallback(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := newLogger(&rootOptions{}, ghostwrite.LoggingConfig{Level: "warn"}, &buf)
	defer closer.Close()
	logger.Info("quiet")
	logger.Warn("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
