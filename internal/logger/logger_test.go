package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf})
	l.Info("archived PRP", "to", "PRPs/done/x.md")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "archived PRP", entry["msg"])
	assert.Equal(t, "PRPs/done/x.md", entry["to"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	l = New(Config{Level: "error", Verbose: true, Output: &buf})
	l.Debug("debug visible when verbose")
	assert.Contains(t, buf.String(), "debug visible when verbose")
}

func withCrashFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	SetFs(fs)
	SetBasePath("/repo/.prpflow")
	t.Cleanup(func() {
		SetFs(afero.NewOsFs())
		SetBasePath("")
		SetComment("")
		SetReference("")
		SetCommand("")
	})
	return fs
}

func TestCrashHandler_CreateCrashLog(t *testing.T) {
	withCrashFs(t)
	SetVersion("1.2.3")
	SetCommand("resolve")
	SetComment("  Please implement PRPs/x.md  ")
	SetReference("PRPs/x.md")

	log := createCrashLog("boom")
	assert.Equal(t, "1.2.3", log.Version)
	assert.Equal(t, "resolve", log.Command)
	assert.Equal(t, "boom", log.PanicValue)
	assert.Equal(t, "Please implement PRPs/x.md", log.Comment)
	assert.Equal(t, "PRPs/x.md", log.Reference)
	assert.NotEmpty(t, log.StackTrace)
}

func TestCrashHandler_CommentTruncation(t *testing.T) {
	withCrashFs(t)
	SetComment(strings.Repeat("a", 600))

	log := createCrashLog("x")
	assert.True(t, strings.HasSuffix(log.Comment, "... [truncated]"))
	assert.Len(t, log.Comment, 500+len("... [truncated]"))
}

func TestCrashHandler_WriteCrashLog(t *testing.T) {
	fs := withCrashFs(t)

	path, err := writeCrashLog(CrashLog{Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), PanicValue: "nil map"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/repo/.prpflow", CrashLogDir, "crash_20250102_030405.000.json"), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	var decoded CrashLog
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "nil map", decoded.PanicValue)
}

func TestCrashHandler_CleanOldLogs(t *testing.T) {
	fs := withCrashFs(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < MaxCrashLogs+3; i++ {
		_, err := writeCrashLog(CrashLog{Timestamp: base.Add(time.Duration(i) * time.Second), PanicValue: fmt.Sprint(i)})
		require.NoError(t, err)
	}

	entries, err := afero.ReadDir(fs, getCrashLogDir())
	require.NoError(t, err)
	assert.Len(t, entries, MaxCrashLogs)
	assert.Equal(t, "crash_20250101_000003.000.json", entries[0].Name(), "oldest three removed")
}

func TestCrashHandler_DefaultBasePath(t *testing.T) {
	withCrashFs(t)
	SetBasePath("")
	assert.Equal(t, filepath.Join(".prpflow", CrashLogDir), getCrashLogDir())
}
