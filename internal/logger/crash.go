package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	// CrashLogDir is the directory for crash logs relative to the base path.
	CrashLogDir = "crash_logs"

	// MaxCrashLogs is the maximum number of crash logs to keep
	MaxCrashLogs = 10

	defaultBasePath = ".prpflow"
)

// CrashContext stores context for crash logging.
type CrashContext struct {
	mu        sync.RWMutex
	fs        afero.Fs
	basePath  string
	version   string
	command   string
	comment   string
	reference string
}

// globalContext is the singleton crash context.
var globalContext = &CrashContext{fs: afero.NewOsFs()}

// SetBasePath sets the base path for crash logs (typically <workspace>/.prpflow).
func SetBasePath(path string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.basePath = path
}

// SetFs replaces the filesystem crash logs are written to. Used by tests.
func SetFs(fs afero.Fs) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.fs = fs
}

// SetVersion sets the application version for crash logs.
func SetVersion(version string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.version = version
}

// SetCommand sets the current command being executed.
func SetCommand(cmd string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.command = cmd
}

// SetComment records the comment being resolved.
func SetComment(comment string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.comment = truncateForLog(strings.TrimSpace(comment), 500)
}

// SetReference records the PRP reference being processed.
func SetReference(ref string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.reference = ref
}

func truncateForLog(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "... [truncated]"
}

// CrashLog represents a crash log entry.
type CrashLog struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	Command    string    `json:"command"`
	PanicValue string    `json:"panic_value"`
	StackTrace string    `json:"stack_trace"`
	Comment    string    `json:"comment,omitempty"`
	Reference  string    `json:"reference,omitempty"`
	GoVersion  string    `json:"go_version"`
	OS         string    `json:"os"`
	Arch       string    `json:"arch"`
}

// HandlePanic is a deferred function that recovers from panics and logs them.
// Usage: defer logger.HandlePanic()
func HandlePanic() {
	if r := recover(); r != nil {
		log := createCrashLog(r)
		path, err := writeCrashLog(log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\n[CRASH] Failed to write crash log: %v\n", err)
			fmt.Fprintf(os.Stderr, "[CRASH] Panic: %v\n%s\n", r, log.StackTrace)
		} else {
			fmt.Fprintf(os.Stderr, "\nprpflow crashed: %v\nCrash log: %s\n", r, path)
		}
		os.Exit(1)
	}
}

// createCrashLog creates a CrashLog from a panic value.
func createCrashLog(panicValue any) CrashLog {
	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()

	return CrashLog{
		Timestamp:  time.Now(),
		Version:    globalContext.version,
		Command:    globalContext.command,
		PanicValue: fmt.Sprintf("%v", panicValue),
		StackTrace: string(debug.Stack()),
		Comment:    globalContext.comment,
		Reference:  globalContext.reference,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}
}

// writeCrashLog writes a crash log as JSON and returns its path.
func writeCrashLog(log CrashLog) (string, error) {
	globalContext.mu.RLock()
	fs := globalContext.fs
	globalContext.mu.RUnlock()

	dir := getCrashLogDir()
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode crash log: %w", err)
	}

	path := getCrashLogPath(log.Timestamp)
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}

	if err := cleanOldCrashLogs(fs, dir); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to clean old crash logs: %v\n", err)
	}
	return path, nil
}

// getCrashLogDir returns the directory for crash logs.
func getCrashLogDir() string {
	globalContext.mu.RLock()
	basePath := globalContext.basePath
	globalContext.mu.RUnlock()

	if basePath == "" {
		basePath = defaultBasePath
	}
	return filepath.Join(basePath, CrashLogDir)
}

// getCrashLogPath returns the path for a crash log file.
func getCrashLogPath(t time.Time) string {
	filename := fmt.Sprintf("crash_%s.json", t.Format("20060102_150405.000"))
	return filepath.Join(getCrashLogDir(), filename)
}

// cleanOldCrashLogs removes old crash logs, keeping only MaxCrashLogs most recent.
func cleanOldCrashLogs(fs afero.Fs, dir string) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) <= MaxCrashLogs {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(names)
	for _, name := range names[:len(names)-MaxCrashLogs] {
		if err := fs.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
