package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetState() {
	CloseAll()
	loggersMu.Lock()
	logsDir = ""
	loggersMu.Unlock()
	configMu.Lock()
	settings = Settings{}
	configMu.Unlock()
}

func readLogs(t *testing.T, ws string) map[string]string {
	t.Helper()
	dir := filepath.Join(ws, ".objscope", "logs")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	out := make(map[string]string)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(data)
	}
	return out
}

// TestAllCategoriesLog tests that all categories create log files when debug mode is on
func TestAllCategoriesLog(t *testing.T) {
	resetState()
	defer resetState()
	ws := t.TempDir()

	require.NoError(t, Initialize(ws, Settings{DebugMode: true, Level: "debug"}))
	assert.True(t, IsDebugMode())

	categories := []Category{
		CategoryBoot, CategorySession, CategoryAccess, CategoryRuntime,
		CategoryBridge, CategoryFacts, CategoryPerformance,
	}
	for _, cat := range categories {
		assert.True(t, IsCategoryEnabled(cat), "category %s", cat)
		l := Get(cat)
		l.Info("Test info message for %s", cat)
		l.Debug("Test debug message for %s", cat)
		l.Warn("Test warn message for %s", cat)
		l.Error("Test error message for %s", cat)
	}
	Session("Convenience session log")
	AccessDebug("Convenience access log")
	FactsDebug("Convenience facts log")

	CloseAll()

	logs := readLogs(t, ws)
	for _, cat := range categories {
		found := false
		for name, content := range logs {
			if strings.HasSuffix(name, "_"+string(cat)+".log") {
				found = true
				assert.Contains(t, content, "Test info message for "+string(cat))
				assert.Contains(t, content, "Test debug message")
			}
		}
		assert.True(t, found, "no log file for category %s", cat)
	}
}

// TestDebugModeDisabled tests that no logs are created when debug mode is off
func TestDebugModeDisabled(t *testing.T) {
	resetState()
	defer resetState()
	ws := t.TempDir()

	require.NoError(t, Initialize(ws, Settings{DebugMode: false, Level: "debug"}))
	assert.False(t, IsDebugMode())
	assert.False(t, IsCategoryEnabled(CategoryBoot))

	Boot("should not be written")
	Get(CategoryAccess).Error("should not be written")
	CloseAll()

	_, err := os.Stat(filepath.Join(ws, ".objscope", "logs"))
	assert.True(t, os.IsNotExist(err), "logs directory must not exist in production mode")
}

func TestCategoryToggle(t *testing.T) {
	resetState()
	defer resetState()
	ws := t.TempDir()

	require.NoError(t, Initialize(ws, Settings{
		DebugMode: true,
		Level:     "debug",
		Categories: map[string]bool{
			"boot":   true,
			"access": false,
			"bridge": false,
		},
	}))

	assert.True(t, IsCategoryEnabled(CategoryBoot))
	assert.False(t, IsCategoryEnabled(CategoryAccess))
	assert.False(t, IsCategoryEnabled(CategoryBridge))
	assert.True(t, IsCategoryEnabled(CategorySession), "categories missing from the filter default to enabled")

	Boot("This SHOULD be logged")
	AccessWarn("This should NOT be logged")
	Bridge("This should NOT be logged")
	Session("This SHOULD be logged")
	CloseAll()

	var names []string
	for name := range readLogs(t, ws) {
		names = append(names, name)
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "boot")
	assert.Contains(t, joined, "session")
	assert.NotContains(t, joined, "access")
	assert.NotContains(t, joined, "bridge")
}

func TestLevelFilter(t *testing.T) {
	resetState()
	defer resetState()
	ws := t.TempDir()

	require.NoError(t, Initialize(ws, Settings{DebugMode: true, Level: "warn"}))
	l := Get(CategoryRuntime)
	l.Info("quiet info")
	l.Warn("loud warning")
	CloseAll()

	for name, content := range readLogs(t, ws) {
		if strings.Contains(name, "runtime") {
			assert.NotContains(t, content, "quiet info")
			assert.Contains(t, content, "loud warning")
			return
		}
	}
	t.Fatal("runtime log file missing")
}

func TestSessionLoggerTagsMessages(t *testing.T) {
	resetState()
	defer resetState()
	ws := t.TempDir()

	require.NoError(t, Initialize(ws, Settings{DebugMode: true, Level: "debug", JSONFormat: true}))
	WithSession(CategorySession, "sess-42").Info("wrapped %d values", 3)
	CloseAll()

	for name, content := range readLogs(t, ws) {
		if strings.Contains(name, "session") {
			assert.Contains(t, content, `"session":"sess-42"`)
			assert.Contains(t, content, "wrapped 3 values")
			return
		}
	}
	t.Fatal("session log file missing")
}

// TestTimerLogging tests the timing helper
func TestTimerLogging(t *testing.T) {
	resetState()
	defer resetState()
	require.NoError(t, Initialize(t.TempDir(), Settings{DebugMode: true, Level: "debug"}))

	timer := StartTimer(CategoryAccess, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()
	assert.Greater(t, elapsed, time.Duration(0))

	slow := StartTimer(CategoryAccess, "SlowOperation")
	time.Sleep(2 * time.Millisecond)
	assert.Greater(t, slow.StopWithThreshold(time.Nanosecond), time.Nanosecond)
}

func TestInitializeRequiresWorkspace(t *testing.T) {
	assert.Error(t, Initialize("", Settings{}))
}
