package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/data-bridge/bridgeflow/internal/config"
	"github.com/data-bridge/bridgeflow/internal/term"
)

func bufferLogger(t *testing.T, logFile string) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	l, err := newLogger(zapcore.AddSync(&out), zapcore.AddSync(&errOut), false, logFile)
	require.NoError(t, err)
	return l, &out, &errOut
}

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	defer l.Close()
	l.Info("test message")
}

func TestLevels(t *testing.T) {
	l, out, errOut := bufferLogger(t, "")
	l.Info("one %d", 1)
	l.Success("two")
	l.Warn("three")
	l.Debug(false, "hidden")
	l.Debug(true, "shown")
	l.Error("four")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "[INFO] one 1")
	assert.Contains(t, lines[1], "[SUCCESS] two")
	assert.Contains(t, lines[2], "[WARN] three")
	assert.Contains(t, lines[3], "[DEBUG] shown")
	assert.Contains(t, errOut.String(), "[ERROR] four")
	assert.NotContains(t, out.String(), "four")
}

func TestColoredConsolePlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var out, errOut bytes.Buffer
	l, err := newLogger(zapcore.AddSync(&out), zapcore.AddSync(&errOut), true, path)
	require.NoError(t, err)
	l.Warn("careful")
	require.NoError(t, l.Close())

	assert.Contains(t, out.String(), term.Yellow.Wrap("[WARN]")+" careful")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[WARN] careful")
	assert.NotContains(t, string(b), "\033[")
}

func TestNewLogger_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bridgeflow.log")
	l, _, _ := bufferLogger(t, path)
	l.Info("to file")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[INFO] to file")
	assert.NotContains(t, string(b), "\033[")
}

func TestJoinWorkers_IndexOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l, out, _ := bufferLogger(t, path)
	l.Info("header")

	var workers []*Logger
	for i := 0; i < 3; i++ {
		w, err := l.ForWorker(i)
		require.NoError(t, err)
		workers = append(workers, w)
	}
	// Written out of order on purpose.
	workers[2].Info("from two")
	workers[0].Info("from zero")
	workers[1].Info("from one")

	require.NoError(t, l.JoinWorkers(workers))
	l.Info("footer")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	order := []string{"header", "w0 from zero", "w1 from one", "w2 from two", "footer"}
	last := -1
	for _, s := range order {
		i := strings.Index(text, s)
		require.GreaterOrEqual(t, i, 0, "missing %q in:\n%s", s, text)
		assert.Greater(t, i, last, "%q out of order", s)
		last = i
	}
	for i := 0; i < 3; i++ {
		_, err := os.Stat(path + "." + string(rune('0'+i)))
		assert.True(t, os.IsNotExist(err), "part %d should be removed", i)
	}
	assert.Contains(t, out.String(), "w2 from two")
}

func TestJoinWorkers_NoFile(t *testing.T) {
	l, out, _ := bufferLogger(t, "")
	w, err := l.ForWorker(0)
	require.NoError(t, err)
	w.Warn("console only")
	require.NoError(t, l.JoinWorkers([]*Logger{w}))
	assert.Contains(t, out.String(), "w0 console only")
}
