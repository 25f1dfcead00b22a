package logger

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/errorer/internal/config"
)

func TestTestLogger_SharesStorageAcrossDerived(t *testing.T) {
	l := NewTestLogger()
	child := l.WithField("request_id", "abc").WithError(errors.New("boom"))

	child.Warn("candidate failed")
	l.Info("plain")

	assert.Equal(t, 2, l.CountEntries())
	assert.True(t, l.HasEntry("warn", "candidate failed"))
	assert.True(t, l.HasField("warn", "request_id", "abc"))
	assert.True(t, l.HasEntryContaining("info", "pla"))
	assert.Equal(t, 1, l.CountLevel("warn"))

	l.Clear()
	assert.Zero(t, l.CountEntries())
}

func TestTestLogger_Concurrent(t *testing.T) {
	l := NewTestLogger()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.WithField("i", i).Debug("tick")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, l.CountLevel("debug"))
}

func TestNewLogrusLogger_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	cfg := &config.LoggingConfig{
		LogLevel:    "DEBUG",
		WriteInFile: true,
		FilePath:    path,
		MaxSize:     1,
	}
	l := NewLogrusLogger(cfg)
	l.WithField("backend", "g4f").Debug("hello file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, string(data), "backend=g4f")
}
