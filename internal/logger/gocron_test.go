package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGocronLogger_PairsBecomeFields(t *testing.T) {
	l := NewTestLogger()

	NewGocronLogger(l).Info("job ran", "name", "purge", "runs", 3, "dangling")

	entries := l.GetEntries()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "job ran", entries[0].Message)
		assert.Equal(t, Fields{
			"component": "scheduler",
			"name":      "purge",
			"runs":      3,
			"extra":     "dangling",
		}, entries[0].Fields)
	}
}
