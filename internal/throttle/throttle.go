// Package throttle rejects repeated requests from the same user inside a
// fixed window.
package throttle

import (
	"fmt"
	"sync"
	"time"

	"github.com/muratoffalex/errorer/internal/cache"
	"github.com/muratoffalex/errorer/internal/logger"
)

type Throttler struct {
	cache  cache.Cache
	ttl    time.Duration
	logger logger.Logger
	mu     sync.Mutex
}

func New(c cache.Cache, ttl time.Duration, log logger.Logger) *Throttler {
	return &Throttler{
		cache:  c,
		ttl:    ttl,
		logger: log,
	}
}

// Scopes keep independent windows per kind of request.
const (
	ScopeGenerate = "generate"
	ScopeCallback = "callback"
)

func key(scope string, userID int64) string {
	return fmt.Sprintf("%sthrottle:%s:%d", cache.MemoryOnlyPrefix, scope, userID)
}

// Allow reports whether userID may proceed within scope and, if so, starts
// a new window.
func (t *Throttler) Allow(scope string, userID int64) bool {
	if t.ttl <= 0 {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	k := key(scope, userID)
	if _, found := t.cache.Get(k); found {
		t.logger.WithFields(logger.Fields{
			"user_id": userID,
			"scope":   scope,
		}).Debug("Request throttled")
		return false
	}
	if err := t.cache.Set(k, []byte{1}, t.ttl); err != nil {
		t.logger.WithError(err).WithField("user_id", userID).Warn("Failed to store throttle mark")
	}
	return true
}

// Reset lifts the window for userID within scope.
func (t *Throttler) Reset(scope string, userID int64) {
	if err := t.cache.Delete(key(scope, userID)); err != nil {
		t.logger.WithError(err).WithField("user_id", userID).Warn("Failed to reset throttle mark")
	}
}
