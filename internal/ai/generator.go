package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/muratoffalex/errorer/internal/cache"
	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/logger"
)

const (
	defaultCandidateTimeout = 15 * time.Second
	defaultRaceSize         = 3
)

var ErrNoCandidates = errors.New("no AI candidates configured")

type RaceOptions struct {
	Enabled          bool
	Size             int
	Timeout          time.Duration
	CandidateTimeout time.Duration
}

type Options struct {
	FallbackMessage   string
	Shuffle           bool
	MinLength         int
	MaxResponseLength int
	MaxTokens         int
	Temperature       *float32
	RateLimitPause    time.Duration
	ProviderInterval  time.Duration
	Race              RaceOptions
	// CacheTTL of zero disables the response cache.
	CacheTTL      time.Duration
	SpeedTestSize int
}

func OptionsFromConfig(cfg config.AIConfig) Options {
	opts := Options{
		FallbackMessage:   cfg.FallbackMessage,
		Shuffle:           cfg.Shuffle,
		MinLength:         cfg.MinLength,
		MaxResponseLength: cfg.MaxResponseLength,
		MaxTokens:         cfg.MaxTokens,
		Temperature:       cfg.Temperature,
		RateLimitPause:    cfg.RateLimitPause,
		ProviderInterval:  cfg.ProviderInterval,
		Race: RaceOptions{
			Enabled:          cfg.Race.Enabled,
			Size:             cfg.Race.Size,
			Timeout:          cfg.Race.Timeout,
			CandidateTimeout: cfg.Race.CandidateTimeout,
		},
		SpeedTestSize: cfg.SpeedTestSize,
	}
	if cfg.Cache.Enabled {
		opts.CacheTTL = cfg.Cache.TTL
	}
	return opts
}

// Generator runs the candidate fallback chain. It is safe for concurrent use.
type Generator struct {
	registry   *BackendRegistry
	candidates []Candidate
	cache      cache.Cache
	opts       Options
	logger     logger.Logger

	limiters   map[string]*rate.Limiter
	limitersMu sync.Mutex

	stats   map[string]*CandidateStats
	statsMu sync.Mutex
}

// NewGenerator wires a generator. respCache may be nil.
func NewGenerator(
	registry *BackendRegistry,
	candidates []Candidate,
	respCache cache.Cache,
	opts Options,
	log logger.Logger,
) (*Generator, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	return &Generator{
		registry:   registry,
		candidates: append([]Candidate(nil), candidates...),
		cache:      respCache,
		opts:       opts,
		logger:     log,
		limiters:   make(map[string]*rate.Limiter),
		stats:      make(map[string]*CandidateStats),
	}, nil
}

func (g *Generator) Candidates() []Candidate {
	return append([]Candidate(nil), g.candidates...)
}

// fallbackState tracks what the current request decided to skip.
type fallbackState struct {
	mu          sync.Mutex
	attempts    int
	skipPairs   map[string]bool
	rateLimited bool
}

func newFallbackState() *fallbackState {
	return &fallbackState{
		skipPairs: make(map[string]bool),
	}
}

func (s *fallbackState) skipped(c Candidate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipPairs[c.providerKey()]
}

func (s *fallbackState) attempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	return s.attempts
}

// mark applies the skip rule for class and reports whether anything changed.
// Only (backend, provider) pairs are skipped, and only when the provider is set.
func (s *fallbackState) mark(c Candidate, class ErrorClass) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if class == ErrorClassRateLimit {
		s.rateLimited = true
	}
	switch class {
	case ErrorClassRateLimit, ErrorClassAPIKey, ErrorClassUnavailable:
		if c.Provider == "" {
			return false
		}
		s.skipPairs[c.providerKey()] = true
		return true
	}
	return false
}

// takeRateLimited reports whether a rate limit was hit since the last call.
func (s *fallbackState) takeRateLimited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	hit := s.rateLimited
	s.rateLimited = false
	return hit
}

// Generate returns cleaned text from the first candidate that produces some,
// or the fallback message. It never fails.
func (g *Generator) Generate(ctx context.Context, req CompletionRequest) CompletionResult {
	return g.generate(ctx, req, g.opts.Race.Enabled)
}

// GenerateRace races the head of the candidate list regardless of config.
func (g *Generator) GenerateRace(ctx context.Context, req CompletionRequest) CompletionResult {
	return g.generate(ctx, req, true)
}

func (g *Generator) generate(ctx context.Context, req CompletionRequest, race bool) CompletionResult {
	start := time.Now()
	log := g.logger.WithField("request_id", uuid.NewString())

	key := cacheKey(req)
	if text, ok := g.cached(key); ok {
		log.Debug("AI response served from cache")
		return CompletionResult{Text: text, Cached: true, Duration: time.Since(start)}
	}

	candidates := g.ordered()
	state := newFallbackState()

	var winner *Candidate
	var text string
	if race {
		size := g.opts.Race.Size
		if size <= 0 {
			size = defaultRaceSize
		}
		size = min(size, len(candidates))
		winner, text = g.race(ctx, req, candidates[:size], state, log)
		candidates = candidates[size:]
		if winner == nil && state.takeRateLimited() {
			sleepCtx(ctx, g.opts.RateLimitPause)
		}
	}
	if winner == nil {
		winner, text = g.sequential(ctx, req, candidates, state, log)
	}

	result := CompletionResult{
		Attempts: state.attempts,
		Duration: time.Since(start),
	}
	if winner == nil {
		log.WithFields(logger.Fields{
			"attempts": state.attempts,
			"duration": result.Duration,
		}).Error("All AI candidates failed, returning fallback message")
		result.Text = g.opts.FallbackMessage
		result.Fallback = true
		return result
	}

	result.Text = text
	result.Candidate = winner
	log.WithFields(logger.Fields{
		"backend":  winner.Backend,
		"model":    winner.Model,
		"provider": winner.Provider,
		"attempts": state.attempts,
		"duration": result.Duration,
	}).Info("AI response generated")

	if g.cache != nil && g.opts.CacheTTL > 0 {
		if err := g.cache.Set(key, []byte(text), g.opts.CacheTTL); err != nil {
			log.WithError(err).Warn("Failed to cache AI response")
		}
	}
	return result
}

func (g *Generator) sequential(ctx context.Context, req CompletionRequest, candidates []Candidate, state *fallbackState, log logger.Logger) (*Candidate, string) {
	for _, c := range candidates {
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).Warn("Generation cancelled")
			return nil, ""
		}
		if state.skipped(c) {
			log.WithField("candidate", c.String()).Debug("Skipping candidate")
			continue
		}
		attemptLog := candidateLog(log, c, state.attempt())
		text, err := g.try(ctx, c, req, g.opts.MinLength, attemptLog)
		if err == nil {
			return &c, text
		}
		class := ClassifyError(err)
		attemptLog.WithError(err).WithField("error_class", class).Warn("AI candidate failed")
		state.mark(c, class)
		if state.takeRateLimited() {
			sleepCtx(ctx, g.opts.RateLimitPause)
		}
	}
	return nil, ""
}

// race runs candidates concurrently; the first success cancels the rest.
func (g *Generator) race(ctx context.Context, req CompletionRequest, candidates []Candidate, state *fallbackState, log logger.Logger) (*Candidate, string) {
	var raceCtx context.Context
	var cancel context.CancelFunc
	if g.opts.Race.Timeout > 0 {
		raceCtx, cancel = context.WithTimeout(ctx, g.opts.Race.Timeout)
	} else {
		raceCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	type outcome struct {
		candidate Candidate
		text      string
		err       error
	}
	results := make(chan outcome, len(candidates))
	launched := 0
	for _, c := range candidates {
		if state.skipped(c) {
			continue
		}
		if ct := g.opts.Race.CandidateTimeout; ct > 0 && (c.Timeout <= 0 || ct < c.Timeout) {
			c.Timeout = ct
		}
		attemptLog := candidateLog(log, c, state.attempt()).WithField("race", true)
		launched++
		go func() {
			text, err := g.try(raceCtx, c, req, g.opts.MinLength, attemptLog)
			results <- outcome{candidate: c, text: text, err: err}
		}()
	}

	for range launched {
		o := <-results
		if o.err == nil {
			cancel()
			return &o.candidate, o.text
		}
		if errors.Is(o.err, context.Canceled) {
			continue
		}
		class := ClassifyError(o.err)
		log.WithError(o.err).WithFields(logger.Fields{
			"candidate":   o.candidate.String(),
			"error_class": class,
		}).Warn("AI race candidate failed")
		state.mark(o.candidate, class)
	}
	return nil, ""
}

type completion struct {
	raw any
	err error
}

// try performs one attempt. Complete runs in its own goroutine so a backend
// that ignores ctx cannot hold the chain past the candidate timeout.
func (g *Generator) try(ctx context.Context, c Candidate, req CompletionRequest, minLength int, log logger.Logger) (text string, err error) {
	start := time.Now()
	defer func() {
		if !errors.Is(err, context.Canceled) {
			g.record(c, time.Since(start), err)
		}
	}()

	backend, err := g.registry.Get(c.Backend)
	if err != nil {
		return "", err
	}

	if c.Throttled {
		if limiter := g.limiter(c); limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultCandidateTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		raw, err := backend.Complete(callCtx, NewChatRequest(c, req, g.opts.MaxTokens, g.opts.Temperature))
		done <- completion{raw: raw, err: err}
	}()

	var reply completion
	select {
	case reply = <-done:
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}

	if reply.err != nil {
		if errors.Is(reply.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, reply.err)
		}
		return "", reply.err
	}

	raw, ok := ExtractText(reply.raw)
	if !ok {
		return "", ErrNoText
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(raw)); n < minLength {
		return "", fmt.Errorf("%w: %d chars", ErrTooShort, n)
	}
	text = Clean(raw, g.opts.MaxResponseLength)
	if text == "" {
		return "", ErrEmptyCleaned
	}
	log.WithField("duration", time.Since(start)).Debug("AI candidate succeeded")
	return text, nil
}

func (g *Generator) ordered() []Candidate {
	out := append([]Candidate(nil), g.candidates...)
	if g.opts.Shuffle {
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

func (g *Generator) limiter(c Candidate) *rate.Limiter {
	if g.opts.ProviderInterval <= 0 {
		return nil
	}
	g.limitersMu.Lock()
	defer g.limitersMu.Unlock()
	key := c.providerKey()
	l, ok := g.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(g.opts.ProviderInterval), 1)
		g.limiters[key] = l
	}
	return l
}

func (g *Generator) cached(key string) (string, bool) {
	if g.cache == nil || g.opts.CacheTTL <= 0 {
		return "", false
	}
	data, ok := g.cache.Get(key)
	if !ok || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func cacheKey(req CompletionRequest) string {
	sum := sha256.Sum256([]byte(req.SystemPrompt + "\x00" + req.Prompt))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func candidateLog(log logger.Logger, c Candidate, attempt int) logger.Logger {
	return log.WithFields(logger.Fields{
		"backend":  c.Backend,
		"model":    c.Model,
		"provider": c.Provider,
		"attempt":  attempt,
	})
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
