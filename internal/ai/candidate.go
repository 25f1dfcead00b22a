package ai

import (
	"fmt"
	"time"

	"github.com/muratoffalex/errorer/internal/config"
)

// CompletionRequest is what callers ask for. An empty SystemPrompt is omitted.
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string
}

// Candidate is one (model, provider) pair tried during fallback.
type Candidate struct {
	Backend   string
	Model     string
	Provider  string // empty: backend's own choice
	Timeout   time.Duration
	Throttled bool
}

func (c Candidate) String() string {
	provider := c.Provider
	if provider == "" {
		provider = AutoProvider
	}
	return fmt.Sprintf("%s/%s@%s", c.Backend, c.Model, provider)
}

func (c Candidate) providerKey() string {
	provider := c.Provider
	if provider == "" {
		provider = AutoProvider
	}
	return c.Backend + "|" + provider
}

type CompletionResult struct {
	Text string
	// Fallback is set when every candidate failed and Text is the fallback message.
	Fallback  bool
	Candidate *Candidate
	Attempts  int
	Cached    bool
	Duration  time.Duration
}

func CandidatesFromConfig(cfg config.AIConfig) []Candidate {
	candidates := make([]Candidate, 0, len(cfg.Candidates))
	for _, c := range cfg.Candidates {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = cfg.DefaultTimeout
		}
		backend := c.Backend
		if backend == "" {
			backend = cfg.DefaultBackend()
		}
		candidates = append(candidates, Candidate{
			Backend:   backend,
			Model:     c.Model,
			Provider:  c.Provider,
			Timeout:   timeout,
			Throttled: c.Throttled,
		})
	}
	return candidates
}
