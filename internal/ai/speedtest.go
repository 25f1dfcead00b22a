package ai

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const speedTestPrompt = "Hello"

type SpeedResult struct {
	Candidate Candidate
	Latency   time.Duration
	Text      string
	Err       error
}

func (r SpeedResult) OK() bool {
	return r.Err == nil
}

// SpeedTest pings the head of the candidate list concurrently. Working
// candidates come first, fastest first.
func (g *Generator) SpeedTest(ctx context.Context) []SpeedResult {
	n := g.opts.SpeedTestSize
	if n <= 0 || n > len(g.candidates) {
		n = len(g.candidates)
	}
	candidates := g.candidates[:n]
	results := make([]SpeedResult, n)
	log := g.logger.WithField("speed_test", true)

	eg, egCtx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		eg.Go(func() error {
			start := time.Now()
			text, err := g.try(egCtx, c, CompletionRequest{Prompt: speedTestPrompt}, 1, candidateLog(log, c, i+1))
			results[i] = SpeedResult{
				Candidate: c,
				Latency:   time.Since(start),
				Text:      text,
				Err:       err,
			}
			return nil
		})
	}
	_ = eg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].OK() != results[j].OK() {
			return results[i].OK()
		}
		return results[i].OK() && results[i].Latency < results[j].Latency
	})
	return results
}
