package ai

import (
	"sort"
	"time"
)

type CandidateStats struct {
	Candidate    Candidate
	Attempts     int
	Successes    int
	Failures     int
	TotalLatency time.Duration
	LastError    string
}

func (s CandidateStats) AverageLatency() time.Duration {
	if s.Attempts == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.Attempts)
}

func (s CandidateStats) SuccessRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Attempts)
}

func (g *Generator) record(c Candidate, latency time.Duration, err error) {
	g.statsMu.Lock()
	defer g.statsMu.Unlock()

	key := c.String()
	st, ok := g.stats[key]
	if !ok {
		st = &CandidateStats{Candidate: c}
		g.stats[key] = st
	}
	st.Attempts++
	st.TotalLatency += latency
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	} else {
		st.Successes++
	}
}

// Stats returns a snapshot ordered by successes, then by average latency.
func (g *Generator) Stats() []CandidateStats {
	g.statsMu.Lock()
	out := make([]CandidateStats, 0, len(g.stats))
	for _, st := range g.stats {
		out = append(out, *st)
	}
	g.statsMu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Successes != out[j].Successes {
			return out[i].Successes > out[j].Successes
		}
		if ai, aj := out[i].AverageLatency(), out[j].AverageLatency(); ai != aj {
			return ai < aj
		}
		return out[i].Candidate.String() < out[j].Candidate.String()
	})
	return out
}
