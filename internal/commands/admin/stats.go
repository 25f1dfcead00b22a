package admin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/muratoffalex/errorer/internal/ai"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/markdown"
	"github.com/muratoffalex/errorer/internal/telegram"
)

const (
	maxGroupsListed  = 50
	speedTestTimeout = time.Minute
)

func (c *Command) showStats(ctx context.Context, query *telegram.CallbackQuery) error {
	basic, err := c.DB.GetBasicStats(ctx)
	if err != nil {
		return err
	}
	global, err := c.DB.GetGlobalStats(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(c.L("admin.stats", map[string]any{
		"Users":        basic.TotalUsers,
		"Active":       basic.ActiveUsers,
		"Blocked":      basic.BlockedUsers,
		"Groups":       basic.TotalGroups,
		"GroupMembers": basic.TotalGroupMembers,
		"Requests":     global[database.StatTotalRequests],
		"Text":         global[database.StatTotalPrefix+database.RequestKindText],
	}))
	if backends := FormatCandidateStats(c.Generator.Stats()); backends != "" {
		b.WriteString("\n\n")
		b.WriteString(c.L("admin.backendStats", nil))
		b.WriteString("\n")
		b.WriteString(backends)
	}

	markup := c.back(CallbackMenu)
	return c.ShowMenu(query, b.String(), &markup)
}

// FormatCandidateStats renders one line per candidate that has been tried.
func FormatCandidateStats(stats []ai.CandidateStats) string {
	var lines []string
	for _, s := range stats {
		if s.Attempts == 0 {
			continue
		}
		line := fmt.Sprintf("<code>%s</code> %d/%d ok, %.0f%%, avg %s",
			markdown.EscapeHTML(s.Candidate.String()), s.Successes, s.Attempts,
			s.SuccessRate()*100, s.AverageLatency().Round(time.Millisecond))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (c *Command) showGroups(ctx context.Context, query *telegram.CallbackQuery) error {
	groups, err := c.DB.GetAllGroupChats(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(c.L("admin.groupList", map[string]any{"Count": len(groups)}))
	for i, g := range groups {
		if i == maxGroupsListed {
			fmt.Fprintf(&b, "\n… +%d", len(groups)-maxGroupsListed)
			break
		}
		fmt.Fprintf(&b, "\n%d. <b>%s</b> (<code>%d</code>) 👥 %d",
			i+1, markdown.EscapeHTML(g.Title), g.ChatID, g.MemberCount)
	}

	markup := c.back(CallbackMenu)
	return c.ShowMenu(query, b.String(), &markup)
}

func (c *Command) runSpeedTest(ctx context.Context, query *telegram.CallbackQuery) error {
	ctx, cancel := context.WithTimeout(ctx, speedTestTimeout)
	defer cancel()

	results := c.Generator.SpeedTest(ctx)
	text := c.L("admin.speedTest", nil) + "\n" + FormatSpeedResults(results)
	markup := c.back(CallbackMenu)
	return c.ShowMenu(query, text, &markup)
}

// FormatSpeedResults lists working candidates fastest first, then failures.
func FormatSpeedResults(results []ai.SpeedResult) string {
	sorted := append([]ai.SpeedResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OK() != sorted[j].OK() {
			return sorted[i].OK()
		}
		return sorted[i].Latency < sorted[j].Latency
	})

	var b strings.Builder
	for _, r := range sorted {
		name := markdown.EscapeHTML(r.Candidate.String())
		if r.OK() {
			fmt.Fprintf(&b, "\n✅ <code>%s</code> %s", name, r.Latency.Round(time.Millisecond))
		} else {
			fmt.Fprintf(&b, "\n❌ <code>%s</code> %s", name, markdown.EscapeHTML(string(ai.ClassifyError(r.Err))))
		}
	}
	return strings.TrimPrefix(b.String(), "\n")
}
