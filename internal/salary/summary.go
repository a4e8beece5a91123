// Package salary computes payroll summaries from the attendance log. A day
// counts as worked when it has at least one accepted entry, and the daily
// rate comes from the rule matching the worker's role and dominant site.
package salary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
)

// DefaultDailyRate applies when no salary rule matches a worker.
const DefaultDailyRate = 30

// Line is one worker's pay for the period.
type Line struct {
	WorkerID    int64
	Name        string
	Surname     string
	Role        string
	Site        string // dominant site over the period
	DaysPresent int
	DailyRate   float64
	Amount      float64
}

// Summary is the payroll for one period.
type Summary struct {
	From  time.Time
	To    time.Time
	Lines []Line
	Total float64
}

// Calculator builds summaries from the stores.
type Calculator struct {
	workers database.WorkerStore
	events  database.EventStore
	rules   database.SalaryRuleStore
}

func NewCalculator(workers database.WorkerStore, events database.EventStore, rules database.SalaryRuleStore) *Calculator {
	return &Calculator{workers: workers, events: events, rules: rules}
}

func ruleKey(site, role string) string {
	return strings.ToLower(strings.TrimSpace(site)) + "|" + strings.ToLower(strings.TrimSpace(role))
}

// Compute builds the summary for [from, to]. Workers without an accepted
// entry in the period are omitted.
func (c *Calculator) Compute(ctx context.Context, from, to time.Time) (*Summary, error) {
	days, err := c.events.DaysPresent(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("could not count days present: %w", err)
	}
	sites, err := c.events.DominantSites(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("could not resolve dominant sites: %w", err)
	}
	rules, err := c.rules.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load salary rules: %w", err)
	}

	rates := make(map[string]float64, len(rules))
	for _, r := range rules {
		rates[ruleKey(r.Site, r.Role)] = r.DailyRate
	}

	summary := &Summary{From: from, To: to}
	for workerID, present := range days {
		w, err := c.workers.Get(ctx, workerID)
		if errors.Is(err, database.ErrNotFound) {
			// Worker removed after the events were logged.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not load worker %d: %w", workerID, err)
		}

		site := sites[workerID]
		rate, ok := rates[ruleKey(site, w.Role)]
		if !ok {
			rate = DefaultDailyRate
		}

		line := Line{
			WorkerID:    workerID,
			Name:        w.Name,
			Surname:     w.Surname,
			Role:        w.Role,
			Site:        site,
			DaysPresent: present,
			DailyRate:   rate,
			Amount:      float64(present) * rate,
		}
		summary.Lines = append(summary.Lines, line)
		summary.Total += line.Amount
	}

	sort.Slice(summary.Lines, func(i, j int) bool {
		a, b := summary.Lines[i], summary.Lines[j]
		if a.Surname != b.Surname {
			return a.Surname < b.Surname
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.WorkerID < b.WorkerID
	})

	return summary, nil
}
