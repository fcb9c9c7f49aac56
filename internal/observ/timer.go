// Package observ aggregates phase timings across concurrently checked
// documents.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Timer sums durations per phase name. Phases are reported in the order
// they were first seen. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	order  []string
	totals map[string]time.Duration
	counts map[string]int
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer {
	return &Timer{totals: make(map[string]time.Duration), counts: make(map[string]int)}
}

// Begin starts timing name; call the returned func to record it. A nil
// Timer records nothing.
func (t *Timer) Begin(name string) func() {
	if t == nil {
		return func() {}
	}
	start := time.Now()
	return func() { t.Add(name, time.Since(start)) }
}

// Add records one run of name.
func (t *Timer) Add(name string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.totals[name]; !ok {
		t.order = append(t.order, name)
	}
	t.totals[name] += d
	t.counts[name]++
}

// PhaseReport is one phase's aggregate.
type PhaseReport struct {
	Name       string  `json:"name"`
	Runs       int     `json:"runs"`
	DurationMS float64 `json:"duration_ms"`
}

// Report is the serializable form of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var report Report
	var total time.Duration
	for _, name := range t.order {
		d := t.totals[name]
		total += d
		report.Phases = append(report.Phases, PhaseReport{Name: name, Runs: t.counts[name], DurationMS: durationToMillis(d)})
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-12s %9.2f ms  (%d runs)\n", p.Name, p.DurationMS, p.Runs)
	}
	fmt.Fprintf(&b, "  %-12s %9.2f ms\n", "total", report.TotalMS)
	return b.String()
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
