package worker

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kartfirsat/campaignworker/helpers"
	"github.com/kartfirsat/campaignworker/internal/crawler"
)

// Process exit codes
const (
	ExitOK          = 0
	ExitErrors      = 1
	ExitInterrupted = 130
)

// excerptsPerSource is how many error details the printed report shows per source
const excerptsPerSource = 3

// Report aggregates the summaries of one run, in configured source order
type Report struct {
	RunID       string
	Summaries   []crawler.Summary
	Interrupted bool
	Elapsed     time.Duration
}

// Totals sums the per-source counters
func (r Report) Totals() crawler.Summary {
	total := crawler.Summary{Source: "TOTAL", Name: "TOTAL", Elapsed: r.Elapsed}
	for _, s := range r.Summaries {
		total.Scraped += s.Scraped
		total.Saved += s.Saved
		total.Inserted += s.Inserted
		total.Updated += s.Updated
		total.Deactivated += s.Deactivated
		total.Errors += s.Errors
	}
	return total
}

// ExitCode is 130 for an interrupted run, 1 when any source reported errors
func (r Report) ExitCode() int {
	switch {
	case r.Interrupted:
		return ExitInterrupted
	case r.Totals().Errors > 0:
		return ExitErrors
	default:
		return ExitOK
	}
}

// Print writes one line per source, its first error excerpts and a TOTAL line
func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "%-16s | %7s | %5s | %6s | %s\n", "source", "scraped", "saved", "secs", "status")
	fmt.Fprintln(w, strings.Repeat("-", 56))
	for _, s := range r.Summaries {
		name := s.Name
		if name == "" {
			name = s.Source
		}
		fmt.Fprintf(w, "%-16s | %7d | %5d | %6.1f | %s\n", name, s.Scraped, s.Saved, s.Elapsed.Seconds(), status(s))
		for i, detail := range s.ErrorDetails {
			if i == excerptsPerSource {
				break
			}
			fmt.Fprintf(w, "    - %s\n", helpers.Truncate(detail, 160))
		}
	}
	fmt.Fprintln(w, strings.Repeat("-", 56))

	total := r.Totals()
	fmt.Fprintf(w, "%-16s | %7d | %5d | %6.1f | %s\n", "TOTAL", total.Scraped, total.Saved, total.Elapsed.Seconds(), status(total))
	if r.Interrupted {
		fmt.Fprintln(w, "run interrupted")
	}
}

func status(s crawler.Summary) string {
	if s.OK() {
		return "ok"
	}
	return fmt.Sprintf("%d errors", s.Errors)
}
