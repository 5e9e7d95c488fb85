package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pagemeta/pagemeta/internal/core"
	"github.com/pagemeta/pagemeta/internal/core/store"
	"github.com/pagemeta/pagemeta/internal/ratelimit"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatResult renders a generation result as a table followed by the
// JSON-LD block, which does not fit tabular form.
func (f *TableFormatter) FormatResult(result *core.GenerateResult) (string, error) {
	if result == nil || result.Metadata == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Field", "Value"})

	meta := result.Metadata
	t.AppendRow(table.Row{"Title", meta.Title})
	t.AppendRow(table.Row{"Description", meta.Description})
	if len(meta.Keywords) > 0 {
		t.AppendRow(table.Row{"Keywords", strings.Join(meta.Keywords, ", ")})
	}
	if meta.Canonical != "" {
		t.AppendRow(table.Row{"Canonical", meta.Canonical})
	}
	for _, key := range sortedKeys(meta.OpenGraph) {
		t.AppendRow(table.Row{key, meta.OpenGraph[key]})
	}
	for _, key := range sortedKeys(meta.TwitterCard) {
		t.AppendRow(table.Row{key, meta.TwitterCard[key]})
	}

	source := result.Provider
	if source == "" {
		source = "heuristic"
	}
	if result.Cached {
		source += " (cached)"
	}
	t.AppendFooter(table.Row{"Source", source})

	rendered := t.Render()
	if len(meta.JSONLD) > 0 {
		rendered += "\n\nJSON-LD:\n" + string(meta.JSONLD)
	}
	return rendered, nil
}

// FormatRateLimits renders rate limiter bucket state as a table.
func FormatRateLimits(buckets []ratelimit.BucketStatus) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Provider", "Capacity", "Refill/s", "Available", "Next Token"})

	for _, b := range buckets {
		t.AppendRow(table.Row{
			b.Provider,
			b.Capacity,
			fmt.Sprintf("%.2f", b.RefillRate),
			fmt.Sprintf("%.2f", b.Available),
			waitLabel(b.WaitTime),
		})
	}

	if len(buckets) == 0 {
		t.AppendFooter(table.Row{"", "", "", "no active buckets", ""})
	}
	return t.Render()
}

// FormatHistory renders generation history entries as a table.
func FormatHistory(entries []store.HistoryEntry) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"When", "URL", "Provider", "Title", "Cached"})

	for _, e := range entries {
		provider := e.Provider
		if provider == "" {
			provider = "-"
		}
		cached := ""
		if e.Cached {
			cached = "yes"
		}
		t.AppendRow(table.Row{
			e.CreatedAt.Format(time.RFC3339),
			e.URL,
			provider,
			e.Title,
			cached,
		})
	}
	return t.Render()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func waitLabel(wait time.Duration) string {
	switch {
	case wait <= 0:
		return "ready"
	case wait == ratelimit.InfDuration:
		return "never"
	default:
		return wait.Round(time.Millisecond).String()
	}
}
