// Package display renders synchronized diagnostics for the CLI. It is a
// presentation consumer of the diagnostic index, kept behind the
// diagnostics.Sink interface so embedding hosts can substitute their own.
package display

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/standardbeagle/sarifnav/internal/diagnostics"
	"github.com/standardbeagle/sarifnav/pkg/pathutil"
)

// FormatterOptions controls diagnostics formatting
type FormatterOptions struct {
	Format     string // "text", "json", "compact"
	ShowRules  bool   // Show rule ids after each message
	RelativeTo string // When set, display paths relative to this directory
}

// Formatter accumulates published diagnostics and renders them. It
// implements diagnostics.Sink.
type Formatter struct {
	options FormatterOptions

	mu    sync.Mutex
	files map[string][]diagnostics.Entry
}

// NewFormatter creates a formatter sink
func NewFormatter(options FormatterOptions) *Formatter {
	return &Formatter{
		options: options,
		files:   make(map[string][]diagnostics.Entry),
	}
}

// Publish implements diagnostics.Sink. An empty entry list clears the file.
func (f *Formatter) Publish(path string, entries []diagnostics.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(entries) == 0 {
		delete(f.files, path)
		return
	}
	f.files[path] = entries
}

// Format renders everything published so far
func (f *Formatter) Format() string {
	f.mu.Lock()
	paths := make([]string, 0, len(f.files))
	for path := range f.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	snapshot := make(map[string][]diagnostics.Entry, len(f.files))
	for path, entries := range f.files {
		snapshot[path] = entries
	}
	f.mu.Unlock()

	switch f.options.Format {
	case "json":
		return f.formatJSON(paths, snapshot)
	case "compact":
		return f.formatCompact(paths, snapshot)
	default:
		return f.formatText(paths, snapshot)
	}
}

func (f *Formatter) displayPath(path string) string {
	if f.options.RelativeTo == "" {
		return path
	}
	return pathutil.ToRelative(path, f.options.RelativeTo)
}

// formatText groups entries under a per-file header
func (f *Formatter) formatText(paths []string, files map[string][]diagnostics.Entry) string {
	var b strings.Builder
	for _, path := range paths {
		entries := files[path]
		fmt.Fprintf(&b, "%s (%d)\n", f.displayPath(path), countResults(entries))
		for _, e := range entries {
			if e.Truncated > 0 {
				fmt.Fprintf(&b, "  ... %s\n", e.Message)
				continue
			}
			fmt.Fprintf(&b, "  %d:%d %s %s",
				e.Range.Start.Line+1, e.Range.Start.Column+1, e.Severity, e.Message)
			if f.options.ShowRules && e.Result != nil && e.Result.Rule.ID != "" {
				fmt.Fprintf(&b, " [%s]", e.Result.Rule.ID)
			}
			b.WriteByte('\n')
			if e.Result != nil && !e.Result.Primary.Mapped {
				b.WriteString("      (file not found locally)\n")
			}
		}
	}
	return b.String()
}

// formatCompact emits one line per entry, grep-style
func (f *Formatter) formatCompact(paths []string, files map[string][]diagnostics.Entry) string {
	var b strings.Builder
	for _, path := range paths {
		for _, e := range files[path] {
			if e.Truncated > 0 {
				fmt.Fprintf(&b, "%s: %s\n", f.displayPath(path), e.Message)
				continue
			}
			fmt.Fprintf(&b, "%s:%d:%d: %s: %s\n",
				f.displayPath(path), e.Range.Start.Line+1, e.Range.Start.Column+1,
				e.Severity, e.Message)
		}
	}
	return b.String()
}

type jsonEntry struct {
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	RuleID    string `json:"ruleId,omitempty"`
	Mapped    bool   `json:"mapped"`
	Truncated int    `json:"truncated,omitempty"`
}

func (f *Formatter) formatJSON(paths []string, files map[string][]diagnostics.Entry) string {
	out := make(map[string][]jsonEntry, len(files))
	for _, path := range paths {
		entries := files[path]
		rows := make([]jsonEntry, 0, len(entries))
		for _, e := range entries {
			row := jsonEntry{
				Line:      e.Range.Start.Line + 1,
				Column:    e.Range.Start.Column + 1,
				Severity:  e.Severity.String(),
				Message:   e.Message,
				Truncated: e.Truncated,
			}
			if e.Result != nil {
				row.RuleID = e.Result.Rule.ID
				row.Mapped = e.Result.Primary.Mapped
			}
			rows = append(rows, row)
		}
		out[f.displayPath(path)] = rows
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Sprintf("JSON formatting error: %v", err)
	}
	return string(data)
}

func countResults(entries []diagnostics.Entry) int {
	n := 0
	for _, e := range entries {
		if e.Truncated == 0 {
			n++
		} else {
			n += e.Truncated
		}
	}
	return n
}
