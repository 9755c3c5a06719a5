package display

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sarifnav/internal/diagnostics"
	"github.com/standardbeagle/sarifnav/internal/types"
)

func entry(line, col int, sev types.Severity, msg, ruleID string, mapped bool) diagnostics.Entry {
	rec := &types.NormalizedResult{
		Message: msg,
		Rule:    types.RuleInfo{ID: ruleID, Severity: sev},
		Primary: types.NewResolvedLocation("/src/a.c", types.NewTextRange(line, col, line, col+1), mapped),
	}
	return diagnostics.Entry{
		Message:  msg,
		Severity: sev,
		Range:    rec.Primary.Range,
		Result:   rec,
	}
}

func markerEntry(n int) diagnostics.Entry {
	return diagnostics.Entry{
		Message:   fmt.Sprintf("%d results truncated", n),
		Severity:  types.SeverityNote,
		Range:     types.DefaultRange(),
		Truncated: n,
	}
}

func TestFormatText(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "text"})
	f.Publish("/src/a.c", []diagnostics.Entry{
		entry(9, 4, types.SeverityError, "null deref", "R1", true),
		entry(20, 0, types.SeverityWarning, "unused value", "R2", true),
	})

	out := f.Format()
	assert.Contains(t, out, "/src/a.c (2)")
	assert.Contains(t, out, "10:5 error null deref")
	assert.Contains(t, out, "21:1 warning unused value")
	assert.NotContains(t, out, "[R1]") // rules off by default
}

func TestFormatText_ShowRules(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "text", ShowRules: true})
	f.Publish("/src/a.c", []diagnostics.Entry{
		entry(0, 0, types.SeverityError, "null deref", "R1", true),
	})
	assert.Contains(t, f.Format(), "[R1]")
}

func TestFormatText_UnmappedAnnotation(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "text"})
	f.Publish("/gone/a.c", []diagnostics.Entry{
		entry(0, 0, types.SeverityWarning, "stale finding", "R1", false),
	})
	assert.Contains(t, f.Format(), "(file not found locally)")
}

func TestFormatText_TruncationMarker(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "text"})
	f.Publish("/src/a.c", []diagnostics.Entry{
		markerEntry(3),
		entry(0, 0, types.SeverityError, "e", "R1", true),
	})

	out := f.Format()
	assert.Contains(t, out, "... 3 results truncated")
	// The header count includes hidden results.
	assert.Contains(t, out, "/src/a.c (4)")
}

func TestFormatCompact(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "compact"})
	f.Publish("/src/a.c", []diagnostics.Entry{
		entry(9, 4, types.SeverityError, "null deref", "R1", true),
	})

	out := f.Format()
	assert.Equal(t, "/src/a.c:10:5: error: null deref\n", out)
}

func TestFormatJSON(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "json"})
	f.Publish("/src/a.c", []diagnostics.Entry{
		entry(9, 4, types.SeverityError, "null deref", "R1", true),
	})

	var parsed map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.Format()), &parsed))
	rows := parsed["/src/a.c"]
	require.Len(t, rows, 1)
	assert.Equal(t, float64(10), rows[0]["line"])
	assert.Equal(t, "error", rows[0]["severity"])
	assert.Equal(t, "R1", rows[0]["ruleId"])
	assert.Equal(t, true, rows[0]["mapped"])
}

func TestPublish_EmptyClearsFile(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "text"})
	f.Publish("/src/a.c", []diagnostics.Entry{
		entry(0, 0, types.SeverityError, "e", "R1", true),
	})
	f.Publish("/src/a.c", nil)
	assert.Empty(t, f.Format())
}

func TestFormat_SortsFiles(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "text"})
	f.Publish("/src/z.c", []diagnostics.Entry{entry(0, 0, types.SeverityError, "z", "R1", true)})
	f.Publish("/src/a.c", []diagnostics.Entry{entry(0, 0, types.SeverityError, "a", "R1", true)})

	out := f.Format()
	assert.Less(t, strings.Index(out, "/src/a.c"), strings.Index(out, "/src/z.c"))
}
