// Package region converts SARIF region descriptors into zero-based text
// ranges.
//
// SARIF regions are heterogeneous: producing tools emit anywhere between a
// bare startLine and a fully specified line/column box, or a char-offset
// span with no line information at all. Resolve applies one fixed precedence
// order over those shapes so the rest of the system only ever sees an exact
// TextRange. Resolution is a pure function: no I/O, no state, deterministic
// and idempotent.
package region

import (
	"fmt"

	"github.com/standardbeagle/sarifnav/internal/debug"
	naverrors "github.com/standardbeagle/sarifnav/internal/errors"
	"github.com/standardbeagle/sarifnav/internal/sarif"
	"github.com/standardbeagle/sarifnav/internal/types"
)

// Resolve converts a region descriptor to a TextRange.
//
// Precedence, first match wins:
//  1. nil region → default range (0,0)-(0,1).
//  2. startLine with nothing else → (line-1,0)-(line,0), extends to line end.
//  3. startLine+startColumn → explicit length, then endColumn/endLine, then
//     snippet-derived length, then the open-ended extension of rule 2.
//  4. char-offset span with no line fields → pseudo single-line range.
//
// Lines and columns arrive 1-based and leave 0-based. Malformed field
// combinations degrade to the default range; they never fail the result.
func Resolve(r *sarif.Region) types.TextRange {
	if r == nil {
		return types.DefaultRange()
	}

	if r.StartLine == nil {
		return resolveCharOffset(r)
	}

	startLine := *r.StartLine - 1
	if startLine < 0 {
		// 1-based field holding 0 or less: malformed, degrade.
		logMalformed("startLine", *r.StartLine)
		return types.DefaultRange()
	}

	hasDetail := r.StartColumn != nil || r.EndLine != nil || r.EndColumn != nil ||
		r.Length != nil || r.Snippet != nil
	if !hasDetail {
		return lineSpan(startLine)
	}

	// startColumn defaults to 1 when end information is present without it.
	startCol := 0
	if r.StartColumn != nil {
		startCol = *r.StartColumn - 1
		if startCol < 0 {
			logMalformed("startColumn", *r.StartColumn)
			return types.DefaultRange()
		}
	}

	switch {
	case r.Length != nil:
		return types.NewTextRange(startLine, startCol, startLine, startCol+*r.Length)

	case r.EndColumn != nil:
		endLine := startLine
		if r.EndLine != nil {
			endLine = *r.EndLine - 1
		}
		return types.NewTextRange(startLine, startCol, endLine, *r.EndColumn-1)

	case r.EndLine != nil:
		// An end line with no end column extends to the start of the
		// following line.
		rng := types.NewTextRange(startLine, startCol, *r.EndLine, 0)
		rng.ExtendsToLineEnd = true
		return rng

	case r.Snippet != nil && r.Snippet.Text != "":
		// Approximate: the snippet's first line gives the span width.
		width := snippetWidth(r.Snippet.Text)
		return types.NewTextRange(startLine, startCol, startLine, startCol+width)

	default:
		rng := types.NewTextRange(startLine, startCol, startLine+1, 0)
		rng.ExtendsToLineEnd = true
		return rng
	}
}

// lineSpan is the rule-2 shape: the whole of one line, expressed as a span
// reaching the start of the next line.
func lineSpan(startLine int) types.TextRange {
	rng := types.NewTextRange(startLine, 0, startLine+1, 0)
	rng.ExtendsToLineEnd = true
	return rng
}

// resolveCharOffset handles regions carrying only charOffset/charLength.
// Char offsets are 0-based in SARIF. Without file content there is no way
// to recover the real line, so the span is presented on a pseudo line with
// the offset as its column.
func resolveCharOffset(r *sarif.Region) types.TextRange {
	if r.CharOffset == nil {
		return types.DefaultRange()
	}
	if *r.CharOffset < 0 {
		logMalformed("charOffset", *r.CharOffset)
		return types.DefaultRange()
	}
	col := *r.CharOffset
	length := 0
	if r.CharLength != nil && *r.CharLength > 0 {
		length = *r.CharLength
	}
	return types.NewTextRange(0, col, 0, col+length)
}

// logMalformed records a degraded region field for debug sessions.
func logMalformed(field string, value int) {
	if debug.Enabled() {
		debug.Printf("region: %v", naverrors.NewRegionError(fmt.Sprintf("%s=%d", field, value)))
	}
}

// snippetWidth measures the first line of a snippet.
func snippetWidth(text string) int {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' || text[i] == '\r' {
			return i
		}
	}
	return len(text)
}
