package region

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/sarifnav/internal/sarif"
	"github.com/standardbeagle/sarifnav/internal/types"
)

func intp(v int) *int { return &v }

func TestResolve_NilRegion(t *testing.T) {
	rng := Resolve(nil)
	assert.Equal(t, types.DefaultRange(), rng)
	assert.False(t, rng.ExtendsToLineEnd)
}

func TestResolve_StartLineOnly(t *testing.T) {
	// A bare start line spans to the start of the next line and is marked
	// open-ended.
	cases := []struct {
		line      int
		wantStart types.Position
		wantEnd   types.Position
	}{
		{1, types.Position{Line: 0, Column: 0}, types.Position{Line: 1, Column: 0}},
		{10, types.Position{Line: 9, Column: 0}, types.Position{Line: 10, Column: 0}},
		{500, types.Position{Line: 499, Column: 0}, types.Position{Line: 500, Column: 0}},
	}
	for _, tc := range cases {
		rng := Resolve(&sarif.Region{StartLine: intp(tc.line)})
		assert.Equal(t, tc.wantStart, rng.Start, "startLine=%d", tc.line)
		assert.Equal(t, tc.wantEnd, rng.End, "startLine=%d", tc.line)
		assert.True(t, rng.ExtendsToLineEnd, "startLine=%d", tc.line)
	}
}

func TestResolve_FullBox(t *testing.T) {
	rng := Resolve(&sarif.Region{
		StartLine:   intp(1),
		StartColumn: intp(2),
		EndLine:     intp(1),
		EndColumn:   intp(4),
	})
	assert.Equal(t, types.NewTextRange(0, 1, 0, 3), rng)
	assert.False(t, rng.ExtendsToLineEnd)
}

func TestResolve_EndColumnWithoutEndLine(t *testing.T) {
	// endLine defaults to startLine.
	rng := Resolve(&sarif.Region{
		StartLine:   intp(3),
		StartColumn: intp(5),
		EndColumn:   intp(9),
	})
	assert.Equal(t, types.NewTextRange(2, 4, 2, 8), rng)
	assert.False(t, rng.ExtendsToLineEnd)
}

func TestResolve_LengthTakesPrecedenceOverEndColumn(t *testing.T) {
	rng := Resolve(&sarif.Region{
		StartLine:   intp(2),
		StartColumn: intp(3),
		Length:      intp(4),
		EndColumn:   intp(100),
	})
	// length wins: columns 2..6 on line 1.
	assert.Equal(t, types.NewTextRange(1, 2, 1, 6), rng)
}

func TestResolve_SnippetDerivedWidth(t *testing.T) {
	rng := Resolve(&sarif.Region{
		StartLine:   intp(1),
		StartColumn: intp(1),
		Snippet:     &sarif.ArtifactContent{Text: "foo()"},
	})
	assert.Equal(t, types.NewTextRange(0, 0, 0, 5), rng)
	assert.False(t, rng.ExtendsToLineEnd)
}

func TestResolve_SnippetMultilineUsesFirstLine(t *testing.T) {
	rng := Resolve(&sarif.Region{
		StartLine:   intp(1),
		StartColumn: intp(1),
		Snippet:     &sarif.ArtifactContent{Text: "ab\ncdef"},
	})
	assert.Equal(t, 2, rng.End.Column)
}

func TestResolve_StartColumnNoEndInfo(t *testing.T) {
	// No length, end fields, or snippet: falls back to the open-ended
	// line extension.
	rng := Resolve(&sarif.Region{StartLine: intp(4), StartColumn: intp(7)})
	assert.Equal(t, types.Position{Line: 3, Column: 6}, rng.Start)
	assert.Equal(t, types.Position{Line: 4, Column: 0}, rng.End)
	assert.True(t, rng.ExtendsToLineEnd)
}

func TestResolve_CharOffset(t *testing.T) {
	rng := Resolve(&sarif.Region{CharOffset: intp(14), CharLength: intp(3)})
	assert.Equal(t, types.NewTextRange(0, 14, 0, 17), rng)
	assert.False(t, rng.ExtendsToLineEnd)

	// Missing charLength means a zero-width span.
	rng = Resolve(&sarif.Region{CharOffset: intp(6)})
	assert.Equal(t, types.NewTextRange(0, 6, 0, 6), rng)
}

func TestResolve_MalformedDegradesToDefault(t *testing.T) {
	cases := []*sarif.Region{
		{StartLine: intp(0)},                      // 1-based line of 0
		{StartLine: intp(-2)},                     // negative line
		{StartLine: intp(1), StartColumn: intp(0)}, // 1-based column of 0
		{CharOffset: intp(-1)},                    // negative offset
		{},                                        // nothing usable
	}
	for i, reg := range cases {
		assert.Equal(t, types.DefaultRange(), Resolve(reg), "case %d", i)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	reg := &sarif.Region{StartLine: intp(7), StartColumn: intp(2), Length: intp(5)}
	first := Resolve(reg)
	second := Resolve(reg)
	assert.Equal(t, first, second)
}

func TestResolve_EndBeforeStartNormalized(t *testing.T) {
	rng := Resolve(&sarif.Region{
		StartLine:   intp(5),
		StartColumn: intp(10),
		EndLine:     intp(5),
		EndColumn:   intp(2),
	})
	assert.False(t, rng.End.Before(rng.Start))
}
