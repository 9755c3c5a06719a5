// Package types defines the normalized result model shared across sarifnav.
//
// Architecture Pattern:
// Raw SARIF structures (internal/sarif) are converted exactly once into the
// types in this package. Everything downstream (the resolver, the code-flow
// builder, the diagnostic index, and display formatters) operates on these
// normalized types and never touches raw log JSON again.
package types

import "path/filepath"

// Position is a zero-based line/column pair.
type Position struct {
	Line   int
	Column int
}

// Before reports whether p orders strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// TextRange is a zero-based text span within a file. ExtendsToLineEnd marks
// open-ended regions (a start line with no explicit end), which display
// layers render as "to end of line".
//
// Invariant: End never orders before Start. Constructors normalize rather
// than reject, so a TextRange is always safe to hand to a display surface.
type TextRange struct {
	Start            Position
	End              Position
	ExtendsToLineEnd bool
}

// NewTextRange builds a TextRange, swapping the endpoints when the caller
// supplied them out of order.
func NewTextRange(startLine, startCol, endLine, endCol int) TextRange {
	start := Position{Line: startLine, Column: startCol}
	end := Position{Line: endLine, Column: endCol}
	if end.Before(start) {
		start, end = end, start
	}
	return TextRange{Start: start, End: end}
}

// DefaultRange is the range used when a result carries no usable region:
// the first character of the file.
func DefaultRange() TextRange {
	return NewTextRange(0, 0, 0, 1)
}

// ResolvedLocation is an artifact location after file resolution.
// When Mapped is false, Path holds the originally logged path so the entry
// stays navigable in display surfaces.
type ResolvedLocation struct {
	// Path is the local filesystem path when Mapped, otherwise the logged
	// URI/path as-is.
	Path   string
	Range  TextRange
	Mapped bool

	// DisplayName is the short name shown in lists (final path segment).
	DisplayName string

	// LogicalNames carries fully-qualified logical location names from the
	// log (function, namespace), outermost first.
	LogicalNames []string
}

// NewResolvedLocation fills DisplayName from the path's final segment.
func NewResolvedLocation(path string, r TextRange, mapped bool) ResolvedLocation {
	return ResolvedLocation{
		Path:        path,
		Range:       r,
		Mapped:      mapped,
		DisplayName: filepath.Base(path),
	}
}

// StepIcon classifies a trace step for display annotation.
type StepIcon int

const (
	IconNone StepIcon = iota
	// IconCall marks a parent step whose scope is later returned from.
	IconCall
	// IconCallNoReturn marks a parent step with no matching return.
	IconCallNoReturn
	// IconReturn marks a last-child step with a matching earlier call.
	IconReturn
	// IconReturnNoCall marks a last-child step with no matching call.
	IconReturnNoCall
)

// UnknownNesting is the sentinel stored on trace steps whose log entry
// carried no nesting level. Classification happens before this substitution.
const UnknownNesting = -1

// StepImportance mirrors SARIF threadFlowLocation.importance.
type StepImportance int

const (
	ImportanceImportant StepImportance = iota
	ImportanceEssential
	ImportanceUnimportant
)

// TraceStep is one classified element of a thread flow.
type TraceStep struct {
	Location     ResolvedLocation
	Message      string
	Importance   StepImportance
	NestingLevel int // UnknownNesting when the log omitted it
	IsParent     bool
	IsLastChild  bool
	Icon         StepIcon
	// SequenceID is the step's ordinal within its thread flow.
	SequenceID int
}

// ThreadFlow is an ordered trace with a precomputed indent for its first
// step, keeping mixed known/unknown-depth flows visually aligned.
type ThreadFlow struct {
	Steps           []TraceStep
	FirstStepIndent int
}

// CodeFlow groups the thread flows of a single result.
type CodeFlow struct {
	ThreadFlows []ThreadFlow
}

// Severity is the normalized result level.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
	SeverityNone
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "none"
	}
}

// RuleInfo is the rule metadata attached to a normalized result.
type RuleInfo struct {
	ID       string
	Name     string
	HelpURI  string
	Severity Severity
	Rank     float64 // -1 when the log carries no rank
}

// StackColumn identifies one display column of a stack-trace table.
type StackColumn int

const (
	ColumnFile StackColumn = iota
	ColumnMessage
	ColumnParameters
	ColumnThreadID
	ColumnLocation
)

// StackColumnMask records which stack columns have content in at least one
// frame, letting the presentation layer drop always-empty columns.
type StackColumnMask uint8

// Set marks col as non-empty.
func (m *StackColumnMask) Set(col StackColumn) { *m |= 1 << uint(col) }

// Has reports whether any frame populated col.
func (m StackColumnMask) Has(col StackColumn) bool { return m&(1<<uint(col)) != 0 }

// StackFrameInfo is one resolved frame of a stack trace.
type StackFrameInfo struct {
	Location   ResolvedLocation
	Message    string
	Parameters []string
	ThreadID   int
}

// StackInfo is a resolved stack trace plus its column-presence mask.
type StackInfo struct {
	Message string
	Frames  []StackFrameInfo
	Columns StackColumnMask
}

// AttachmentInfo is a resolved attachment reference.
type AttachmentInfo struct {
	Description string
	Location    ResolvedLocation
	// Regions are highlighted spans inside the attachment.
	Regions []ResolvedLocation
}

// FixInfo is a resolved proposed fix: a description plus edit locations.
type FixInfo struct {
	Description string
	Edits       []ResolvedLocation
}

// ResultID identifies a result within its originating run.
type ResultID struct {
	RunID       int
	ResultIndex int
}

// NormalizedResult is one fully normalized record, the unit stored in the
// diagnostic index.
type NormalizedResult struct {
	ID ResultID

	// Primary is the location used for navigation and bucketing: the first
	// mapped location, or the best unmapped candidate when none mapped.
	Primary ResolvedLocation

	// Locations holds every resolved primary-list location, Related the
	// relatedLocations list.
	Locations []ResolvedLocation
	Related   []ResolvedLocation

	Message     string
	Rule        RuleInfo
	CodeFlows   []CodeFlow
	Stacks      []StackInfo
	Attachments []AttachmentInfo
	Fixes       []FixInfo

	// LogPath is the path of the log file this result came from; used as
	// the fallback location for results with no location of their own.
	LogPath string
}
