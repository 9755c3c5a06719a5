// Package sarif models the subset of the SARIF 2.1.0 log format that
// sarifnav consumes, and decodes it at the module boundary.
//
// Optional numeric fields use pointers so that "absent" and "zero" stay
// distinguishable; the region and code-flow logic depends on that
// distinction. Producing tools vary widely in which fields they emit, so
// every field here is optional unless the SARIF spec requires it.
package sarif

// Log is the top-level structure of a SARIF file.
type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema,omitempty"`
	Runs    []Run  `json:"runs"`
}

// Run is one tool invocation with its artifacts and results.
type Run struct {
	Tool      Tool       `json:"tool"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	Results   []Result   `json:"results"`

	// OriginalURIBaseIDs maps uriBaseId keys to their base URIs.
	OriginalURIBaseIDs map[string]ArtifactLocation `json:"originalUriBaseIds,omitempty"`
}

// Tool holds the driver plus any extensions that contributed rules.
type Tool struct {
	Driver     ToolComponent   `json:"driver"`
	Extensions []ToolComponent `json:"extensions,omitempty"`
}

// ToolComponent is a driver or extension with its rule table.
type ToolComponent struct {
	Name    string                `json:"name"`
	Version string                `json:"version,omitempty"`
	Rules   []ReportingDescriptor `json:"rules,omitempty"`
}

// ReportingDescriptor describes one rule.
type ReportingDescriptor struct {
	ID               string             `json:"id"`
	Name             string             `json:"name,omitempty"`
	ShortDescription *Message           `json:"shortDescription,omitempty"`
	FullDescription  *Message           `json:"fullDescription,omitempty"`
	MessageStrings   map[string]Message `json:"messageStrings,omitempty"`
	HelpURI          string             `json:"helpUri,omitempty"`
	DefaultConfig    *ReportingConfig   `json:"defaultConfiguration,omitempty"`
}

// ReportingConfig is a rule's default severity configuration.
type ReportingConfig struct {
	Level string   `json:"level,omitempty"`
	Rank  *float64 `json:"rank,omitempty"`
}

// Message is SARIF's text-or-id message object.
type Message struct {
	Text      string   `json:"text,omitempty"`
	Markdown  string   `json:"markdown,omitempty"`
	ID        string   `json:"id,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
}

// Artifact is an entry of a run's artifacts table. When Contents is set the
// artifact is embedded in the log rather than referenced on disk.
type Artifact struct {
	Location *ArtifactLocation `json:"location,omitempty"`
	Contents *ArtifactContent  `json:"contents,omitempty"`
	Hashes   map[string]string `json:"hashes,omitempty"`
}

// ArtifactContent is an embedded payload, textual or base64-encoded binary.
type ArtifactContent struct {
	Text   string `json:"text,omitempty"`
	Binary string `json:"binary,omitempty"`
}

// ArtifactLocation references a file by URI and/or artifacts-table index.
type ArtifactLocation struct {
	URI       string `json:"uri,omitempty"`
	URIBaseID string `json:"uriBaseId,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

// Location is a result location: physical plus optional logical names.
type Location struct {
	PhysicalLocation *PhysicalLocation `json:"physicalLocation,omitempty"`
	LogicalLocations []LogicalLocation `json:"logicalLocations,omitempty"`
	Message          *Message          `json:"message,omitempty"`
}

// PhysicalLocation pairs an artifact reference with a region.
type PhysicalLocation struct {
	ArtifactLocation *ArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *Region           `json:"region,omitempty"`
	ContextRegion    *Region           `json:"contextRegion,omitempty"`
}

// LogicalLocation names the enclosing code element of a location.
type LogicalLocation struct {
	Name               string `json:"name,omitempty"`
	FullyQualifiedName string `json:"fullyQualifiedName,omitempty"`
	Kind               string `json:"kind,omitempty"`
}

// Region is a span descriptor. Lines and columns are 1-based in the log;
// char offsets are 0-based. Any subset of fields may be present.
type Region struct {
	StartLine   *int `json:"startLine,omitempty"`
	StartColumn *int `json:"startColumn,omitempty"`
	EndLine     *int `json:"endLine,omitempty"`
	EndColumn   *int `json:"endColumn,omitempty"`

	CharOffset *int `json:"charOffset,omitempty"`
	CharLength *int `json:"charLength,omitempty"`

	// Length is a non-standard field some producers emit instead of
	// endColumn.
	Length *int `json:"length,omitempty"`

	Snippet *ArtifactContent `json:"snippet,omitempty"`
}

// Result is one finding.
type Result struct {
	RuleID    string `json:"ruleId,omitempty"`
	RuleIndex *int   `json:"ruleIndex,omitempty"`

	// Rule is the reference form some producers emit instead of
	// ruleId/ruleIndex, and the only form that can name an extension.
	Rule *ReportingDescriptorReference `json:"rule,omitempty"`

	Level   string   `json:"level,omitempty"`
	Rank    *float64 `json:"rank,omitempty"`
	Message Message  `json:"message"`

	Locations        []Location   `json:"locations,omitempty"`
	RelatedLocations []Location   `json:"relatedLocations,omitempty"`
	CodeFlows        []CodeFlow   `json:"codeFlows,omitempty"`
	Stacks           []Stack      `json:"stacks,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty"`
	Fixes            []Fix        `json:"fixes,omitempty"`
}

// ReportingDescriptorReference points a result at its rule, possibly inside
// a tool extension.
type ReportingDescriptorReference struct {
	ID            string                  `json:"id,omitempty"`
	Index         *int                    `json:"index,omitempty"`
	ToolComponent *ToolComponentReference `json:"toolComponent,omitempty"`
}

// ToolComponentReference selects a driver (absent/negative index) or an
// extension by index.
type ToolComponentReference struct {
	Name  string `json:"name,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// CodeFlow groups the thread flows describing one execution path.
type CodeFlow struct {
	Message     *Message     `json:"message,omitempty"`
	ThreadFlows []ThreadFlow `json:"threadFlows"`
}

// ThreadFlow is an ordered trace within a single thread of execution.
type ThreadFlow struct {
	ID        string               `json:"id,omitempty"`
	Locations []ThreadFlowLocation `json:"locations"`
}

// ThreadFlowLocation is one step of a thread flow.
type ThreadFlowLocation struct {
	Location     *Location `json:"location,omitempty"`
	NestingLevel *int      `json:"nestingLevel,omitempty"`
	Importance   string    `json:"importance,omitempty"`
}

// Stack is a call stack attached to a result.
type Stack struct {
	Message *Message     `json:"message,omitempty"`
	Frames  []StackFrame `json:"frames"`
}

// StackFrame is one frame of a stack.
type StackFrame struct {
	Location   *Location `json:"location,omitempty"`
	Parameters []string  `json:"parameters,omitempty"`
	ThreadID   *int      `json:"threadId,omitempty"`
}

// Attachment references a file attached to a result.
type Attachment struct {
	Description      *Message          `json:"description,omitempty"`
	ArtifactLocation *ArtifactLocation `json:"artifactLocation,omitempty"`
	Regions          []Region          `json:"regions,omitempty"`
}

// Fix is a proposed change: a description plus per-file edits.
type Fix struct {
	Description     *Message         `json:"description,omitempty"`
	ArtifactChanges []ArtifactChange `json:"artifactChanges"`
}

// ArtifactChange is the set of replacements for one file.
type ArtifactChange struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Replacements     []Replacement    `json:"replacements"`
}

// Replacement is one edit region within an artifact change.
type Replacement struct {
	DeletedRegion   Region           `json:"deletedRegion"`
	InsertedContent *ArtifactContent `json:"insertedContent,omitempty"`
}
