// Package normalize turns raw SARIF results into NormalizedResult records.
//
// One Normalizer serves one run. For every raw result it resolves the
// primary and related location lists, code flows, stacks, attachments and
// fixes through the shared file resolver and region resolver, and derives
// rule metadata and message text. Per-result failures degrade locally: a
// malformed entry never blocks the rest of the log.
package normalize

import (
	"context"
	"strconv"
	"strings"

	"github.com/standardbeagle/sarifnav/internal/codeflow"
	"github.com/standardbeagle/sarifnav/internal/debug"
	"github.com/standardbeagle/sarifnav/internal/region"
	"github.com/standardbeagle/sarifnav/internal/resolver"
	"github.com/standardbeagle/sarifnav/internal/sarif"
	"github.com/standardbeagle/sarifnav/internal/types"
)

// fallbackMessage is shown when neither the result nor its rule carries any
// message text.
const fallbackMessage = "[no message]"

// Normalizer converts the results of one run.
type Normalizer struct {
	run      *sarif.Run
	runID    int
	logPath  string
	resolver *resolver.Resolver
}

// New creates a Normalizer for one run of a log file.
func New(run *sarif.Run, runID int, logPath string, res *resolver.Resolver) *Normalizer {
	return &Normalizer{run: run, runID: runID, logPath: logPath, resolver: res}
}

// Result normalizes the raw result at resultIndex. The sweep carries the
// resolver's per-batch prompt state; pass the same sweep for every result of
// a batch.
func (n *Normalizer) Result(ctx context.Context, raw *sarif.Result, resultIndex int, sweep *resolver.Sweep) types.NormalizedResult {
	out := types.NormalizedResult{
		ID:      types.ResultID{RunID: n.runID, ResultIndex: resultIndex},
		LogPath: n.logPath,
	}

	for i := range raw.Locations {
		out.Locations = append(out.Locations, n.resolveLocation(ctx, &raw.Locations[i], sweep))
	}
	for i := range raw.RelatedLocations {
		out.Related = append(out.Related, n.resolveLocation(ctx, &raw.RelatedLocations[i], sweep))
	}

	// A result with no location at all still has to be navigable: point it
	// at the log file itself.
	if len(out.Locations) == 0 {
		out.Locations = append(out.Locations,
			types.NewResolvedLocation(n.logPath, types.DefaultRange(), true))
	}
	out.Primary = pickPrimary(out.Locations)

	rule := n.lookupRule(raw)
	out.Rule = n.ruleInfo(raw, rule)
	out.Message = n.messageText(raw, rule)

	for i := range raw.CodeFlows {
		out.CodeFlows = append(out.CodeFlows, n.resolveCodeFlow(ctx, &raw.CodeFlows[i], sweep))
	}
	for i := range raw.Stacks {
		out.Stacks = append(out.Stacks, n.resolveStack(ctx, &raw.Stacks[i], sweep))
	}
	for i := range raw.Attachments {
		out.Attachments = append(out.Attachments, n.resolveAttachment(ctx, &raw.Attachments[i], sweep))
	}
	for i := range raw.Fixes {
		out.Fixes = append(out.Fixes, n.resolveFix(ctx, &raw.Fixes[i], sweep))
	}

	return out
}

// pickPrimary returns the first mapped location, or the first location when
// none mapped (the best available unmapped candidate: the list is in the
// producer's preference order).
func pickPrimary(locs []types.ResolvedLocation) types.ResolvedLocation {
	for _, loc := range locs {
		if loc.Mapped {
			return loc
		}
	}
	return locs[0]
}

// resolveLocation resolves one SARIF location: region first (pure), then the
// artifact reference through the file resolver, then logical names.
func (n *Normalizer) resolveLocation(ctx context.Context, loc *sarif.Location, sweep *resolver.Sweep) types.ResolvedLocation {
	var reg *sarif.Region
	var artLoc *sarif.ArtifactLocation
	if loc.PhysicalLocation != nil {
		reg = loc.PhysicalLocation.Region
		artLoc = loc.PhysicalLocation.ArtifactLocation
	}

	rng := region.Resolve(reg)
	resolved := n.resolveArtifact(ctx, artLoc, rng, sweep)

	for _, ll := range loc.LogicalLocations {
		name := ll.FullyQualifiedName
		if name == "" {
			name = ll.Name
		}
		if name != "" {
			resolved.LogicalNames = append(resolved.LogicalNames, name)
		}
	}
	return resolved
}

// resolveArtifact translates a SARIF artifact reference into the resolver's
// input shape (dereferencing the artifacts table, expanding uriBaseId, and
// carrying embedded content) and resolves it.
func (n *Normalizer) resolveArtifact(ctx context.Context, artLoc *sarif.ArtifactLocation, rng types.TextRange, sweep *resolver.Sweep) types.ResolvedLocation {
	if artLoc == nil {
		// No artifact reference; degrade to the log file.
		return types.NewResolvedLocation(n.logPath, rng, true)
	}

	art := resolver.Artifact{Path: artLoc.URI, BaseID: artLoc.URIBaseID}

	if artLoc.Index != nil {
		if entry := n.run.ArtifactAt(*artLoc.Index); entry != nil {
			if entry.Location != nil {
				if art.Path == "" {
					art.Path = entry.Location.URI
				}
				if art.BaseID == "" {
					art.BaseID = entry.Location.URIBaseID
				}
			}
			if entry.Contents != nil {
				art.EmbeddedText = entry.Contents.Text
				if entry.Contents.Binary != "" {
					decoded, err := resolver.DecodeEmbeddedBinary(entry.Contents.Binary)
					if err != nil {
						debug.Printf("normalize: bad embedded binary for %s: %v", art.Path, err)
					} else {
						art.EmbeddedBinary = decoded
					}
				}
			}
		}
	}

	art.Path = n.expandBase(art.Path, art.BaseID)
	return n.resolver.Resolve(ctx, art, rng, sweep)
}

// expandBase prefixes uri with the run's originalUriBaseIds entry for
// baseID, following nested base references. Unresolvable bases leave the
// uri relative; root search can still place it.
func (n *Normalizer) expandBase(uri, baseID string) string {
	for depth := 0; baseID != "" && depth < 8; depth++ {
		base, ok := n.run.OriginalURIBaseIDs[baseID]
		if !ok {
			break
		}
		if base.URI != "" {
			uri = strings.TrimSuffix(base.URI, "/") + "/" + strings.TrimPrefix(uri, "/")
		}
		baseID = base.URIBaseID
	}
	return uri
}

// resolveCodeFlow resolves every thread-flow location, then hands the flat
// step lists to the code-flow builder for call/return classification.
func (n *Normalizer) resolveCodeFlow(ctx context.Context, raw *sarif.CodeFlow, sweep *resolver.Sweep) types.CodeFlow {
	threadSteps := make([][]codeflow.Step, len(raw.ThreadFlows))
	for t := range raw.ThreadFlows {
		tf := &raw.ThreadFlows[t]
		steps := make([]codeflow.Step, len(tf.Locations))
		for i := range tf.Locations {
			tfl := &tf.Locations[i]
			step := codeflow.Step{
				Depth:      tfl.NestingLevel,
				Importance: importance(tfl.Importance),
			}
			if tfl.Location != nil {
				step.Location = n.resolveLocation(ctx, tfl.Location, sweep)
				if tfl.Location.Message != nil {
					step.Message = tfl.Location.Message.Text
				}
			} else {
				step.Location = types.NewResolvedLocation(n.logPath, types.DefaultRange(), false)
			}
			steps[i] = step
		}
		threadSteps[t] = steps
	}
	return codeflow.Build(threadSteps)
}

func importance(s string) types.StepImportance {
	switch s {
	case "essential":
		return types.ImportanceEssential
	case "unimportant":
		return types.ImportanceUnimportant
	default:
		return types.ImportanceImportant
	}
}

// resolveStack resolves each frame and folds, per display column, whether
// any frame has content, so presentation can omit always-empty columns.
func (n *Normalizer) resolveStack(ctx context.Context, raw *sarif.Stack, sweep *resolver.Sweep) types.StackInfo {
	info := types.StackInfo{}
	if raw.Message != nil {
		info.Message = raw.Message.Text
	}

	for i := range raw.Frames {
		frame := &raw.Frames[i]
		out := types.StackFrameInfo{Parameters: frame.Parameters}
		if frame.Location != nil {
			out.Location = n.resolveLocation(ctx, frame.Location, sweep)
			if frame.Location.Message != nil {
				out.Message = frame.Location.Message.Text
			}
		}
		if frame.ThreadID != nil {
			out.ThreadID = *frame.ThreadID
		}

		if out.Location.DisplayName != "" {
			info.Columns.Set(types.ColumnFile)
		}
		if out.Message != "" {
			info.Columns.Set(types.ColumnMessage)
		}
		if len(out.Parameters) > 0 {
			info.Columns.Set(types.ColumnParameters)
		}
		if frame.ThreadID != nil {
			info.Columns.Set(types.ColumnThreadID)
		}
		if out.Location.Path != "" {
			info.Columns.Set(types.ColumnLocation)
		}

		info.Frames = append(info.Frames, out)
	}
	return info
}

func (n *Normalizer) resolveAttachment(ctx context.Context, raw *sarif.Attachment, sweep *resolver.Sweep) types.AttachmentInfo {
	out := types.AttachmentInfo{}
	if raw.Description != nil {
		out.Description = raw.Description.Text
	}
	out.Location = n.resolveArtifact(ctx, raw.ArtifactLocation, types.DefaultRange(), sweep)
	for i := range raw.Regions {
		rng := region.Resolve(&raw.Regions[i])
		out.Regions = append(out.Regions,
			types.NewResolvedLocation(out.Location.Path, rng, out.Location.Mapped))
	}
	return out
}

func (n *Normalizer) resolveFix(ctx context.Context, raw *sarif.Fix, sweep *resolver.Sweep) types.FixInfo {
	out := types.FixInfo{}
	if raw.Description != nil {
		out.Description = raw.Description.Text
	}
	for i := range raw.ArtifactChanges {
		change := &raw.ArtifactChanges[i]
		for j := range change.Replacements {
			rng := region.Resolve(&change.Replacements[j].DeletedRegion)
			out.Edits = append(out.Edits,
				n.resolveArtifact(ctx, &change.ArtifactLocation, rng, sweep))
		}
	}
	return out
}

// lookupRule follows result→rule metadata: an explicit reference (possibly
// through a tool extension), then the driver rule index, then a search by
// rule id. Producers use all three conventions.
func (n *Normalizer) lookupRule(raw *sarif.Result) *sarif.ReportingDescriptor {
	if ref := raw.Rule; ref != nil {
		if ref.ToolComponent != nil && ref.ToolComponent.Index != nil && ref.Index != nil {
			if rule := n.run.ExtensionRule(*ref.ToolComponent.Index, *ref.Index); rule != nil {
				return rule
			}
		}
		if ref.Index != nil {
			if rule := n.run.RuleByIndex(*ref.Index); rule != nil {
				return rule
			}
		}
		if rule := n.run.RuleByID(ref.ID); rule != nil {
			return rule
		}
	}
	if raw.RuleIndex != nil {
		if rule := n.run.RuleByIndex(*raw.RuleIndex); rule != nil {
			return rule
		}
	}
	return n.run.RuleByID(raw.RuleID)
}

// ruleInfo derives the normalized rule metadata: severity from the result's
// level, falling back to the rule's default configuration; rank likewise,
// with -1 meaning unranked.
func (n *Normalizer) ruleInfo(raw *sarif.Result, rule *sarif.ReportingDescriptor) types.RuleInfo {
	info := types.RuleInfo{ID: raw.RuleID, Rank: -1}
	if info.ID == "" && raw.Rule != nil {
		info.ID = raw.Rule.ID
	}

	level := raw.Level
	if raw.Rank != nil {
		info.Rank = *raw.Rank
	}

	if rule != nil {
		if info.ID == "" {
			info.ID = rule.ID
		}
		info.Name = rule.Name
		info.HelpURI = rule.HelpURI
		if rule.DefaultConfig != nil {
			if level == "" {
				level = rule.DefaultConfig.Level
			}
			if info.Rank < 0 && rule.DefaultConfig.Rank != nil {
				info.Rank = *rule.DefaultConfig.Rank
			}
		}
	}
	if info.Name == "" {
		info.Name = info.ID
	}

	info.Severity = severity(level)
	return info
}

// severity maps a SARIF level to the normalized enum. The SARIF default
// level is warning.
func severity(level string) types.Severity {
	switch level {
	case "error":
		return types.SeverityError
	case "note":
		return types.SeverityNote
	case "none":
		return types.SeverityNone
	default:
		return types.SeverityWarning
	}
}

// messageText synthesizes display text: the result's own message, then the
// rule's message template selected by message id, then the rule's short
// description, then a fixed fallback. Template arguments substitute
// positionally ({0}, {1}, …).
func (n *Normalizer) messageText(raw *sarif.Result, rule *sarif.ReportingDescriptor) string {
	if raw.Message.Text != "" {
		return raw.Message.Text
	}
	if rule != nil && raw.Message.ID != "" {
		if tmpl, ok := rule.MessageStrings[raw.Message.ID]; ok && tmpl.Text != "" {
			return substituteArgs(tmpl.Text, raw.Message.Arguments)
		}
	}
	if rule != nil && rule.ShortDescription != nil && rule.ShortDescription.Text != "" {
		return rule.ShortDescription.Text
	}
	return fallbackMessage
}

// substituteArgs replaces {N} placeholders with message arguments.
func substituteArgs(tmpl string, args []string) string {
	for i, arg := range args {
		tmpl = strings.ReplaceAll(tmpl, "{"+strconv.Itoa(i)+"}", arg)
	}
	return tmpl
}
