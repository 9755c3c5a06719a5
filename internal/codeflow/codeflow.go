// Package codeflow reconstructs call/return structure from flat trace
// sequences.
//
// A SARIF thread flow is an ordered list of steps, each optionally annotated
// with a nesting level. Producers disagree on whether and how they emit
// levels, so the builder classifies each step by comparing raw
// defined/undefined levels with its successor, and only afterwards
// normalizes missing levels to a sentinel for storage and display.
package codeflow

import (
	"github.com/standardbeagle/sarifnav/internal/types"
)

// Step is one trace location after file and region resolution, before
// call/return classification.
type Step struct {
	Location   types.ResolvedLocation
	Message    string
	Importance types.StepImportance

	// Depth is the logged nesting level; nil when the log omitted it.
	Depth *int
}

// Synthesized display messages for steps the log left blank.
const (
	messageReturnCall    = "[return call]"
	messageNoDescription = "[no description]"
)

// BuildThreadFlow classifies an ordered step list into a ThreadFlow.
func BuildThreadFlow(steps []Step) types.ThreadFlow {
	out := make([]types.TraceStep, len(steps))

	for i, step := range steps {
		ts := types.TraceStep{
			Location:     step.Location,
			Message:      step.Message,
			Importance:   step.Importance,
			NestingLevel: types.UnknownNesting,
			SequenceID:   i,
		}
		if step.Depth != nil {
			ts.NestingLevel = *step.Depth
		}

		// Classification compares raw defined/undefined depths of step i
		// and step i+1; the sentinel substitution above is for storage
		// only.
		if i+1 < len(steps) {
			ts.IsParent, ts.IsLastChild = classify(step.Depth, steps[i+1].Depth)
		}

		if ts.Message == "" {
			if ts.IsLastChild {
				ts.Message = messageReturnCall
			} else {
				ts.Message = messageNoDescription
			}
		}

		out[i] = ts
	}

	for i := range out {
		out[i].Icon = selectIcon(out, i)
	}

	return types.ThreadFlow{
		Steps:           out,
		FirstStepIndent: firstStepIndent(out),
	}
}

// Build resolves a full code flow: one ThreadFlow per input step list.
func Build(threadSteps [][]Step) types.CodeFlow {
	flow := types.CodeFlow{ThreadFlows: make([]types.ThreadFlow, len(threadSteps))}
	for i, steps := range threadSteps {
		flow.ThreadFlows[i] = BuildThreadFlow(steps)
	}
	return flow
}

// classify marks step i against its successor:
// deeper successor (or undefined→defined) opens a scope, shallower successor
// (or defined→undefined) closes one, equal depth is sequential.
func classify(cur, next *int) (isParent, isLastChild bool) {
	switch {
	case cur == nil && next == nil:
		return false, false
	case cur == nil:
		return true, false
	case next == nil:
		return false, true
	case *next > *cur:
		return true, false
	case *next < *cur:
		return false, true
	default:
		return false, false
	}
}

// selectIcon picks a display annotation using the stored (sentinel
// normalized) levels. A parent whose scope is never returned from, or a
// return with no visible call, gets the corresponding "no match" variant.
func selectIcon(steps []types.TraceStep, i int) types.StepIcon {
	step := steps[i]
	switch {
	case step.IsParent:
		for j := i + 1; j < len(steps); j++ {
			if steps[j].NestingLevel <= step.NestingLevel {
				return types.IconCall
			}
		}
		return types.IconCallNoReturn

	case step.IsLastChild:
		if step.NestingLevel != types.UnknownNesting {
			for j := 0; j < i; j++ {
				if steps[j].NestingLevel < step.NestingLevel {
					return types.IconReturn
				}
			}
		}
		return types.IconReturnNoCall

	default:
		return types.IconNone
	}
}

// firstStepIndent computes the indent of a flow's first step. The base is
// the step's own level minus one; flows that mix unknown-level or zero-level
// steps get one extra level each so all steps still render at non-negative
// indents relative to the first.
func firstStepIndent(steps []types.TraceStep) int {
	if len(steps) == 0 {
		return 0
	}

	indent := 0
	if lvl := steps[0].NestingLevel; lvl > 0 {
		indent = lvl - 1
	}

	hasUnknown := false
	hasZero := false
	for _, s := range steps {
		switch s.NestingLevel {
		case types.UnknownNesting:
			hasUnknown = true
		case 0:
			hasZero = true
		}
	}
	if hasUnknown {
		indent++
	}
	if hasZero {
		indent++
	}
	return indent
}
