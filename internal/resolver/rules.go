package resolver

import (
	"github.com/standardbeagle/sarifnav/pkg/pathutil"
)

// RewriteRule substitutes one path prefix for another. Rules are learned
// from successful interactive mappings: once /root/old/src/a.c is manually
// mapped to /data/new/src/a.c, the rule {From: "/root/old", To: "/data/new"}
// resolves every sibling under the relocated tree without prompting.
type RewriteRule struct {
	From string // logged prefix, matched case-insensitively
	To   string // local replacement prefix
}

// Apply substitutes the rule's prefix when the logged path starts with it.
func (r RewriteRule) Apply(logged string) (string, bool) {
	if !pathutil.HasFoldPrefix(logged, r.From) {
		return "", false
	}
	return r.To + logged[len(r.From):], true
}

// InferRewrite derives a rule from an original logged path and the local
// path the operator chose for it, by stripping their longest common
// case-folded suffix. Returns ok=false when the paths share no trailing
// segment (nothing generalizable) or when the common suffix consumes one
// path entirely.
func InferRewrite(logged, chosen string) (RewriteRule, bool) {
	from, to := pathutil.SplitCommonSuffix(pathutil.Normalize(logged), pathutil.Normalize(chosen))
	if from == pathutil.Normalize(logged) || to == pathutil.Normalize(chosen) {
		// No usable common suffix: even the file names differ.
		return RewriteRule{}, false
	}
	if from == "" && to == "" {
		// Identical paths; nothing to learn.
		return RewriteRule{}, false
	}
	return RewriteRule{From: from, To: to}, true
}
