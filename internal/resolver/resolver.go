// Package resolver maps logged artifact locations to local files.
//
// A result log frequently references paths from the machine that produced
// it. The resolver closes that gap with a layered strategy (direct check,
// learned base rewrites, root-path search, interactive fallback) and it
// learns: a single manual mapping of one file under a relocated tree teaches
// a rewrite rule that resolves the tree's remaining files automatically.
package resolver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/standardbeagle/sarifnav/internal/debug"
	naverrors "github.com/standardbeagle/sarifnav/internal/errors"
	"github.com/standardbeagle/sarifnav/internal/types"
	"github.com/standardbeagle/sarifnav/pkg/pathutil"
)

// ExistsFunc probes the filesystem for a file. It returns the actual path
// when the file exists (which may differ from the probe in casing) and
// ok=false otherwise. Injectable so tests can count probes.
type ExistsFunc func(path string) (actual string, ok bool)

// Options configures a Resolver.
type Options struct {
	// Roots are the configured root search directories, in priority order.
	Roots []string

	// Prompter handles the interactive fallback. Nil disables prompting.
	Prompter Prompter

	// Exists overrides filesystem probing. Nil uses the local filesystem
	// with a case-insensitive final-segment match.
	Exists ExistsFunc

	// EmbeddedDir is where embedded artifact contents are materialized.
	// Empty uses a directory under os.TempDir.
	EmbeddedDir string

	// Include/Exclude are doublestar globs filtering the candidate files
	// offered as prompt suggestions during root walks.
	Include []string
	Exclude []string
}

// cacheEntry is one exact-match cache slot. failed marks an artifact whose
// strategies were exhausted and whose prompt was declined; it suppresses
// re-prompting until roots or rules change.
type cacheEntry struct {
	path   string
	failed bool
}

// Resolver is the stateful file-resolution engine. One instance serves one
// session; construct it explicitly and inject it (no process-wide
// singleton).
type Resolver struct {
	mu sync.Mutex

	cache map[string]cacheEntry
	rules []RewriteRule // most recently learned first
	roots []string

	prompter    Prompter
	exists      ExistsFunc
	embeddedDir string
	include     []string
	exclude     []string

	sweepActive bool

	// onMappingChanged fires after every new or updated exact mapping and
	// after failed entries are cleared for retry.
	onMappingChanged []func()
}

// New creates a Resolver from options.
func New(opts Options) *Resolver {
	r := &Resolver{
		cache:       make(map[string]cacheEntry),
		roots:       append([]string(nil), opts.Roots...),
		prompter:    opts.Prompter,
		exists:      opts.Exists,
		embeddedDir: opts.EmbeddedDir,
		include:     opts.Include,
		exclude:     opts.Exclude,
	}
	if r.exists == nil {
		r.exists = statExists
	}
	if r.embeddedDir == "" {
		r.embeddedDir = filepath.Join(os.TempDir(), "sarifnav-embedded")
	}
	return r
}

// OnMappingChanged registers a callback fired whenever the mapping state
// gains a usable entry. The diagnostic index uses this to re-resolve
// unmapped records.
func (r *Resolver) OnMappingChanged(fn func()) {
	r.mu.Lock()
	r.onMappingChanged = append(r.onMappingChanged, fn)
	r.mu.Unlock()
}

func (r *Resolver) notifyMappingChanged() {
	r.mu.Lock()
	callbacks := make([]func(), len(r.onMappingChanged))
	copy(callbacks, r.onMappingChanged)
	r.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
}

// Roots returns a copy of the configured root search paths.
func (r *Resolver) Roots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.roots...)
}

// SetRoots replaces the root search paths. Previously failed artifacts
// become retryable: their sentinels are dropped and a mapping-changed
// notification fires so consumers re-resolve against the new roots.
func (r *Resolver) SetRoots(roots []string) {
	r.mu.Lock()
	r.roots = append([]string(nil), roots...)
	r.clearFailedLocked()
	r.mu.Unlock()
	r.notifyMappingChanged()
}

// AddRule installs a base-rewrite rule ahead of existing ones and makes
// failed artifacts retryable.
func (r *Resolver) AddRule(rule RewriteRule) {
	r.mu.Lock()
	r.rules = append([]RewriteRule{rule}, r.rules...)
	r.clearFailedLocked()
	r.mu.Unlock()
	r.notifyMappingChanged()
}

// Rules returns a copy of the learned rewrite rules, most recent first.
func (r *Resolver) Rules() []RewriteRule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RewriteRule(nil), r.rules...)
}

// clearFailedLocked drops failed sentinels so the artifacts they cover get
// re-probed on the next resolve. Caller holds r.mu.
func (r *Resolver) clearFailedLocked() bool {
	cleared := false
	for key, entry := range r.cache {
		if entry.failed {
			delete(r.cache, key)
			cleared = true
		}
	}
	return cleared
}

// Artifact is the resolver's view of one logged artifact reference:
// a normalized path plus optional embedded content.
type Artifact struct {
	// Path is the logged URI/path, slash-normalized, scheme stripped.
	Path string

	// BaseID is the uriBaseId the log attached to the reference, kept as
	// part of the cache key so identical relative paths under different
	// bases stay distinct.
	BaseID string

	// Embedded content, when the artifacts table inlines the file instead
	// of referencing it. ContentHash keys the materialized temp file.
	EmbeddedText   string
	EmbeddedBinary []byte
}

func (a Artifact) hasEmbedded() bool {
	return a.EmbeddedText != "" || len(a.EmbeddedBinary) > 0
}

func (a Artifact) cacheKey() string {
	return a.BaseID + "\x00" + strings.ToLower(pathutil.Normalize(a.Path))
}

// Resolve maps one artifact to a ResolvedLocation with the given range.
// Unresolved artifacts are never dropped: the returned location keeps the
// logged path with Mapped=false. Resolution must happen inside a sweep;
// the sweep carries the per-batch prompt-decline flag.
func (r *Resolver) Resolve(ctx context.Context, art Artifact, rng types.TextRange, sweep *Sweep) types.ResolvedLocation {
	if path, ok := r.resolvePath(ctx, art, sweep); ok {
		return types.NewResolvedLocation(path, rng, true)
	}
	return types.NewResolvedLocation(pathutil.Normalize(art.Path), rng, false)
}

// resolvePath runs the layered strategy, short-circuiting at first success.
// Every new exact mapping is cached atomically and raises a mapping-changed
// notification.
func (r *Resolver) resolvePath(ctx context.Context, art Artifact, sweep *Sweep) (string, bool) {
	key := art.cacheKey()

	r.mu.Lock()
	if entry, ok := r.cache[key]; ok {
		r.mu.Unlock()
		if entry.failed {
			return "", false
		}
		return entry.path, true
	}
	rules := append([]RewriteRule(nil), r.rules...)
	roots := append([]string(nil), r.roots...)
	r.mu.Unlock()

	if art.hasEmbedded() {
		path, err := r.materializeEmbedded(art)
		if err != nil {
			debug.Printf("resolver: embedded content for %s: %v", art.Path, err)
			return "", false
		}
		r.store(key, path)
		return path, true
	}

	logged := pathutil.Normalize(art.Path)

	// 1. Direct check at the logged path.
	if actual, ok := r.exists(filepath.FromSlash(logged)); ok {
		r.store(key, actual)
		return actual, true
	}

	// 2. Learned base rewrites, most recent first.
	for _, rule := range rules {
		candidate, ok := rule.Apply(logged)
		if !ok {
			continue
		}
		if actual, ok := r.exists(filepath.FromSlash(candidate)); ok {
			r.store(key, actual)
			return actual, true
		}
	}

	// 3. Root search: join each root with progressively shorter trailing
	// suffixes of the logged path.
	for _, root := range roots {
		for _, suffix := range pathutil.TrailingSuffixes(logged) {
			candidate := filepath.Join(root, filepath.FromSlash(suffix))
			if actual, ok := r.exists(candidate); ok {
				r.store(key, actual)
				return actual, true
			}
		}
	}

	// 4. Interactive fallback, unless this sweep already declined once.
	if r.prompter == nil || sweep == nil || sweep.declined {
		if debug.Enabled() {
			debug.Printf("resolver: %v", naverrors.NewArtifactError("resolve", logged, nil))
		}
		return "", false
	}
	chosen, err := r.prompter.ChoosePath(ctx, logged, r.suggestions(logged, roots))
	if err != nil {
		// Decline suppresses further prompts for the rest of this batch
		// and pins a failed sentinel so the artifact is not re-probed
		// until roots or rules change.
		sweep.declined = true
		r.mu.Lock()
		r.cache[key] = cacheEntry{failed: true}
		r.mu.Unlock()
		return "", false
	}

	r.store(key, chosen)
	if rule, ok := InferRewrite(logged, chosen); ok {
		// The new rule also makes artifacts declined in earlier sweeps
		// retryable, so it goes through AddRule rather than a bare prepend.
		r.AddRule(rule)
		debug.Printf("resolver: learned rewrite %q -> %q", rule.From, rule.To)
	}
	return chosen, true
}

// store records an exact mapping and raises the change notification. Cache
// writes are atomic per artifact, so cancelling a sweep mid-way never leaves
// partial state.
func (r *Resolver) store(key, path string) {
	r.mu.Lock()
	r.cache[key] = cacheEntry{path: path}
	r.mu.Unlock()
	r.notifyMappingChanged()
}

// statExists is the default filesystem probe: a stat, then a case-folded
// final-segment scan of the parent directory so logs produced on
// case-insensitive systems still match.
func statExists(path string) (string, bool) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, true
	}
	dir, base := filepath.Split(path)
	if dir == "" || base == "" {
		return "", false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pathutil.EqualFold(entry.Name(), base) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}
