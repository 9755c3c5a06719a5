// Package diagnostics maintains the per-file partitions of normalized
// results and publishes them to a presentation sink.
//
// Records live in exactly one of two buckets, mapped or unmapped, keyed by
// the primary location's path (the logged path when unresolved). A record
// moves from unmapped to mapped when the resolver learns a mapping for its
// file; it never regresses back.
package diagnostics

import (
	"context"
	"fmt"
	"sync"

	"github.com/standardbeagle/sarifnav/internal/debug"
	"github.com/standardbeagle/sarifnav/internal/types"
)

// DefaultMaxPerFile caps the real entries displayed per file. The display
// total when truncated is the cap plus the synthetic marker entry.
const DefaultMaxPerFile = 249

// Entry is one display row handed to the sink: either a normalized result
// or the synthetic truncation marker.
type Entry struct {
	Message  string
	Severity types.Severity
	Range    types.TextRange

	// Result is nil for the truncation marker.
	Result *types.NormalizedResult

	// Truncated is the number of hidden results when this entry is the
	// marker, zero otherwise.
	Truncated int
}

// Sink is the external presentation surface. Publish replaces the displayed
// entries for one file; an empty slice clears it.
type Sink interface {
	Publish(path string, entries []Entry)
}

// Renormalizer re-runs normalization for one record, used when the
// resolver's mapping state changes. ok=false means the record's run is gone.
type Renormalizer interface {
	Renormalize(ctx context.Context, id types.ResultID) (types.NormalizedResult, bool)
}

// Index is the diagnostic collection for one session. Construct it
// explicitly and inject it; there is no process-wide instance.
type Index struct {
	mu sync.Mutex

	mapped   map[string][]*types.NormalizedResult
	unmapped map[string][]*types.NormalizedResult

	maxPerFile int
	sink       Sink
	renorm     Renormalizer

	// published tracks which paths the sink currently displays, so Sync
	// can clear files whose entries all moved away.
	published map[string]bool

	focused    types.ResultID
	hasFocused bool

	// Reentrancy guard for MappingChanged: resolution during a remap pass
	// can raise further mapping-changed notifications.
	remapping    bool
	remapPending bool

	onChanged      []func()
	onFocusedRemap []func(types.ResultID)
}

// Options configures an Index.
type Options struct {
	MaxPerFile int // 0 uses DefaultMaxPerFile
	Sink       Sink
	Renorm     Renormalizer
}

// New creates an empty Index.
func New(opts Options) *Index {
	maxPerFile := opts.MaxPerFile
	if maxPerFile <= 0 {
		maxPerFile = DefaultMaxPerFile
	}
	return &Index{
		mapped:     make(map[string][]*types.NormalizedResult),
		unmapped:   make(map[string][]*types.NormalizedResult),
		maxPerFile: maxPerFile,
		sink:       opts.Sink,
		renorm:     opts.Renorm,
		published:  make(map[string]bool),
	}
}

// OnChanged registers a collection-changed callback for presentation
// consumers.
func (ix *Index) OnChanged(fn func()) {
	ix.mu.Lock()
	ix.onChanged = append(ix.onChanged, fn)
	ix.mu.Unlock()
}

// OnFocusedRemapped registers a callback fired when the currently focused
// result moves from unmapped to mapped, so the focused view can re-open at
// the real file.
func (ix *Index) OnFocusedRemapped(fn func(types.ResultID)) {
	ix.mu.Lock()
	ix.onFocusedRemap = append(ix.onFocusedRemap, fn)
	ix.mu.Unlock()
}

// SetFocused marks the result the presentation layer currently displays.
func (ix *Index) SetFocused(id types.ResultID) {
	ix.mu.Lock()
	ix.focused = id
	ix.hasFocused = true
	ix.mu.Unlock()
}

// ClearFocused drops focused-result tracking.
func (ix *Index) ClearFocused() {
	ix.mu.Lock()
	ix.hasFocused = false
	ix.mu.Unlock()
}

// Add routes a record into the mapped or unmapped bucket by its primary
// location.
func (ix *Index) Add(rec *types.NormalizedResult) {
	ix.mu.Lock()
	bucket := ix.unmapped
	if rec.Primary.Mapped {
		bucket = ix.mapped
	}
	bucket[rec.Primary.Path] = append(bucket[rec.Primary.Path], rec)
	ix.mu.Unlock()
	ix.notifyChanged()
}

// GetByFileAndID returns the record for a file path and result id, or nil.
func (ix *Index) GetByFileAndID(path string, id types.ResultID) *types.NormalizedResult {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, bucket := range []map[string][]*types.NormalizedResult{ix.mapped, ix.unmapped} {
		for _, rec := range bucket[path] {
			if rec.ID == id {
				return rec
			}
		}
	}
	return nil
}

// Counts returns the number of records per bucket, for status surfaces and
// tests.
func (ix *Index) Counts() (mapped, unmapped int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, recs := range ix.mapped {
		mapped += len(recs)
	}
	for _, recs := range ix.unmapped {
		unmapped += len(recs)
	}
	return mapped, unmapped
}

// RemoveRuns drops every record originating from the given log file and
// resynchronizes.
func (ix *Index) RemoveRuns(logPath string) {
	ix.mu.Lock()
	for _, bucket := range []map[string][]*types.NormalizedResult{ix.mapped, ix.unmapped} {
		for path, recs := range bucket {
			kept := recs[:0]
			for _, rec := range recs {
				if rec.LogPath != logPath {
					kept = append(kept, rec)
				}
			}
			if len(kept) == 0 {
				delete(bucket, path)
			} else {
				bucket[path] = kept
			}
		}
	}
	ix.mu.Unlock()
	ix.Sync()
	ix.notifyChanged()
}

// Sync flushes both buckets to the sink, applying the per-file display cap.
// Files the sink displayed before but which now have no entries are
// published empty.
func (ix *Index) Sync() {
	if ix.sink == nil {
		return
	}

	ix.mu.Lock()
	merged := make(map[string][]*types.NormalizedResult)
	for path, recs := range ix.mapped {
		merged[path] = append(merged[path], recs...)
	}
	for path, recs := range ix.unmapped {
		merged[path] = append(merged[path], recs...)
	}

	stale := make([]string, 0)
	for path := range ix.published {
		if len(merged[path]) == 0 {
			stale = append(stale, path)
		}
	}

	type flush struct {
		path    string
		entries []Entry
	}
	flushes := make([]flush, 0, len(merged))
	for path, recs := range merged {
		flushes = append(flushes, flush{path: path, entries: ix.entriesLocked(recs)})
		ix.published[path] = true
	}
	for _, path := range stale {
		flushes = append(flushes, flush{path: path})
		delete(ix.published, path)
	}
	sink := ix.sink
	ix.mu.Unlock()

	for _, f := range flushes {
		sink.Publish(f.path, f.entries)
	}
}

// entriesLocked converts a file's records to display entries, truncating to
// the cap with a leading marker when the file exceeds it. Caller holds
// ix.mu.
func (ix *Index) entriesLocked(recs []*types.NormalizedResult) []Entry {
	truncated := 0
	if len(recs) > ix.maxPerFile {
		truncated = len(recs) - ix.maxPerFile
		recs = recs[:ix.maxPerFile]
	}

	entries := make([]Entry, 0, len(recs)+1)
	if truncated > 0 {
		// The marker always sorts first so the truncation is visible even
		// when the list is scrolled to the top.
		entries = append(entries, Entry{
			Message:   fmt.Sprintf("%d results truncated", truncated),
			Severity:  types.SeverityNote,
			Range:     types.DefaultRange(),
			Truncated: truncated,
		})
	}
	for _, rec := range recs {
		entries = append(entries, Entry{
			Message:  rec.Message,
			Severity: rec.Rule.Severity,
			Range:    rec.Primary.Range,
			Result:   rec,
		})
	}
	return entries
}

// MappingChanged is the resolver's change-notification handler. Every
// unmapped record is re-normalized; records whose primary location now maps
// move to the mapped bucket, and the index resynchronizes. Calling it with
// no new resolutions is a no-op.
//
// Renormalization itself can store new resolver mappings, which fire this
// handler again re-entrantly; a reentrancy guard coalesces those nested
// notifications into one more pass instead of recursing.
func (ix *Index) MappingChanged(ctx context.Context) {
	if ix.renorm == nil {
		return
	}

	ix.mu.Lock()
	if ix.remapping {
		ix.remapPending = true
		ix.mu.Unlock()
		return
	}
	ix.remapping = true
	ix.mu.Unlock()

	anyMoved := false
	var focusedRemapped []types.ResultID
	for {
		moved, focused := ix.remapPass(ctx)
		anyMoved = anyMoved || moved
		focusedRemapped = append(focusedRemapped, focused...)

		ix.mu.Lock()
		if !ix.remapPending {
			ix.remapping = false
			remapCallbacks := make([]func(types.ResultID), len(ix.onFocusedRemap))
			copy(remapCallbacks, ix.onFocusedRemap)
			ix.mu.Unlock()

			if anyMoved {
				for _, id := range focusedRemapped {
					for _, fn := range remapCallbacks {
						fn(id)
					}
				}
				ix.Sync()
				ix.notifyChanged()
			}
			return
		}
		ix.remapPending = false
		ix.mu.Unlock()
	}
}

// remapPass re-normalizes a snapshot of the unmapped records and moves the
// ones that now resolve. The lock is not held across Renormalize calls.
func (ix *Index) remapPass(ctx context.Context) (moved bool, focusedRemapped []types.ResultID) {
	ix.mu.Lock()
	var snapshot []*types.NormalizedResult
	for _, recs := range ix.unmapped {
		snapshot = append(snapshot, recs...)
	}
	ix.mu.Unlock()

	type update struct {
		rec   *types.NormalizedResult
		fresh types.NormalizedResult
	}
	var updates []update
	for _, rec := range snapshot {
		fresh, ok := ix.renorm.Renormalize(ctx, rec.ID)
		if ok && fresh.Primary.Mapped {
			updates = append(updates, update{rec: rec, fresh: fresh})
		}
	}
	if len(updates) == 0 {
		return false, nil
	}

	ix.mu.Lock()
	for _, u := range updates {
		oldPath := u.rec.Primary.Path
		if !ix.removeUnmappedLocked(oldPath, u.rec) {
			continue // already moved by a concurrent pass
		}
		*u.rec = u.fresh
		ix.mapped[u.rec.Primary.Path] = append(ix.mapped[u.rec.Primary.Path], u.rec)
		moved = true
		if ix.hasFocused && u.rec.ID == ix.focused {
			focusedRemapped = append(focusedRemapped, u.rec.ID)
		}
		debug.Printf("diagnostics: %s result %d remapped to %s",
			u.rec.LogPath, u.rec.ID.ResultIndex, u.rec.Primary.Path)
	}
	ix.mu.Unlock()
	return moved, focusedRemapped
}

// removeUnmappedLocked deletes one record from the unmapped bucket. Caller
// holds ix.mu.
func (ix *Index) removeUnmappedLocked(path string, rec *types.NormalizedResult) bool {
	recs := ix.unmapped[path]
	for i, candidate := range recs {
		if candidate == rec {
			recs = append(recs[:i], recs[i+1:]...)
			if len(recs) == 0 {
				delete(ix.unmapped, path)
			} else {
				ix.unmapped[path] = recs
			}
			return true
		}
	}
	return false
}

func (ix *Index) notifyChanged() {
	ix.mu.Lock()
	callbacks := make([]func(), len(ix.onChanged))
	copy(callbacks, ix.onChanged)
	ix.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
}
