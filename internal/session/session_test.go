package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sarifnav/internal/diagnostics"
	"github.com/standardbeagle/sarifnav/internal/resolver"
	"github.com/standardbeagle/sarifnav/internal/sarif"
	"github.com/standardbeagle/sarifnav/internal/types"
)

func intp(v int) *int { return &v }

// scriptedPrompter answers each prompt with the next queued path and
// records every logged path it was asked about.
type scriptedPrompter struct {
	mu      sync.Mutex
	answers []string
	asked   []string
}

func (p *scriptedPrompter) ChoosePath(_ context.Context, loggedPath string, _ []string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, loggedPath)
	if len(p.answers) == 0 {
		return "", resolver.ErrDeclined
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *scriptedPrompter) askedPaths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.asked...)
}

// recordingSink keeps the latest entries per path.
type recordingSink struct {
	mu      sync.Mutex
	entries map[string][]diagnostics.Entry
}

func newRecordingSink() *recordingSink {
	return &recordingSink{entries: make(map[string][]diagnostics.Entry)}
}

func (s *recordingSink) Publish(path string, entries []diagnostics.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[path] = entries
}

func (s *recordingSink) get(path string) []diagnostics.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[path]
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("int main() {}\n"), 0o644))
}

func logWithResults(uris ...string) *sarif.Log {
	results := make([]sarif.Result, len(uris))
	for i, uri := range uris {
		results[i] = sarif.Result{
			RuleID:  "R1",
			Message: sarif.Message{Text: "finding"},
			Locations: []sarif.Location{{
				PhysicalLocation: &sarif.PhysicalLocation{
					ArtifactLocation: &sarif.ArtifactLocation{URI: uri},
					Region:           &sarif.Region{StartLine: intp(1)},
				},
			}},
		}
	}
	return &sarif.Log{
		Version: sarif.SupportedVersion,
		Runs: []sarif.Run{{
			Tool:    sarif.Tool{Driver: sarif.ToolComponent{Name: "scanner"}},
			Results: results,
		}},
	}
}

func TestAddLog_DirectHits(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.c")
	writeFile(t, a)

	sink := newRecordingSink()
	s := New(Options{Sink: sink})

	require.NoError(t, s.AddLog(context.Background(), "/logs/scan.sarif", logWithResults(a)))

	mapped, unmapped := s.Index().Counts()
	assert.Equal(t, 1, mapped)
	assert.Zero(t, unmapped)
	require.Len(t, sink.get(a), 1)
	assert.Equal(t, "finding", sink.get(a)[0].Message)
}

func TestAddLog_LearnedRuleResolvesSibling(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "proj", "a.c"))
	writeFile(t, filepath.Join(dir, "proj", "b.c"))

	prompter := &scriptedPrompter{answers: []string{filepath.Join(dir, "proj", "a.c")}}
	s := New(Options{Prompter: prompter})

	log := logWithResults("/old/build/proj/a.c", "/old/build/proj/b.c")
	require.NoError(t, s.AddLog(context.Background(), "/logs/scan.sarif", log))

	// One prompt for a.c; b.c resolves through the inferred rewrite rule.
	assert.Equal(t, []string{"/old/build/proj/a.c"}, prompter.askedPaths())

	mapped, unmapped := s.Index().Counts()
	assert.Equal(t, 2, mapped)
	assert.Zero(t, unmapped)

	rules := s.Resolver().Rules()
	require.NotEmpty(t, rules)
}

func TestAddLog_DeclineLeavesUnmapped(t *testing.T) {
	prompter := &scriptedPrompter{} // no answers: declines the first prompt
	s := New(Options{Prompter: prompter})

	log := logWithResults("/gone/a.c", "/gone/b.c")
	require.NoError(t, s.AddLog(context.Background(), "/logs/scan.sarif", log))

	// The decline suppresses the second prompt within the same sweep.
	assert.Len(t, prompter.askedPaths(), 1)

	mapped, unmapped := s.Index().Counts()
	assert.Zero(t, mapped)
	assert.Equal(t, 2, unmapped)
}

func TestSetRoots_RemapsUnmappedRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "c.c"))

	s := New(Options{})
	log := logWithResults("/build/src/c.c")
	require.NoError(t, s.AddLog(context.Background(), "/logs/scan.sarif", log))

	_, unmapped := s.Index().Counts()
	require.Equal(t, 1, unmapped)

	// New roots clear the failed cache and trigger re-normalization.
	s.SetRoots([]string{dir})

	mapped, unmapped := s.Index().Counts()
	assert.Equal(t, 1, mapped)
	assert.Zero(t, unmapped)

	id := types.ResultID{RunID: 0, ResultIndex: 0}
	assert.NotNil(t, s.Index().GetByFileAndID(filepath.Join(dir, "src", "c.c"), id))
}

func TestAddLog_NoLocationFallsBackToLogFile(t *testing.T) {
	s := New(Options{})
	log := &sarif.Log{
		Version: sarif.SupportedVersion,
		Runs: []sarif.Run{{
			Tool:    sarif.Tool{Driver: sarif.ToolComponent{Name: "scanner"}},
			Results: []sarif.Result{{Message: sarif.Message{Text: "global finding"}}},
		}},
	}
	require.NoError(t, s.AddLog(context.Background(), "/logs/scan.sarif", log))

	mapped, _ := s.Index().Counts()
	assert.Equal(t, 1, mapped)
	id := types.ResultID{RunID: 0, ResultIndex: 0}
	rec := s.Index().GetByFileAndID("/logs/scan.sarif", id)
	require.NotNil(t, rec)
	assert.Equal(t, "/logs/scan.sarif", rec.Primary.Path)
}

func TestAddLog_CanceledContextStopsNormalization(t *testing.T) {
	s := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.AddLog(ctx, "/logs/scan.sarif", logWithResults("/a.c", "/b.c"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseLog_RemovesItsRecords(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.c")
	writeFile(t, a)

	s := New(Options{})
	require.NoError(t, s.AddLog(context.Background(), "/logs/one.sarif", logWithResults(a)))
	require.NoError(t, s.AddLog(context.Background(), "/logs/two.sarif", logWithResults(a)))

	mapped, _ := s.Index().Counts()
	require.Equal(t, 2, mapped)

	s.CloseLog("/logs/one.sarif")

	mapped, _ = s.Index().Counts()
	assert.Equal(t, 1, mapped)

	// Renormalize answers ok=false for the closed run.
	_, ok := s.Renormalize(context.Background(), types.ResultID{RunID: 0, ResultIndex: 0})
	assert.False(t, ok)
}

func TestLoadLogs_CollectsPerLogErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.sarif")
	require.NoError(t, os.WriteFile(good, []byte(`{"version":"2.1.0","runs":[]}`), 0o644))

	s := New(Options{})
	errs := s.LoadLogs(context.Background(), []string{good, filepath.Join(dir, "missing.sarif")})
	assert.Len(t, errs, 1)
}

func TestRenormalize_OutOfRangeIndex(t *testing.T) {
	s := New(Options{})
	require.NoError(t, s.AddLog(context.Background(), "/logs/scan.sarif", logWithResults("/a.c")))

	_, ok := s.Renormalize(context.Background(), types.ResultID{RunID: 0, ResultIndex: 5})
	assert.False(t, ok)
}
