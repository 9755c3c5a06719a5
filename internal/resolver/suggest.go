package resolver

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/sarifnav/pkg/pathutil"
)

const (
	// maxSuggestionWalk caps the files considered per root so prompting
	// stays responsive on large trees.
	maxSuggestionWalk = 20000
	maxSuggestions    = 8
)

type scoredPath struct {
	path  string
	score float32
}

// suggestions walks the configured roots for files whose name matches the
// logged file name, ranks them by Jaro-Winkler similarity of the full paths,
// and returns the best few for the prompter to offer. Include/exclude globs
// (doublestar syntax) filter the walk.
func (r *Resolver) suggestions(logged string, roots []string) []string {
	base := filepath.Base(filepath.FromSlash(logged))
	if base == "" || base == "." {
		return nil
	}

	var candidates []scoredPath
	for _, root := range roots {
		visited := 0
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree, keep walking
			}
			visited++
			if visited > maxSuggestionWalk {
				return fs.SkipAll
			}
			if d.IsDir() {
				return nil
			}
			rel := filepath.ToSlash(pathutil.ToRelative(path, root))
			if !r.suggestionMatches(rel) {
				return nil
			}
			if !pathutil.EqualFold(d.Name(), base) {
				return nil
			}
			score, err := edlib.StringsSimilarity(pathutil.Normalize(logged), filepath.ToSlash(path), edlib.JaroWinkler)
			if err != nil {
				score = 0
			}
			candidates = append(candidates, scoredPath{path: path, score: score})
			return nil
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.path
	}
	return out
}

// suggestionMatches applies the configured include/exclude globs to a
// root-relative path. No include patterns means everything is included.
func (r *Resolver) suggestionMatches(rel string) bool {
	for _, pattern := range r.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(r.include) == 0 {
		return true
	}
	for _, pattern := range r.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
