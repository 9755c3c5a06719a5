// Package pathutil provides the path utilities used by file resolution.
//
// Architecture Pattern:
// sarifnav resolves logged artifact paths against the local filesystem, and
// the learning step of that resolution ("base-rewrite inference") works by
// comparing a logged path and a user-chosen path backward from their ends.
// That comparison is done with explicit index arithmetic over case-folded
// bytes, not regular expressions, so its behavior is exact and cheap to
// unit-test. Display conversion from absolute to relative lives here too.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or the file lies
// outside the root.
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return relPath
}

// Normalize converts a logged URI or path to slash-separated form with any
// file:// scheme stripped, suitable for prefix/suffix comparison.
func Normalize(p string) string {
	p = strings.TrimPrefix(p, "file://")
	return filepath.ToSlash(p)
}

// foldByte lower-cases ASCII letters. Path comparison here is ASCII-folded:
// logged Windows paths differ from disk paths in drive-letter and directory
// casing, which this covers, while non-ASCII names compare exactly.
func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	if b == '\\' {
		return '/'
	}
	return b
}

// EqualFold reports whether two paths are equal under ASCII case folding
// with separators unified.
func EqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if foldByte(a[i]) != foldByte(b[i]) {
			return false
		}
	}
	return true
}

// HasFoldPrefix reports whether path starts with prefix under ASCII case
// folding with separators unified.
func HasFoldPrefix(path, prefix string) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if foldByte(path[i]) != foldByte(prefix[i]) {
			return false
		}
	}
	return true
}

// SplitCommonSuffix compares a and b backward from their ends, finds the
// longest common case-folded suffix, and returns the two non-common
// prefixes. The suffix boundary is snapped forward to the nearest path
// separator so both prefixes describe whole directory trees:
//
//	SplitCommonSuffix("/root/old/src/a.c", "/data/new/src/a.c")
//	  → "/root/old/", "/data/new/"
//
// When the paths are entirely common the prefixes are both empty; when they
// share nothing (not even the final segment) the inputs come back unchanged.
func SplitCommonSuffix(a, b string) (prefixA, prefixB string) {
	i, j := len(a), len(b)
	for i > 0 && j > 0 && foldByte(a[i-1]) == foldByte(b[j-1]) {
		i--
		j--
	}
	if i == 0 && j == 0 {
		// Fully common: nothing to rewrite.
		return "", ""
	}

	// Snap forward so the suffix starts just after a separator; a partial
	// segment match ("lib/foo.c" vs "glib/foo.c") must not split a name.
	for i < len(a) && !isSep(a[i]) {
		// The characters at a[i] and b[j] stay aligned because the suffix
		// lengths are equal.
		i++
		j++
	}
	if i < len(a) && isSep(a[i]) {
		i++
		j++
	}
	if i > len(a) {
		i = len(a)
	}
	if j > len(b) {
		j = len(b)
	}
	return a[:i], b[:j]
}

func isSep(b byte) bool {
	return b == '/' || b == '\\'
}

// TrailingSuffixes returns the progressively shorter trailing-segment
// suffixes of a slash-normalized path, longest first, always ending with the
// bare file name:
//
//	TrailingSuffixes("a/b/c.go") → ["a/b/c.go", "b/c.go", "c.go"]
//
// Root search joins each suffix to a configured root in turn.
func TrailingSuffixes(p string) []string {
	p = strings.Trim(Normalize(p), "/")
	if p == "" {
		return nil
	}
	var out []string
	for {
		out = append(out, p)
		idx := strings.IndexByte(p, '/')
		if idx < 0 {
			return out
		}
		p = p[idx+1:]
	}
}
