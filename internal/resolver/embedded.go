package resolver

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	naverrors "github.com/standardbeagle/sarifnav/internal/errors"
)

// materializeEmbedded writes an embedded artifact payload to a read-only
// temp file keyed by content hash, bypassing the path-resolution strategies
// entirely. Identical content across runs shares one file.
func (r *Resolver) materializeEmbedded(art Artifact) (string, error) {
	payload := art.EmbeddedBinary
	if len(payload) == 0 {
		// Binary contents arrive base64-encoded in the log; the sarif
		// layer decodes before handing them here, but text is the common
		// case.
		payload = []byte(art.EmbeddedText)
	}

	name := fmt.Sprintf("%016x%s", xxhash.Sum64(payload), embeddedExt(art.Path))
	path := filepath.Join(r.embeddedDir, name)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(r.embeddedDir, 0o755); err != nil {
		return "", naverrors.NewEmbeddedContentError(art.Path, err)
	}

	// Write-then-rename keeps concurrent materializations of the same
	// content from observing a partial file.
	tmp, err := os.CreateTemp(r.embeddedDir, name+".tmp")
	if err != nil {
		return "", naverrors.NewEmbeddedContentError(art.Path, err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", naverrors.NewEmbeddedContentError(art.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", naverrors.NewEmbeddedContentError(art.Path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o444); err != nil {
		os.Remove(tmp.Name())
		return "", naverrors.NewEmbeddedContentError(art.Path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", naverrors.NewEmbeddedContentError(art.Path, err)
	}
	return path, nil
}

// embeddedExt keeps the logged extension so editors syntax-highlight the
// materialized file.
func embeddedExt(logged string) string {
	ext := filepath.Ext(logged)
	if ext == "" {
		return ".txt"
	}
	return ext
}

// DecodeEmbeddedBinary decodes a SARIF binary content field.
func DecodeEmbeddedBinary(b64 string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(b64)
}
