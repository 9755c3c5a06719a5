package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactError_Messages(t *testing.T) {
	e := NewArtifactError("resolve", "/old/proj/b.c", nil)
	assert.Equal(t, ErrorTypeUnresolvableArtifact, e.Type)
	assert.Equal(t, "unresolvable_artifact resolve failed for /old/proj/b.c", e.Error())
	assert.False(t, e.Timestamp.IsZero())

	cause := stderrors.New("permission denied")
	e = NewEmbeddedContentError("/log/embedded.c", cause)
	assert.Equal(t, ErrorTypeEmbeddedContent, e.Type)
	assert.Contains(t, e.Error(), "materialize")
	assert.Contains(t, e.Error(), "permission denied")
	assert.True(t, stderrors.Is(e, cause))
}

func TestSchemaError_Messages(t *testing.T) {
	e := NewSchemaVersionError("scan.sarif", "2.0.0")
	assert.Equal(t, `unsupported log schema version "2.0.0" in scan.sarif`, e.Error())

	cause := stderrors.New("unexpected EOF")
	d := NewDecodeError("scan.sarif", cause)
	assert.Contains(t, d.Error(), "scan.sarif")
	assert.True(t, stderrors.Is(d, cause))
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := stderrors.New("must be positive")
	e := NewConfigError("diagnostics.max_per_file", "-5", cause)
	assert.Contains(t, e.Error(), "diagnostics.max_per_file")
	assert.Contains(t, e.Error(), "-5")
	assert.True(t, stderrors.Is(e, cause))
}

func TestMultiError_FiltersNils(t *testing.T) {
	a := stderrors.New("a")
	b := stderrors.New("b")
	e := NewMultiError([]error{nil, a, nil, b})
	require.Len(t, e.Errors, 2)
	assert.Contains(t, e.Error(), "2 errors")
	assert.True(t, stderrors.Is(e, a))
	assert.True(t, stderrors.Is(e, b))

	single := NewMultiError([]error{a})
	assert.Equal(t, "a", single.Error())
	assert.Equal(t, "no errors", NewMultiError(nil).Error())
}
