package cmserr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := New(CodeAccessDenied, "write_text", "secrets/key.txt")
	assert.Equal(t, "write_text secrets/key.txt: access_denied", err.Error())

	wrapped := Wrap(CodeInternal, "read_text", "posts/a.md", fs.ErrPermission)
	assert.Contains(t, wrapped.Error(), "posts/a.md")
	assert.Contains(t, wrapped.Error(), "internal")
}

func TestWrapNil(t *testing.T) {
	var err error = Wrap(CodeGitSync, "pull", "", nil)
	// Typed nil must not escape as a non-nil error value through Wrap.
	assert.Nil(t, Wrap(CodeGitSync, "pull", "", nil))
	_ = err
}

func TestUnwrapChain(t *testing.T) {
	cause := fs.ErrNotExist
	err := Wrap(CodeNotFound, "read_text", "missing.md", cause)
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "get", "x")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	// Classification survives further wrapping.
	outer := fmt.Errorf("handling request: %w", New(CodeAccessDenied, "op", "p"))
	assert.Equal(t, CodeAccessDenied, CodeOf(outer))
	assert.True(t, IsAccessDenied(outer))
	assert.False(t, IsNotFound(outer))
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeNotFound, "get_record", "data/site.db")
	b := New(CodeNotFound, "read_text", "other.md")
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(CodeValidation, "", "")))
}
