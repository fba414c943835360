package hostwise

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &PersistenceError{Op: "list", Kind: "property", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "list property failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestProfileResolutionError_Unwrap(t *testing.T) {
	cause := errors.New("row api unavailable")
	err := &ProfileResolutionError{SubjectID: "sub-1", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "sub-1")
}

func TestDecodeError_Unwrap(t *testing.T) {
	cause := errors.New("unknown value")
	err := &DecodeError{Kind: "property", Field: "status", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"status"`)
}

func TestIsCancellation(t *testing.T) {
	assert.True(t, IsCancellation(context.Canceled))
	assert.True(t, IsCancellation(context.DeadlineExceeded))
	assert.True(t, IsCancellation(&PersistenceError{Op: "get", Kind: "property", Err: context.Canceled}))

	assert.False(t, IsCancellation(nil))
	assert.False(t, IsCancellation(errors.New("boom")))
	assert.False(t, IsCancellation(ErrNotFound))
}
