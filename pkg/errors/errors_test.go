package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	t.Run("WithoutWrapped", func(t *testing.T) {
		err := New(CodeParseError, "bad header")
		assert.Equal(t, "[PARSE_ERROR] bad header", err.Error())
	})

	t.Run("WithWrapped", func(t *testing.T) {
		inner := errors.New("unexpected token")
		err := Wrap(CodeParseError, "bad header", inner)
		assert.Equal(t, "[PARSE_ERROR] bad header: unexpected token", err.Error())
	})
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := Wrap(CodeIOError, "write failed", inner)

	assert.Equal(t, inner, errors.Unwrap(err))
	assert.True(t, errors.Is(err, inner))
}

func TestAppError_Is(t *testing.T) {
	err := Wrap(CodeIOError, "read failed", errors.New("eof"))

	assert.True(t, errors.Is(err, ErrIOError))
	assert.False(t, errors.Is(err, ErrParseError))
	assert.True(t, IsIOError(err))
	assert.False(t, IsParseError(err))
}

func TestAppError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("fold failed: %w", Wrap(CodeConfigError, "zero workers", nil))

	assert.True(t, IsConfigError(err))
	assert.Equal(t, CodeConfigError, GetErrorCode(err))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, CodeUploadError, GetErrorCode(ErrUploadError))
	assert.Equal(t, CodeUnknown, GetErrorCode(errors.New("plain")))
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "parse error", GetErrorMessage(ErrParseError))
	assert.Equal(t, "plain", GetErrorMessage(errors.New("plain")))
	assert.Equal(t, "", GetErrorMessage(nil))
}
