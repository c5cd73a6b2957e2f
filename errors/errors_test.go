package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeOfRecoversSentinelCode(t *testing.T) {
	require.Equal(t, ObjectNotFound, CodeOf(ErrObjectNotFound))
	require.Equal(t, OK, CodeOf(nil))
}

func TestCodeOfUnwrapsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrSegmentNotFound)
	require.Equal(t, SegmentNotFound, CodeOf(wrapped))
}

func TestCodeOfForeignErrorIsInternalError(t *testing.T) {
	require.Equal(t, InternalError, CodeOf(fmt.Errorf("some other failure")))
}

func TestResultOkAndFail(t *testing.T) {
	ok := Ok(42)
	require.True(t, ok.IsOK())
	require.Equal(t, 42, ok.Value)

	fail := Fail[int](ErrInvalidParams)
	require.False(t, fail.IsOK())
	require.ErrorIs(t, fail.Err, ErrInvalidParams)
}

func TestErrorMessageFormatting(t *testing.T) {
	require.Equal(t, "OBJECT_NOT_FOUND", New(ObjectNotFound, "").Error())
	require.Equal(t, "OBJECT_NOT_FOUND: no such key", New(ObjectNotFound, "no such key").Error())
}
