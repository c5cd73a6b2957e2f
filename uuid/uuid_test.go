package uuid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIsNeverNil(t *testing.T) {
	require.False(t, New().IsNil())
}

func TestGoogleRoundTrip(t *testing.T) {
	id := New()
	require.Equal(t, id, FromGoogle(id.Google()))
}

func TestParseRoundTrip(t *testing.T) {
	id := New()
	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParseInvalidString(t *testing.T) {
	_, err := Parse("not-a-uuid")
	require.Error(t, err)
}

func TestNilIsNil(t *testing.T) {
	require.True(t, Nil.IsNil())
}
