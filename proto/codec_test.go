package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestJSONCodecRegisteredUnderProtoName(t *testing.T) {
	c := encoding.GetCodec("proto")
	require.NotNil(t, c)
	require.Equal(t, "proto", c.Name())
}

func TestJSONCodecRoundTrip(t *testing.T) {
	c := jsonCodec{}
	req := &ExistKeyRequest{Key: "hello"}

	data, err := c.Marshal(req)
	require.NoError(t, err)

	var out ExistKeyRequest
	require.NoError(t, c.Unmarshal(data, &out))
	require.Equal(t, req.Key, out.Key)
}
