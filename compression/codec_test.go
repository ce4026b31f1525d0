package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecsRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("banana apple cherry "), 500)

	for _, name := range []string{"none", "lz4", "zstd"} {
		t.Run(name, func(t *testing.T) {
			codec, err := ByName(name)
			require.NoError(t, err)
			assert.Equal(t, name, codec.Name())

			packed, err := codec.Compress(payload)
			require.NoError(t, err)
			if name != "none" {
				assert.Less(t, len(packed), len(payload))
			}

			unpacked, err := codec.Decompress(packed)
			require.NoError(t, err)
			assert.Equal(t, payload, unpacked)
		})
	}
}

func TestUnknownCodec(t *testing.T) {
	_, err := ByName("snappy")
	assert.Error(t, err)
}
