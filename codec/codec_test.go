package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name    string            `json:"name"`
	Values  []float32         `json:"values"`
	Labels  map[string]string `json:"labels"`
	Deleted bool              `json:"deleted"`
}

func samplePayload() payload {
	return payload{
		Name:   "snapshot-001",
		Values: []float32{0.25, -1.5, 3.75},
		Labels: map[string]string{"env": "test", "kind": "graph"},
	}
}

func roundtrip(t *testing.T, c Codec) {
	t.Helper()

	in := samplePayload()
	data, err := c.Marshal(in)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var out payload
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestJSONRoundtrip(t *testing.T) {
	c := JSON{}
	roundtrip(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestZstdRoundtrip(t *testing.T) {
	c, ok := NewZstd(JSON{})
	require.True(t, ok)
	roundtrip(t, c)
	assert.Equal(t, "json+zstd", c.Name())
}

func TestLZ4Roundtrip(t *testing.T) {
	c := NewLZ4(JSON{})
	roundtrip(t, c)
	assert.Equal(t, "json+lz4", c.Name())
}

func TestCompressionShrinksRepetitiveData(t *testing.T) {
	big := payload{Labels: map[string]string{}}
	for i := 0; i < 200; i++ {
		big.Values = append(big.Values, 1.0)
	}

	plain, err := JSON{}.Marshal(big)
	require.NoError(t, err)

	zc, ok := NewZstd(JSON{})
	require.True(t, ok)
	compressed, err := zc.Marshal(big)
	require.NoError(t, err)

	assert.Less(t, len(compressed), len(plain))
}

func TestUnmarshalGarbage(t *testing.T) {
	var out payload
	assert.Error(t, JSON{}.Unmarshal([]byte("{nope"), &out))

	zc, ok := NewZstd(JSON{})
	require.True(t, ok)
	assert.Error(t, zc.Unmarshal([]byte("not a zstd frame"), &out))

	assert.Error(t, NewLZ4(JSON{}).Unmarshal([]byte("not an lz4 frame"), &out))
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "json+zstd", "json+lz4"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("protobuf")
	assert.False(t, ok)
}

func TestDefaultIsJSON(t *testing.T) {
	assert.Equal(t, "json", Default.Name())
}

func TestMustMarshalPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustMarshal(JSON{}, make(chan int))
	})
	assert.NotPanics(t, func() {
		MustMarshal(JSON{}, samplePayload())
	})
}
