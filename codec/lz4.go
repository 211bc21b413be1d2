package codec

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 wraps another codec with lz4 frame compression. Lower ratio than
// zstd but faster to compress; useful for frequent checkpointing.
type LZ4 struct {
	inner Codec
}

// NewLZ4 creates an lz4-compressing codec around inner.
func NewLZ4(inner Codec) *LZ4 {
	return &LZ4{inner: inner}
}

// Marshal encodes with the inner codec, then compresses.
func (c *LZ4) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decompresses, then decodes with the inner codec.
func (c *LZ4) Unmarshal(data []byte, v any) error {
	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return err
	}
	return c.inner.Unmarshal(raw, v)
}

// Name returns the unique name of the codec.
func (c *LZ4) Name() string { return c.inner.Name() + "+lz4" }
