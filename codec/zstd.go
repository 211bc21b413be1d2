package codec

import (
	"github.com/klauspost/compress/zstd"
)

// Zstd wraps another codec with zstd compression. Good default for large
// graph snapshots: high ratio at high decode speed.
type Zstd struct {
	inner Codec
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewZstd creates a zstd-compressing codec around inner. The shared
// encoder/decoder pair is safe for concurrent EncodeAll/DecodeAll use.
func NewZstd(inner Codec) (*Zstd, bool) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, false
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, false
	}
	return &Zstd{inner: inner, enc: enc, dec: dec}, true
}

// Marshal encodes with the inner codec, then compresses.
func (c *Zstd) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(raw, nil), nil
}

// Unmarshal decompresses, then decodes with the inner codec.
func (c *Zstd) Unmarshal(data []byte, v any) error {
	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return err
	}
	return c.inner.Unmarshal(raw, v)
}

// Name returns the unique name of the codec.
func (c *Zstd) Name() string { return c.inner.Name() + "+zstd" }
