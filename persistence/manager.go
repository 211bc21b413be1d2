// Package persistence saves and loads index snapshots through a blobstore.
//
// Snapshots are self-describing: a fixed binary header records the codec
// name and a CRC32 of the payload, so any store/codec combination that
// wrote a snapshot can be detected and verified on load.
package persistence

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/vexo/blobstore"
	"github.com/hupe1980/vexo/codec"
	"github.com/hupe1980/vexo/resource"
)

// ioChunkSize bounds single IO-limiter reservations so a payload larger
// than the limiter burst still makes progress.
const ioChunkSize = 256 << 10

const (
	// MagicNumber identifies snapshot blobs (ASCII: "VXO1").
	MagicNumber = 0x56584F31
	// Version is the current snapshot format version.
	Version = 1
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported snapshot version")
	ErrTruncated      = errors.New("truncated snapshot")
)

// ErrUnknownCodec indicates a snapshot written with a codec this build
// does not know.
type ErrUnknownCodec struct {
	Name string
}

func (e *ErrUnknownCodec) Error() string {
	return fmt.Sprintf("unknown snapshot codec: %q", e.Name)
}

// Manager writes and reads snapshot blobs. The zero resource controller
// (nil) disables IO throttling.
type Manager struct {
	store blobstore.Store
	codec codec.Codec
	rc    *resource.Controller
}

// NewManager creates a snapshot manager. A nil codec selects the default.
func NewManager(store blobstore.Store, c codec.Codec, rc *resource.Controller) *Manager {
	if c == nil {
		c = codec.Default
	}
	return &Manager{store: store, codec: c, rc: rc}
}

// Save encodes v with the manager's codec, wraps it in a checksummed
// header, and writes it to the store under name.
func (m *Manager) Save(ctx context.Context, name string, v any) error {
	payload, err := m.codec.Marshal(v)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	writeHeader(&buf, m.codec.Name(), payload)

	w := resource.NewRateLimitedWriter(ctx, m.rc, &buf)
	for off := 0; off < len(payload); off += ioChunkSize {
		end := min(off+ioChunkSize, len(payload))
		if _, err := w.Write(payload[off:end]); err != nil {
			return err
		}
	}

	return m.store.Put(ctx, name, buf.Bytes())
}

// Load reads a snapshot blob, verifies its checksum, and decodes the
// payload into v using the codec recorded in the header.
func (m *Manager) Load(ctx context.Context, name string, v any) error {
	data, err := m.store.Get(ctx, name)
	if err != nil {
		return err
	}

	if err := throttle(ctx, m.rc, data); err != nil {
		return err
	}

	codecName, checksum, payload, err := parseHeader(data)
	if err != nil {
		return err
	}

	if actual := ComputeChecksum(payload); actual != checksum {
		return &ChecksumMismatchError{Expected: checksum, Actual: actual}
	}

	c, ok := codec.ByName(codecName)
	if !ok {
		return &ErrUnknownCodec{Name: codecName}
	}
	return c.Unmarshal(payload, v)
}

// throttle accounts data against the controller's IO limit in chunks.
func throttle(ctx context.Context, rc *resource.Controller, data []byte) error {
	if rc == nil {
		return nil
	}
	r := resource.NewRateLimitedReader(ctx, rc, bytes.NewReader(data))
	buf := make([]byte, ioChunkSize)
	for {
		if _, err := r.Read(buf); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Delete removes a snapshot blob.
func (m *Manager) Delete(ctx context.Context, name string) error {
	return m.store.Delete(ctx, name)
}

// List returns all snapshot names with the given prefix.
func (m *Manager) List(ctx context.Context, prefix string) ([]string, error) {
	return m.store.List(ctx, prefix)
}

// Header layout, all integers big-endian:
//
//	magic    uint32
//	version  uint32
//	codecLen uint16, codec name bytes
//	paylen   uint64
//	checksum uint32 (CRC32 of payload)
func writeHeader(buf *bytes.Buffer, codecName string, payload []byte) {
	var scratch [8]byte

	binary.BigEndian.PutUint32(scratch[:4], MagicNumber)
	buf.Write(scratch[:4])
	binary.BigEndian.PutUint32(scratch[:4], Version)
	buf.Write(scratch[:4])

	binary.BigEndian.PutUint16(scratch[:2], uint16(len(codecName)))
	buf.Write(scratch[:2])
	buf.WriteString(codecName)

	binary.BigEndian.PutUint64(scratch[:8], uint64(len(payload)))
	buf.Write(scratch[:8])

	binary.BigEndian.PutUint32(scratch[:4], ComputeChecksum(payload))
	buf.Write(scratch[:4])
}

func parseHeader(data []byte) (codecName string, checksum uint32, payload []byte, err error) {
	if len(data) < 10 {
		return "", 0, nil, ErrTruncated
	}
	if binary.BigEndian.Uint32(data[0:4]) != MagicNumber {
		return "", 0, nil, ErrInvalidMagic
	}
	if binary.BigEndian.Uint32(data[4:8]) != Version {
		return "", 0, nil, ErrInvalidVersion
	}

	nameLen := int(binary.BigEndian.Uint16(data[8:10]))
	rest := data[10:]
	if len(rest) < nameLen+12 {
		return "", 0, nil, ErrTruncated
	}
	codecName = string(rest[:nameLen])
	rest = rest[nameLen:]

	payLen := binary.BigEndian.Uint64(rest[:8])
	checksum = binary.BigEndian.Uint32(rest[8:12])
	rest = rest[12:]

	if uint64(len(rest)) < payLen {
		return "", 0, nil, ErrTruncated
	}
	return codecName, checksum, rest[:payLen], nil
}
