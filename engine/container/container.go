// Package container splits and assembles the single-file binary glTF package
// (GLB): a 12-byte header followed by a JSON chunk and an optional BIN chunk.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
	"github.com/Carmen-Shannon/oxy-gltf/engine/resource"
)

// Container layout constants.
const (
	Magic           = 0x46546C67 // "glTF" in little-endian ASCII
	Version         = 2
	ChunkTypeJSON   = 0x4E4F534A // "JSON" in little-endian ASCII
	ChunkTypeBIN    = 0x004E4942 // "BIN\0" in little-endian ASCII
	HeaderSize      = 12
	ChunkHeaderSize = 8
)

// header is the 12-byte container header.
type header struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// chunkHeader precedes every chunk payload.
type chunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

// Container holds the byte ranges extracted from a binary package. JSON and BIN
// alias the input slice passed to Split.
type Container struct {
	// Version is the container version from the header.
	Version uint32

	// JSON is the raw JSON chunk payload, uninterpreted.
	JSON []byte

	// BIN is the embedded binary chunk payload. Nil when HasBIN is false.
	BIN []byte

	// HasBIN reports whether a BIN chunk was present (it may be empty).
	HasBIN bool

	// SkippedChunks counts chunks with unrecognized type tags.
	SkippedChunks int
}

// IsContainer reports whether data starts with the container magic.
//
// Parameters:
//   - data: the candidate file contents
//
// Returns:
//   - bool: true if data looks like a binary package
func IsContainer(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == Magic
}

// Split parses the container header and chunk table of data.
// Chunks with unrecognized type tags are skipped using their declared length.
//
// Parameters:
//   - data: the complete container bytes
//
// Returns:
//   - *Container: the JSON chunk and optional BIN chunk
//   - error: a format error if the header or chunk table is malformed
func Split(data []byte) (*Container, error) {
	if len(data) < HeaderSize {
		return nil, gerrors.Format("container too small: %d bytes, header needs %d", len(data), HeaderSize)
	}

	h := header{
		Magic:   binary.LittleEndian.Uint32(data[0:4]),
		Version: binary.LittleEndian.Uint32(data[4:8]),
		Length:  binary.LittleEndian.Uint32(data[8:12]),
	}

	if h.Magic != Magic {
		return nil, gerrors.Format("invalid container magic 0x%08x", h.Magic)
	}
	if h.Version != Version {
		return nil, gerrors.Format("unsupported container version %d: must be %d", h.Version, Version)
	}

	total := uint64(h.Length)
	if total < HeaderSize {
		return nil, gerrors.Format("declared length %d is smaller than the header", total)
	}
	if total > uint64(len(data)) {
		return nil, gerrors.Format("container truncated: declared length %d, have %d bytes", total, len(data))
	}

	c := &Container{Version: h.Version}
	offset := uint64(HeaderSize)
	chunkIndex := 0

	for offset < total {
		if total-offset < ChunkHeaderSize {
			return nil, gerrors.Format("chunk %d: truncated chunk header at offset %d", chunkIndex, offset)
		}

		ch := chunkHeader{
			ChunkLength: binary.LittleEndian.Uint32(data[offset : offset+4]),
			ChunkType:   binary.LittleEndian.Uint32(data[offset+4 : offset+8]),
		}
		start := offset + ChunkHeaderSize
		end := start + uint64(ch.ChunkLength)
		if end > total {
			return nil, gerrors.Format("chunk %d: length %d overruns container (ends at %d, total %d)", chunkIndex, ch.ChunkLength, end, total)
		}
		payload := data[start:end:end]

		switch {
		case chunkIndex == 0 && ch.ChunkType != ChunkTypeJSON:
			return nil, gerrors.Format("first chunk must be JSON, got type 0x%08x", ch.ChunkType)
		case ch.ChunkType == ChunkTypeJSON && chunkIndex == 0:
			c.JSON = payload
		case ch.ChunkType == ChunkTypeJSON:
			return nil, gerrors.Format("chunk %d: duplicate JSON chunk", chunkIndex)
		case ch.ChunkType == ChunkTypeBIN:
			if c.HasBIN {
				return nil, gerrors.Format("chunk %d: duplicate BIN chunk", chunkIndex)
			}
			c.BIN = payload
			c.HasBIN = true
		default:
			c.SkippedChunks++
		}

		offset = end
		chunkIndex++
	}

	if chunkIndex == 0 {
		return nil, gerrors.Format("container has no JSON chunk")
	}

	return c, nil
}

// Pack writes a container holding jsonData and, when bin is non-nil, a BIN
// chunk. The JSON chunk is padded with spaces and the BIN chunk with zeros to
// 4-byte boundaries.
//
// Parameters:
//   - w: destination writer
//   - jsonData: the JSON chunk payload
//   - bin: the BIN chunk payload, or nil to omit the chunk
//
// Returns:
//   - error: error if writing fails or the container would exceed 4 GiB
func Pack(w io.Writer, jsonData []byte, bin []byte) error {
	jsonPad := padding(len(jsonData))
	total := uint64(HeaderSize) + ChunkHeaderSize + uint64(len(jsonData)+jsonPad)
	binPad := 0
	if bin != nil {
		binPad = padding(len(bin))
		total += ChunkHeaderSize + uint64(len(bin)+binPad)
	}
	if total > uint64(^uint32(0)) {
		return errors.New("container length overflows uint32")
	}

	if err := binary.Write(w, binary.LittleEndian, header{Magic: Magic, Version: Version, Length: uint32(total)}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writeChunk(w, ChunkTypeJSON, jsonData, jsonPad, ' '); err != nil {
		return fmt.Errorf("failed to write JSON chunk: %w", err)
	}
	if bin != nil {
		if err := writeChunk(w, ChunkTypeBIN, bin, binPad, 0); err != nil {
			return fmt.Errorf("failed to write BIN chunk: %w", err)
		}
	}
	return nil
}

func writeChunk(w io.Writer, chunkType uint32, payload []byte, pad int, fill byte) error {
	ch := chunkHeader{ChunkLength: uint32(len(payload) + pad), ChunkType: chunkType}
	if err := binary.Write(w, binary.LittleEndian, ch); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if pad > 0 {
		fillBytes := [3]byte{fill, fill, fill}
		if _, err := w.Write(fillBytes[:pad]); err != nil {
			return err
		}
	}
	return nil
}

// padding returns the bytes needed to bring n to a multiple of 4.
func padding(n int) int {
	return (4 - n%4) % 4
}

// embeddedProvider serves the BIN chunk for absent URIs and forwards the rest.
type embeddedProvider struct {
	next   resource.Provider
	bin    []byte
	hasBIN bool
}

var _ resource.Provider = &embeddedProvider{}

// Provider wraps next so that fetches with an absent URI are answered with the
// container's BIN chunk. All other URIs pass through to next unchanged.
//
// Parameters:
//   - next: the provider for external resources, may be nil
//
// Returns:
//   - resource.Provider: the decorating provider
func (c *Container) Provider(next resource.Provider) resource.Provider {
	return &embeddedProvider{
		next:   next,
		bin:    c.BIN,
		hasBIN: c.HasBIN,
	}
}

func (p *embeddedProvider) Fetch(uri string) ([]byte, error) {
	if uri == "" {
		if !p.hasBIN {
			return nil, resource.ErrNoEmbeddedChunk
		}
		return p.bin, nil
	}
	if p.next == nil {
		return nil, fmt.Errorf("no provider for external resource %q", uri)
	}
	return p.next.Fetch(uri)
}
