package document

import (
	"errors"

	"go.uber.org/zap"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
	"github.com/Carmen-Shannon/oxy-gltf/engine/resource"
)

// Bytes returns the buffer's bytes, fetching them through the document's
// resolver on first use. The data (or the error) is cached for the lifetime
// of the document; concurrent first calls fetch once.
//
// Returns:
//   - []byte: exactly ByteLength bytes, must not be modified
//   - error: an IO error if the fetch fails, an out-of-range error if fewer than ByteLength bytes arrive
func (b *Buffer) Bytes() ([]byte, error) {
	b.once.Do(func() {
		data, err := b.doc.resolver.Fetch(b.URI)
		if err != nil {
			b.err = locate(err, "buffers", b.Index)
			return
		}
		if len(data) < b.ByteLength {
			b.err = gerrors.OutOfRange("buffers", b.Index, "fetched %d bytes, byteLength is %d", len(data), b.ByteLength)
			return
		}
		b.data = data[:b.ByteLength:b.ByteLength]
		b.doc.logger.Debug("fetched buffer",
			zap.Int("index", b.Index),
			zap.Bool("embedded", b.URI == ""),
			zap.Bool("dataURI", resource.IsDataURI(b.URI)),
			zap.Int("bytes", len(data)),
		)
	})
	return b.data, b.err
}

// Bytes returns the view's range of its buffer.
//
// Returns:
//   - []byte: ByteLength bytes, must not be modified
//   - error: the buffer's fetch error, or an out-of-range error
func (v *BufferView) Bytes() ([]byte, error) {
	data, err := v.Buffer.Bytes()
	if err != nil {
		return nil, err
	}
	end := v.ByteOffset + v.ByteLength
	if end > len(data) {
		return nil, gerrors.OutOfRange("bufferViews", v.Index, "range [%d, %d) exceeds buffer of %d bytes", v.ByteOffset, end, len(data))
	}
	return data[v.ByteOffset:end:end], nil
}

// Bytes returns the encoded image (PNG, JPEG ...) from its buffer view or URI.
// URI images are fetched once and cached.
//
// Returns:
//   - []byte: the encoded image bytes
//   - error: an IO or out-of-range error
func (img *Image) Bytes() ([]byte, error) {
	img.once.Do(func() {
		if img.BufferView != nil {
			img.data, img.err = img.BufferView.Bytes()
			return
		}
		data, err := img.doc.resolver.Fetch(img.URI)
		if err != nil {
			img.err = locate(err, "images", img.Index)
			return
		}
		img.data = data
	})
	return img.data, img.err
}

// FetchBuffers fetches every buffer in order and returns the first failure.
//
// Returns:
//   - error: the first buffer error
func (d *Document) FetchBuffers() error {
	for _, b := range d.Buffers {
		if _, err := b.Bytes(); err != nil {
			return err
		}
	}
	return nil
}

// locate attaches the entity that triggered a fetch to an unlocated error.
func locate(err error, entity string, index int) error {
	var ge *gerrors.Error
	if errors.As(err, &ge) && ge.Entity == "" {
		located := *ge
		located.Entity, located.Index = entity, index
		located.Field = "uri"
		return &located
	}
	return err
}
