package document

import (
	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
)

// merged returns the accessor's elements with the sparse substitution
// applied, tightly packed at ElementSize. The result is computed on first use
// and shared by every later read.
func (a *Accessor) merged() ([]byte, error) {
	a.sparseOnce.Do(func() {
		a.sparseData, a.sparseErr = a.applySparse()
	})
	return a.sparseData, a.sparseErr
}

// applySparse copies the base elements (zeros without a buffer view) and
// overwrites the elements named by the sparse indices.
func (a *Accessor) applySparse() ([]byte, error) {
	size := a.ElementSize()
	if err := a.checkAlloc(size); err != nil {
		return nil, err
	}
	dense := make([]byte, a.Count*size)
	if a.BufferView != nil {
		for i := 0; i < a.Count; i++ {
			src, err := a.baseElement(i)
			if err != nil {
				return nil, err
			}
			copy(dense[i*size:], src)
		}
	}

	s := a.Sparse
	indices, err := s.Indices.BufferView.Bytes()
	if err != nil {
		return nil, err
	}
	values, err := s.Values.BufferView.Bytes()
	if err != nil {
		return nil, err
	}

	indexSize := s.Indices.ComponentType.Size()
	if end := s.Indices.ByteOffset + s.Count*indexSize; end > len(indices) {
		return nil, gerrors.OutOfRange("accessors", a.Index, "sparse indices end at byte %d, bufferView has %d", end, len(indices))
	}
	if end := s.Values.ByteOffset + s.Count*size; end > len(values) {
		return nil, gerrors.OutOfRange("accessors", a.Index, "sparse values end at byte %d, bufferView has %d", end, len(values))
	}

	prev := int64(-1)
	for k := 0; k < s.Count; k++ {
		idx := decodeInt(s.Indices.ComponentType, indices[s.Indices.ByteOffset+k*indexSize:])
		if idx <= prev {
			return nil, gerrors.OutOfRange("accessors", a.Index,
				"sparse index %d at position %d does not increase on previous index %d", idx, k, prev)
		}
		if idx >= int64(a.Count) {
			return nil, gerrors.OutOfRange("accessors", a.Index,
				"sparse index %d at position %d is outside [0, %d)", idx, k, a.Count)
		}
		src := values[s.Values.ByteOffset+k*size:]
		copy(dense[int(idx)*size:(int(idx)+1)*size], src)
		prev = idx
	}
	return dense, nil
}
