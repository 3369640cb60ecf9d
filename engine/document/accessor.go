package document

import (
	"fmt"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
)

// zeroElement backs reads of accessors without a buffer view. The largest
// element is a MAT4 of 4-byte components.
var zeroElement [64]byte

// ElementSize returns the byte size of one element. Matrix columns of 1- and
// 2-byte components are padded to 4-byte boundaries.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#data-alignment
//
// Returns:
//   - int: the element size in bytes
func (a *Accessor) ElementSize() int {
	if a.Type.IsMatrix() {
		return a.Type.rows() * a.columnStride()
	}
	return a.Type.Components() * a.ComponentType.Size()
}

// columnStride returns the byte distance between matrix columns.
func (a *Accessor) columnStride() int {
	return align4(a.Type.rows() * a.ComponentType.Size())
}

// Stride returns the distance between consecutive elements: the buffer view's
// byteStride when declared, the element size otherwise.
//
// Returns:
//   - int: the element stride in bytes
func (a *Accessor) Stride() int {
	if a.BufferView != nil && a.BufferView.ByteStride != 0 {
		return a.BufferView.ByteStride
	}
	return a.ElementSize()
}

// ByteLength returns the number of buffer view bytes the accessor spans,
// starting at ByteOffset.
//
// Returns:
//   - int: the spanned byte length
func (a *Accessor) ByteLength() int {
	stride := 0
	if a.BufferView != nil {
		stride = a.BufferView.ByteStride
	}
	return span(a.Count, a.ElementSize(), stride)
}

// ElementRange returns the byte range element i occupies within the buffer
// view: [ByteOffset + i×Stride, +ElementSize).
//
// Parameters:
//   - i: the element index
//
// Returns:
//   - int: the first byte of the element
//   - int: one past the last byte of the element
//   - error: an out-of-range error if i is outside [0, Count)
func (a *Accessor) ElementRange(i int) (int, int, error) {
	if err := a.checkIndex(i); err != nil {
		return 0, 0, err
	}
	start := a.ByteOffset + i*a.Stride()
	return start, start + a.ElementSize(), nil
}

func (a *Accessor) checkIndex(i int) error {
	if i < 0 || i >= a.Count {
		return gerrors.New(gerrors.KindOutOfRange).Entity("accessors", a.Index).Value(i).
			Detail("element %d outside [0, %d)", i, a.Count).Build()
	}
	return nil
}

// maxAlloc bounds the bytes a single bulk read may allocate.
const maxAlloc = 1 << 34

// checkAlloc reports an out-of-range error when Count values of per bytes do
// not fit in memory. Accessors backed only by a buffer view must also have
// their last element available, so the allocation never outgrows the data.
func (a *Accessor) checkAlloc(per int) error {
	if a.Count < 0 || (per > 0 && a.Count > maxAlloc/per) {
		return gerrors.New(gerrors.KindOutOfRange).Entity("accessors", a.Index).Field("count").Value(a.Count).
			Detail("%d elements of %d bytes cannot be allocated", a.Count, per).Build()
	}
	if a.Count > 0 && a.Sparse == nil && a.BufferView != nil {
		if _, err := a.baseElement(a.Count - 1); err != nil {
			return err
		}
	}
	return nil
}

// componentOffset returns the offset of component j inside an element.
// Matrices are stored column-major.
func (a *Accessor) componentOffset(j int) int {
	size := a.ComponentType.Size()
	if a.Type.IsMatrix() {
		rows := a.Type.rows()
		return (j/rows)*a.columnStride() + (j%rows)*size
	}
	return j * size
}

// element returns the ElementSize bytes of element i, with any sparse
// substitution applied. The slice must not be modified.
func (a *Accessor) element(i int) ([]byte, error) {
	if err := a.checkIndex(i); err != nil {
		return nil, err
	}
	if a.Sparse != nil {
		merged, err := a.merged()
		if err != nil {
			return nil, err
		}
		size := a.ElementSize()
		return merged[i*size : (i+1)*size], nil
	}
	return a.baseElement(i)
}

// baseElement reads element i from the buffer view, ignoring sparse data.
func (a *Accessor) baseElement(i int) ([]byte, error) {
	size := a.ElementSize()
	if a.BufferView == nil {
		return zeroElement[:size], nil
	}

	view, err := a.BufferView.Bytes()
	if err != nil {
		return nil, err
	}
	start := a.ByteOffset + i*a.Stride()
	end := start + size
	if end > len(view) {
		return nil, gerrors.OutOfRange("accessors", a.Index,
			"element %d needs bytes [%d, %d) of bufferView %d, which has %d", i, start, end, a.BufferView.Index, len(view))
	}
	return view[start:end], nil
}

// ReadFloat reads element i into dst as floats. Integer components are
// normalized when the accessor is Normalized and converted as-is otherwise.
//
// Parameters:
//   - i: the element index
//   - dst: destination, at least Type.Components() long
//
// Returns:
//   - error: an out-of-range error if i is outside [0, Count) or the bytes are unavailable
func (a *Accessor) ReadFloat(i int, dst []float32) error {
	n := a.Type.Components()
	if len(dst) < n {
		return fmt.Errorf("destination holds %d values, element has %d", len(dst), n)
	}
	b, err := a.element(i)
	if err != nil {
		return err
	}
	for j := 0; j < n; j++ {
		dst[j] = decodeFloat(a.ComponentType, a.Normalized, b[a.componentOffset(j):])
	}
	return nil
}

// ReadUint reads element i into dst as unsigned integers.
//
// Parameters:
//   - i: the element index
//   - dst: destination, at least Type.Components() long
//
// Returns:
//   - error: a type-mismatch error for FLOAT data or negative values, or an out-of-range error
func (a *Accessor) ReadUint(i int, dst []uint32) error {
	if !a.ComponentType.IsInteger() {
		return gerrors.TypeMismatch("accessors", a.Index, "cannot read %s components as unsigned integers", a.ComponentType)
	}
	n := a.Type.Components()
	if len(dst) < n {
		return fmt.Errorf("destination holds %d values, element has %d", len(dst), n)
	}
	b, err := a.element(i)
	if err != nil {
		return err
	}
	for j := 0; j < n; j++ {
		v := decodeInt(a.ComponentType, b[a.componentOffset(j):])
		if v < 0 {
			return gerrors.TypeMismatch("accessors", a.Index, "component %d of element %d is negative (%d)", j, i, v)
		}
		dst[j] = uint32(v)
	}
	return nil
}

// Float32s reads every element as floats, flattened to Count×Components values.
//
// Returns:
//   - []float32: the flattened values
//   - error: error if any element cannot be read
func (a *Accessor) Float32s() ([]float32, error) {
	n := a.Type.Components()
	if err := a.checkAlloc(n * 4); err != nil {
		return nil, err
	}
	out := make([]float32, a.Count*n)
	for i := 0; i < a.Count; i++ {
		if err := a.ReadFloat(i, out[i*n:(i+1)*n]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Uint32s reads every element as unsigned integers, flattened to Count×Components values.
//
// Returns:
//   - []uint32: the flattened values
//   - error: error if the data is not unsigned-integer compatible or unreadable
func (a *Accessor) Uint32s() ([]uint32, error) {
	n := a.Type.Components()
	if err := a.checkAlloc(n * 4); err != nil {
		return nil, err
	}
	out := make([]uint32, a.Count*n)
	for i := 0; i < a.Count; i++ {
		if err := a.ReadUint(i, out[i*n:(i+1)*n]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *Accessor) expectType(want AccessorType) error {
	if a.Type != want {
		return gerrors.TypeMismatch("accessors", a.Index, "accessor is %s, want %s", a.Type, want)
	}
	return nil
}

// ReadScalars reads a SCALAR accessor as floats.
//
// Returns:
//   - []float32: one value per element
//   - error: a type-mismatch error for other shapes, or a read error
func (a *Accessor) ReadScalars() ([]float32, error) {
	if err := a.expectType(AccessorScalar); err != nil {
		return nil, err
	}
	return a.Float32s()
}

// ReadVec2 reads a VEC2 accessor as floats.
//
// Returns:
//   - [][2]float32: one vector per element
//   - error: a type-mismatch error for other shapes, or a read error
func (a *Accessor) ReadVec2() ([][2]float32, error) {
	if err := a.expectType(AccessorVec2); err != nil {
		return nil, err
	}
	flat, err := a.Float32s()
	if err != nil {
		return nil, err
	}
	out := make([][2]float32, a.Count)
	for i := range out {
		copy(out[i][:], flat[i*2:])
	}
	return out, nil
}

// ReadVec3 reads a VEC3 accessor as floats.
//
// Returns:
//   - [][3]float32: one vector per element
//   - error: a type-mismatch error for other shapes, or a read error
func (a *Accessor) ReadVec3() ([][3]float32, error) {
	if err := a.expectType(AccessorVec3); err != nil {
		return nil, err
	}
	flat, err := a.Float32s()
	if err != nil {
		return nil, err
	}
	out := make([][3]float32, a.Count)
	for i := range out {
		copy(out[i][:], flat[i*3:])
	}
	return out, nil
}

// ReadVec4 reads a VEC4 accessor as floats.
//
// Returns:
//   - [][4]float32: one vector per element
//   - error: a type-mismatch error for other shapes, or a read error
func (a *Accessor) ReadVec4() ([][4]float32, error) {
	if err := a.expectType(AccessorVec4); err != nil {
		return nil, err
	}
	flat, err := a.Float32s()
	if err != nil {
		return nil, err
	}
	out := make([][4]float32, a.Count)
	for i := range out {
		copy(out[i][:], flat[i*4:])
	}
	return out, nil
}

// ReadMat4 reads a MAT4 accessor as column-major float matrices.
//
// Returns:
//   - [][16]float32: one matrix per element
//   - error: a type-mismatch error for other shapes, or a read error
func (a *Accessor) ReadMat4() ([][16]float32, error) {
	if err := a.expectType(AccessorMat4); err != nil {
		return nil, err
	}
	flat, err := a.Float32s()
	if err != nil {
		return nil, err
	}
	out := make([][16]float32, a.Count)
	for i := range out {
		copy(out[i][:], flat[i*16:])
	}
	return out, nil
}

// ReadUvec4 reads a VEC4 integer accessor, such as JOINTS_0, as unsigned integers.
//
// Returns:
//   - [][4]uint32: one vector per element
//   - error: a type-mismatch error for other shapes or FLOAT data, or a read error
func (a *Accessor) ReadUvec4() ([][4]uint32, error) {
	if err := a.expectType(AccessorVec4); err != nil {
		return nil, err
	}
	flat, err := a.Uint32s()
	if err != nil {
		return nil, err
	}
	out := make([][4]uint32, a.Count)
	for i := range out {
		copy(out[i][:], flat[i*4:])
	}
	return out, nil
}
