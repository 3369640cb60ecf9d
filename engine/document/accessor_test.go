package document

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
	"github.com/Carmen-Shannon/oxy-gltf/engine/resource"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		ct   ComponentType
		v    int64
		want float64
	}{
		{ComponentUnsignedByte, 0, 0},
		{ComponentUnsignedByte, 255, 1},
		{ComponentByte, 127, 1},
		{ComponentByte, -127, -1},
		{ComponentByte, -128, -1},
		{ComponentUnsignedShort, 65535, 1},
		{ComponentShort, -32768, -1},
		{ComponentShort, 0, 0},
		{ComponentUnsignedInt, 7, 7},
	}
	for _, tt := range tests {
		if got := Normalize(tt.ct, tt.v); got != tt.want {
			t.Errorf("Normalize(%s, %d) = %v, want %v", tt.ct, tt.v, got, tt.want)
		}
	}
}

func TestQuantize_RoundTrip(t *testing.T) {
	if got := Quantize(ComponentUnsignedByte, 1.0); got != 255 {
		t.Errorf("Quantize(u8, 1.0) = %d, want 255", got)
	}
	if got := Quantize(ComponentShort, -1.0); got != -32767 {
		t.Errorf("Quantize(i16, -1.0) = %d, want -32767", got)
	}
	for _, ct := range []ComponentType{ComponentByte, ComponentUnsignedByte, ComponentShort, ComponentUnsignedShort} {
		for _, v := range []int64{0, 1, 17, 100} {
			if got := Quantize(ct, Normalize(ct, v)); got != v {
				t.Errorf("Quantize(Normalize(%s, %d)) = %d", ct, v, got)
			}
		}
	}
}

func TestAccessor_InterleavedStride(t *testing.T) {
	data := concat(floatsLE(1, 2, 3, 0), floatsLE(4, 5, 6, 0))
	g := singleBuffer(data, map[string]any{"byteLength": 32, "byteStride": 16})
	g["accessors"] = []any{map[string]any{"bufferView": 0, "componentType": 5126, "count": 2, "type": "VEC3"}}
	a := mustParse(t, g).Accessors[0]

	if a.Stride() != 16 || a.ElementSize() != 12 || a.ByteLength() != 28 {
		t.Errorf("stride/size/length = %d/%d/%d, want 16/12/28", a.Stride(), a.ElementSize(), a.ByteLength())
	}
	for i, want := range [][2]int{{0, 12}, {16, 28}} {
		start, end, err := a.ElementRange(i)
		if err != nil || start != want[0] || end != want[1] {
			t.Errorf("ElementRange(%d) = [%d, %d) %v, want [%d, %d)", i, start, end, err, want[0], want[1])
		}
	}
	if _, _, err := a.ElementRange(2); !errors.Is(err, gerrors.ErrOutOfRange) {
		t.Errorf("ElementRange(2) error = %v, want out of range", err)
	}

	got, err := a.ReadVec3()
	if err != nil {
		t.Fatalf("ReadVec3() error: %v", err)
	}
	if diff := cmp.Diff([][3]float32{{1, 2, 3}, {4, 5, 6}}, got); diff != "" {
		t.Errorf("ReadVec3() mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessor_Normalized(t *testing.T) {
	g := singleBuffer([]byte{0, 255, 51, 0}, map[string]any{"byteLength": 4})
	g["accessors"] = []any{
		map[string]any{"bufferView": 0, "componentType": 5121, "normalized": true, "count": 3, "type": "SCALAR"},
		map[string]any{"bufferView": 0, "componentType": 5121, "count": 3, "type": "SCALAR"},
	}
	doc := mustParse(t, g)

	norm, err := doc.Accessors[0].ReadScalars()
	if err != nil {
		t.Fatalf("ReadScalars() error: %v", err)
	}
	if diff := cmp.Diff([]float32{0, 1, 0.2}, norm); diff != "" {
		t.Errorf("normalized mismatch (-want +got):\n%s", diff)
	}

	raw, err := doc.Accessors[1].ReadScalars()
	if err != nil {
		t.Fatalf("ReadScalars() error: %v", err)
	}
	if diff := cmp.Diff([]float32{0, 255, 51}, raw); diff != "" {
		t.Errorf("unnormalized mismatch (-want +got):\n%s", diff)
	}

	ints, err := doc.Accessors[0].Uint32s()
	if err != nil {
		t.Fatalf("Uint32s() error: %v", err)
	}
	if diff := cmp.Diff([]uint32{0, 255, 51}, ints); diff != "" {
		t.Errorf("Uint32s mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessor_MatrixColumnPadding(t *testing.T) {
	// MAT2 of bytes: each 2-byte column is padded to 4.
	g := singleBuffer([]byte{1, 2, 0, 0, 3, 4, 0, 0}, map[string]any{"byteLength": 8})
	g["accessors"] = []any{map[string]any{"bufferView": 0, "componentType": 5121, "count": 1, "type": "MAT2"}}
	a := mustParse(t, g).Accessors[0]

	if a.ElementSize() != 8 {
		t.Errorf("ElementSize() = %d, want 8", a.ElementSize())
	}
	dst := make([]float32, 4)
	if err := a.ReadFloat(0, dst); err != nil {
		t.Fatalf("ReadFloat() error: %v", err)
	}
	if diff := cmp.Diff([]float32{1, 2, 3, 4}, dst); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}

	mat3 := &Accessor{ComponentType: ComponentShort, Type: AccessorMat3}
	if mat3.ElementSize() != 24 {
		t.Errorf("MAT3 short ElementSize() = %d, want 24", mat3.ElementSize())
	}
	mat4 := &Accessor{ComponentType: ComponentFloat, Type: AccessorMat4}
	if mat4.ElementSize() != 64 {
		t.Errorf("MAT4 float ElementSize() = %d, want 64", mat4.ElementSize())
	}
}

func TestAccessor_TypeMismatch(t *testing.T) {
	data := concat(floatsLE(1, 2), []byte{0xff, 0, 0, 0})
	g := singleBuffer(data, map[string]any{"byteLength": 8}, map[string]any{"byteOffset": 8, "byteLength": 4})
	g["accessors"] = []any{
		map[string]any{"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
		map[string]any{"bufferView": 1, "componentType": 5120, "count": 1, "type": "SCALAR"},
	}
	doc := mustParse(t, g)

	if _, err := doc.Accessors[0].ReadVec3(); !errors.Is(err, gerrors.ErrTypeMismatch) {
		t.Errorf("ReadVec3() on SCALAR error = %v, want type mismatch", err)
	}
	if _, err := doc.Accessors[0].Uint32s(); !errors.Is(err, gerrors.ErrTypeMismatch) {
		t.Errorf("Uint32s() on FLOAT error = %v, want type mismatch", err)
	}
	if _, err := doc.Accessors[1].Uint32s(); !errors.Is(err, gerrors.ErrTypeMismatch) {
		t.Errorf("Uint32s() on negative byte error = %v, want type mismatch", err)
	}
	if v, err := doc.Accessors[1].ReadScalars(); err != nil || v[0] != -1 {
		t.Errorf("ReadScalars() = %v, %v, want [-1]", v, err)
	}
}

func TestAccessor_NoBufferViewReadsZeros(t *testing.T) {
	doc := mustParse(t, gltf{"accessors": []any{map[string]any{"componentType": 5126, "count": 3, "type": "VEC2"}}})
	got, err := doc.Accessors[0].ReadVec2()
	if err != nil {
		t.Fatalf("ReadVec2() error: %v", err)
	}
	if diff := cmp.Diff([][2]float32{{0, 0}, {0, 0}, {0, 0}}, got); diff != "" {
		t.Errorf("zeros mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessor_ViewBounds(t *testing.T) {
	tests := []struct {
		name string
		view map[string]any
		acc  map[string]any
		kind *gerrors.Error
		loc  string
	}{
		{
			name: "view beyond buffer",
			view: map[string]any{"byteOffset": 8, "byteLength": 16},
			acc:  map[string]any{"componentType": 5126, "count": 1, "type": "SCALAR"},
			kind: gerrors.ErrOutOfRange,
			loc:  "bufferViews[0].byteLength",
		},
		{
			name: "accessor beyond view",
			view: map[string]any{"byteLength": 16},
			acc:  map[string]any{"bufferView": 0, "componentType": 5126, "count": 5, "type": "SCALAR"},
			kind: gerrors.ErrOutOfRange,
			loc:  "accessors[0].count",
		},
		{
			name: "offset pushes past view",
			view: map[string]any{"byteLength": 16},
			acc:  map[string]any{"bufferView": 0, "byteOffset": 8, "componentType": 5126, "count": 3, "type": "SCALAR"},
			kind: gerrors.ErrOutOfRange,
			loc:  "accessors[0].count",
		},
		{
			name: "element wider than stride",
			view: map[string]any{"byteLength": 16, "byteStride": 12},
			acc:  map[string]any{"bufferView": 0, "componentType": 5126, "count": 1, "type": "VEC4"},
			kind: gerrors.ErrReference,
			loc:  "accessors[0].bufferView",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := singleBuffer(make([]byte, 16), tt.view)
			g["accessors"] = []any{tt.acc}
			_, err := parse(g, noFiles)
			expectError(t, err, tt.kind, tt.loc)
		})
	}
}

// sparseDoc lays out four base floats, sparse indices and sparse values in
// one buffer.
func sparseDoc(base bool, indices []uint16, values []float32) gltf {
	data := concat(floatsLE(1, 2, 3, 4), uint16sLE(indices...), floatsLE(values...))
	idxLen, valLen := 2*len(indices), 4*len(values)
	g := singleBuffer(data,
		map[string]any{"byteLength": 16},
		map[string]any{"byteOffset": 16, "byteLength": idxLen},
		map[string]any{"byteOffset": 16 + idxLen, "byteLength": valLen},
	)
	acc := map[string]any{
		"componentType": 5126, "count": 4, "type": "SCALAR",
		"sparse": map[string]any{
			"count":   len(indices),
			"indices": map[string]any{"bufferView": 1, "componentType": 5123},
			"values":  map[string]any{"bufferView": 2},
		},
	}
	if base {
		acc["bufferView"] = 0
	}
	g["accessors"] = []any{acc}
	return g
}

func TestAccessor_Sparse(t *testing.T) {
	a := mustParse(t, sparseDoc(true, []uint16{1, 3}, []float32{10, 30})).Accessors[0]

	got, err := a.ReadScalars()
	if err != nil {
		t.Fatalf("ReadScalars() error: %v", err)
	}
	if diff := cmp.Diff([]float32{1, 10, 3, 30}, got); diff != "" {
		t.Errorf("sparse mismatch (-want +got):\n%s", diff)
	}

	again, err := a.ReadScalars()
	if err != nil {
		t.Fatalf("second ReadScalars() error: %v", err)
	}
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("second read differs (-first +second):\n%s", diff)
	}

	// The base view is untouched by the substitution.
	base, err := a.BufferView.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(base, floatsLE(1, 2, 3, 4)) {
		t.Error("sparse substitution modified the base buffer view")
	}
}

func TestAccessor_SparseWithoutBufferView(t *testing.T) {
	a := mustParse(t, sparseDoc(false, []uint16{0, 2}, []float32{7, 9})).Accessors[0]
	got, err := a.ReadScalars()
	if err != nil {
		t.Fatalf("ReadScalars() error: %v", err)
	}
	if diff := cmp.Diff([]float32{7, 0, 9, 0}, got); diff != "" {
		t.Errorf("sparse mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessor_SparseInvalidIndices(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint16
	}{
		{"decreasing", []uint16{3, 1}},
		{"duplicate", []uint16{2, 2}},
		{"beyond count", []uint16{1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustParse(t, sparseDoc(true, tt.indices, []float32{0, 0})).Accessors[0]
			_, err := a.ReadScalars()
			expectError(t, err, gerrors.ErrOutOfRange, "accessors[0]")

			// The failure is cached like a success.
			_, again := a.ReadScalars()
			if again == nil || again.Error() != err.Error() {
				t.Errorf("second read error = %v, want %v", again, err)
			}
		})
	}
}

func TestAccessor_SparseIndexType(t *testing.T) {
	g := sparseDoc(true, []uint16{1, 3}, []float32{10, 30})
	sparse := g["accessors"].([]any)[0].(map[string]any)["sparse"].(map[string]any)
	sparse["indices"].(map[string]any)["componentType"] = 5122

	_, err := parse(g, noFiles)
	expectError(t, err, gerrors.ErrReference, "accessors[0].sparse.indices.componentType")
}

func TestAccessor_SparseCountExceedsAccessor(t *testing.T) {
	g := sparseDoc(true, []uint16{0, 1, 2, 3, 3}, []float32{0, 0, 0, 0, 0})
	_, err := parse(g, noFiles)
	expectError(t, err, gerrors.ErrParse, "accessors[0].sparse.count")
}

func TestBuffer_DataURI(t *testing.T) {
	doc := mustParse(t, gltf{"buffers": []any{map[string]any{
		"uri": "data:application/octet-stream;base64,AAEC", "byteLength": 3,
	}}})
	got, err := doc.Buffers[0].Bytes()
	if err != nil {
		t.Fatalf("Bytes() error: %v", err)
	}
	if !bytes.Equal(got, []byte{0, 1, 2}) {
		t.Errorf("Bytes() = %v, want [0 1 2]", got)
	}
}

func TestBuffer_ShortData(t *testing.T) {
	doc := mustParse(t, gltf{"buffers": []any{map[string]any{"uri": dataURI([]byte{1, 2}), "byteLength": 8}}})
	_, err := doc.Buffers[0].Bytes()
	expectError(t, err, gerrors.ErrOutOfRange, "buffers[0]")
}

func TestBuffer_FetchOnce(t *testing.T) {
	var calls atomic.Int32
	provider := resource.ProviderFunc(func(uri string) ([]byte, error) {
		calls.Add(1)
		if uri != "models/data.bin" {
			return nil, errors.New("unexpected uri " + uri)
		}
		return floatsLE(1, 2, 3, 4), nil
	})

	g := gltf{
		"asset":       asset(),
		"buffers":     []any{map[string]any{"uri": "data.bin", "byteLength": 16}},
		"bufferViews": []any{map[string]any{"buffer": 0, "byteLength": 16}},
		"accessors":   []any{map[string]any{"bufferView": 0, "componentType": 5126, "count": 4, "type": "SCALAR"}},
	}
	data := mustMarshal(t, g)
	doc, err := Parse(data, provider, "models/scene.gltf")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if calls.Load() != 0 {
		t.Fatal("Parse() must not fetch buffers")
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := doc.Accessors[0].ReadScalars(); err != nil {
				t.Errorf("ReadScalars() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("provider called %d times, want 1", calls.Load())
	}
}

func TestBuffer_FetchErrorLocated(t *testing.T) {
	g := gltf{"buffers": []any{map[string]any{"uri": "missing.bin", "byteLength": 4}}}
	doc := mustParse(t, g)
	err := doc.FetchBuffers()
	expectError(t, err, gerrors.ErrIO, "buffers[0].uri")
}

func TestAccessor_ImplicitSizeLimit(t *testing.T) {
	huge := func() gltf {
		g := sparseDoc(false, []uint16{1, 3}, []float32{10, 30})
		g["accessors"].([]any)[0].(map[string]any)["count"] = 1 << 50
		return g
	}
	tests := []struct {
		name string
		doc  gltf
	}{
		{name: "sparse without bufferView", doc: huge()},
		{name: "sparse over bufferView", doc: func() gltf {
			g := huge()
			g["accessors"].([]any)[0].(map[string]any)["bufferView"] = 0
			return g
		}()},
		{name: "no bufferView", doc: gltf{"accessors": []any{
			map[string]any{"componentType": 5126, "count": 1 << 50, "type": "VEC3"},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.doc, noFiles)
			expectError(t, err, gerrors.ErrOutOfRange, "accessors[0].count")
		})
	}

	limited := gltf{"accessors": []any{map[string]any{"componentType": 5126, "count": 5, "type": "VEC2"}}}
	_, err := parse(limited, noFiles, WithMaxImplicitBytes(32))
	expectError(t, err, gerrors.ErrOutOfRange, "accessors[0].count")

	limited = gltf{"accessors": []any{map[string]any{"componentType": 5126, "count": 4, "type": "VEC2"}}}
	if _, err := parse(limited, noFiles, WithMaxImplicitBytes(32)); err != nil {
		t.Errorf("Parse() at the limit: %v", err)
	}
}

func TestAccessor_BulkReadChecksSizeFirst(t *testing.T) {
	a := &Accessor{Index: 2, ComponentType: ComponentFloat, Count: 1 << 50, Type: AccessorVec3}

	if _, err := a.Float32s(); !errors.Is(err, gerrors.ErrOutOfRange) {
		t.Errorf("Float32s() error = %v, want out of range", err)
	}
	if _, err := a.ReadVec3(); !errors.Is(err, gerrors.ErrOutOfRange) {
		t.Errorf("ReadVec3() error = %v, want out of range", err)
	}

	a = &Accessor{Index: 2, ComponentType: ComponentUnsignedShort, Count: 1 << 50, Type: AccessorScalar}
	if _, err := a.Uint32s(); !errors.Is(err, gerrors.ErrOutOfRange) {
		t.Errorf("Uint32s() error = %v, want out of range", err)
	}
}

func TestAccessor_BulkReadShortBuffer(t *testing.T) {
	// The buffer declares more bytes than its URI provides; the bulk read
	// fails on the data before sizing its output.
	g := gltf{
		"buffers":     []any{map[string]any{"byteLength": 1 << 40, "uri": dataURI(floatsLE(1, 2))}},
		"bufferViews": []any{map[string]any{"buffer": 0, "byteLength": 1 << 40}},
		"accessors":   []any{map[string]any{"bufferView": 0, "componentType": 5126, "count": 1 << 30, "type": "SCALAR"}},
	}
	a := mustParse(t, g).Accessors[0]
	_, err := a.Float32s()
	expectError(t, err, gerrors.ErrOutOfRange, "buffers[0]")
}
