package document

import (
	"bytes"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-gltf/engine/container"
)

func TestNode_LocalTransform(t *testing.T) {
	doc := mustParse(t, gltf{"nodes": []any{
		map[string]any{"translation": []float32{1, 2, 3}, "scale": []float32{2, 2, 2}},
		map[string]any{"matrix": []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 5, 6, 7, 1}},
	}})

	trs := doc.Nodes[0].LocalTransform()
	want := [16]float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 1, 2, 3, 1}
	if trs != want {
		t.Errorf("LocalTransform() = %v, want %v", trs, want)
	}

	tr, rot, sc := doc.Nodes[1].TRS()
	if tr != [3]float32{5, 6, 7} || sc != [3]float32{1, 1, 1} {
		t.Errorf("TRS() = %v %v %v", tr, rot, sc)
	}
	if math.Abs(float64(rot[3])-1) > 1e-6 {
		t.Errorf("rotation = %v, want identity", rot)
	}
}

func TestNode_WorldTransform(t *testing.T) {
	doc := mustParse(t, gltf{"nodes": []any{
		map[string]any{"translation": []float32{10, 0, 0}, "children": []int{1}},
		map[string]any{"translation": []float32{0, 1, 0}},
	}})
	w := doc.Nodes[1].WorldTransform()
	if w[12] != 10 || w[13] != 1 || w[14] != 0 {
		t.Errorf("world translation = %v, want (10, 1, 0)", w[12:15])
	}
}

func TestNode_WorldTransformCycle(t *testing.T) {
	doc := mustParse(t, gltf{"nodes": []any{
		map[string]any{"children": []int{1}},
		map[string]any{"children": []int{0}},
	}})
	// Terminates despite the loop.
	_ = doc.Nodes[0].WorldTransform()
}

func TestSampler_StagingData(t *testing.T) {
	def := DefaultSampler().StagingData()
	if def.AddressModeU != wgpu.AddressModeRepeat || def.MinFilter != wgpu.FilterModeLinear ||
		def.MipmapFilter != wgpu.MipmapFilterModeLinear {
		t.Errorf("default staging data = %+v", def)
	}

	s := &Sampler{MagFilter: FilterNearest, MinFilter: FilterLinearMipmapNearest, WrapS: WrapClampToEdge, WrapT: WrapMirroredRepeat}
	got := s.StagingData()
	if got.MagFilter != wgpu.FilterModeNearest || got.MinFilter != wgpu.FilterModeLinear ||
		got.MipmapFilter != wgpu.MipmapFilterModeNearest {
		t.Errorf("filters = %v %v %v", got.MagFilter, got.MinFilter, got.MipmapFilter)
	}
	if got.AddressModeU != wgpu.AddressModeClampToEdge || got.AddressModeV != wgpu.AddressModeMirrorRepeat {
		t.Errorf("address modes = %v %v", got.AddressModeU, got.AddressModeV)
	}
	if got.LodMaxClamp != 32 || got.MaxAnisotropy != 1 {
		t.Errorf("lod/anisotropy = %v/%v", got.LodMaxClamp, got.MaxAnisotropy)
	}
}

func TestParse_Container(t *testing.T) {
	bin := floatsLE(0, 0, 0, 1, 0, 0, 0, 1, 0)
	g := gltf{
		"asset":       asset(),
		"buffers":     []any{map[string]any{"byteLength": len(bin)}},
		"bufferViews": []any{map[string]any{"buffer": 0, "byteLength": len(bin), "target": 34962}},
		"accessors": []any{map[string]any{
			"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3",
			"min": []float32{0, 0, 0}, "max": []float32{1, 1, 0},
		}},
		"meshes": []any{map[string]any{"primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0}}}}},
		"nodes":  []any{map[string]any{"mesh": 0}},
		"scenes": []any{map[string]any{"nodes": []int{0}}},
	}

	var glb bytes.Buffer
	if err := container.Pack(&glb, mustMarshal(t, g), bin); err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	c, err := container.Split(glb.Bytes())
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}

	doc, err := Parse(c.JSON, c.Provider(noFiles), "model.glb")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	pos := doc.Meshes[0].Primitives[0].Attribute("POSITION")
	if pos == nil {
		t.Fatal("POSITION attribute not linked")
	}
	got, err := pos.ReadVec3()
	if err != nil {
		t.Fatalf("ReadVec3() error: %v", err)
	}
	if got[1] != [3]float32{1, 0, 0} || got[2] != [3]float32{0, 1, 0} {
		t.Errorf("positions = %v", got)
	}
	if doc.Meshes[0].Primitives[0].Mode != PrimitiveTriangles {
		t.Errorf("mode = %d, want triangles", doc.Meshes[0].Primitives[0].Mode)
	}
}
