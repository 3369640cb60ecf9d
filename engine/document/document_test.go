package document

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
)

func TestParse_Minimal(t *testing.T) {
	doc := mustParse(t, gltf{"asset": map[string]any{"version": "2.0", "generator": "unit"}})

	if doc.Asset.Version != "2.0" || doc.Asset.Generator != "unit" {
		t.Errorf("asset = %+v", doc.Asset)
	}
	if doc.DefaultScene() != nil {
		t.Error("expected no default scene")
	}
	if len(doc.pending) != 0 {
		t.Errorf("pending actions left after parse: %d", len(doc.pending))
	}
}

func TestParse_ForwardReferences(t *testing.T) {
	doc := mustParse(t, gltf{
		"scene":  0,
		"scenes": []any{map[string]any{"nodes": []int{0}}},
		"nodes": []any{
			map[string]any{"name": "root", "children": []int{1}},
			map[string]any{"name": "leaf", "translation": []float32{1, 2, 3}},
		},
	})

	root, leaf := doc.Nodes[0], doc.Nodes[1]
	if doc.Scene != doc.Scenes[0] || doc.DefaultScene() != doc.Scenes[0] {
		t.Fatal("default scene not linked")
	}
	if got := doc.Scenes[0].Nodes; len(got) != 1 || got[0] != root {
		t.Fatalf("scene nodes = %v, want [root]", got)
	}
	if len(root.Children) != 1 || root.Children[0] != leaf {
		t.Fatalf("root children = %v, want [leaf]", root.Children)
	}
	if leaf.Parent != root || root.Parent != nil {
		t.Error("parent back-links not set")
	}
	if roots := doc.RootNodes(); len(roots) != 1 || roots[0] != root {
		t.Errorf("RootNodes() = %v", roots)
	}
	if leaf.Rotation != [4]float32{0, 0, 0, 1} || leaf.Scale != [3]float32{1, 1, 1} {
		t.Errorf("TRS defaults not applied: %v %v", leaf.Rotation, leaf.Scale)
	}
	if leaf.Translation != [3]float32{1, 2, 3} {
		t.Errorf("translation = %v", leaf.Translation)
	}
}

func TestParse_FirstSceneFallback(t *testing.T) {
	doc := mustParse(t, gltf{
		"scenes": []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}},
	})
	if doc.Scene != nil {
		t.Error("no scene was declared")
	}
	if s := doc.DefaultScene(); s == nil || s.Name != "a" {
		t.Errorf("DefaultScene() = %v, want first scene", s)
	}
}

func TestParse_ReferenceErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  gltf
		loc  string
	}{
		{
			name: "child out of bounds",
			doc:  gltf{"nodes": []any{map[string]any{"children": []int{1, 5}}, map[string]any{}}},
			loc:  "nodes[0].children[1]",
		},
		{
			name: "negative index",
			doc:  gltf{"nodes": []any{map[string]any{"mesh": -1}}},
			loc:  "nodes[0].mesh",
		},
		{
			name: "scene root",
			doc:  gltf{"scenes": []any{map[string]any{"nodes": []int{3}}}},
			loc:  "scenes[0].nodes[0]",
		},
		{
			name: "default scene",
			doc:  gltf{"scene": 2, "scenes": []any{map[string]any{}}},
			loc:  "scene",
		},
		{
			name: "accessor buffer view",
			doc: gltf{"accessors": []any{map[string]any{
				"bufferView": 4, "componentType": 5126, "count": 1, "type": "SCALAR",
			}}},
			loc: "accessors[0].bufferView",
		},
		{
			name: "primitive attribute",
			doc: gltf{"meshes": []any{map[string]any{"primitives": []any{
				map[string]any{"attributes": map[string]int{"POSITION": 9}},
			}}}},
			loc: "meshes[0].primitives[0].attributes.POSITION",
		},
		{
			name: "texture info",
			doc: gltf{"materials": []any{map[string]any{
				"pbrMetallicRoughness": map[string]any{"baseColorTexture": map[string]any{"index": 0}},
			}}},
			loc: "materials[0].pbrMetallicRoughness.baseColorTexture.index",
		},
		{
			name: "skin joint",
			doc:  gltf{"skins": []any{map[string]any{"joints": []int{0}}}},
			loc:  "skins[0].joints[0]",
		},
		{
			name: "animation channel sampler",
			doc: gltf{
				"accessors": []any{map[string]any{"componentType": 5126, "count": 2, "type": "SCALAR"}},
				"nodes":     []any{map[string]any{}},
				"animations": []any{map[string]any{
					"samplers": []any{map[string]any{"input": 0, "output": 0}},
					"channels": []any{map[string]any{"sampler": 1, "target": map[string]any{"node": 0, "path": "translation"}}},
				}},
			},
			loc: "animations[0].channels[0].sampler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.doc, noFiles)
			expectError(t, err, gerrors.ErrReference, tt.loc)
		})
	}
}

func TestParse_InBoundsReferencesResolve(t *testing.T) {
	// The boundary index len-1 resolves; len does not.
	doc := mustParse(t, gltf{"nodes": []any{map[string]any{"children": []int{2}}, map[string]any{}, map[string]any{}}})
	if doc.Nodes[0].Children[0] != doc.Nodes[2] {
		t.Error("last node not linked")
	}
}

func TestParse_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  gltf
		loc  string
	}{
		{
			name: "unsupported version",
			doc:  gltf{"asset": map[string]any{"version": "1.0"}},
			loc:  "asset.version",
		},
		{
			name: "missing version",
			doc:  gltf{"asset": map[string]any{}},
			loc:  "asset.version",
		},
		{
			name: "unsupported minVersion",
			doc:  gltf{"asset": map[string]any{"version": "2.1", "minVersion": "2.1"}},
			loc:  "asset.minVersion",
		},
		{
			name: "accessor without count",
			doc:  gltf{"accessors": []any{map[string]any{"componentType": 5126, "type": "VEC3"}}},
			loc:  "accessors[0].count",
		},
		{
			name: "invalid component type",
			doc:  gltf{"accessors": []any{map[string]any{"componentType": 5124, "count": 1, "type": "VEC3"}}},
			loc:  "accessors[0].componentType",
		},
		{
			name: "invalid accessor type",
			doc:  gltf{"accessors": []any{map[string]any{"componentType": 5126, "count": 1, "type": "VEC5"}}},
			loc:  "accessors[0].type",
		},
		{
			name: "normalized float",
			doc:  gltf{"accessors": []any{map[string]any{"componentType": 5126, "normalized": true, "count": 1, "type": "VEC3"}}},
			loc:  "accessors[0].normalized",
		},
		{
			name: "misaligned accessor offset",
			doc:  gltf{"accessors": []any{map[string]any{"componentType": 5126, "byteOffset": 2, "count": 1, "type": "SCALAR"}}},
			loc:  "accessors[0].byteOffset",
		},
		{
			name: "min length",
			doc:  gltf{"accessors": []any{map[string]any{"componentType": 5126, "count": 1, "type": "VEC3", "min": []float32{0, 0}}}},
			loc:  "accessors[0].min",
		},
		{
			name: "stride below minimum",
			doc:  gltf{"buffers": []any{map[string]any{"byteLength": 8}}, "bufferViews": []any{map[string]any{"buffer": 0, "byteLength": 8, "byteStride": 2}}},
			loc:  "bufferViews[0].byteStride",
		},
		{
			name: "fractional index",
			doc:  gltf{"nodes": []any{map[string]any{"mesh": 0.5}}},
			loc:  "nodes[0].mesh",
		},
		{
			name: "matrix with trs",
			doc: gltf{"nodes": []any{map[string]any{
				"matrix":      []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
				"translation": []float32{1, 0, 0},
			}}},
			loc: "nodes[0].matrix",
		},
		{
			name: "image uri and buffer view",
			doc:  gltf{"images": []any{map[string]any{"uri": "a.png", "bufferView": 0, "mimeType": "image/png"}}},
			loc:  "images[0].uri",
		},
		{
			name: "image buffer view without mime type",
			doc:  gltf{"images": []any{map[string]any{"bufferView": 0}}},
			loc:  "images[0].mimeType",
		},
		{
			name: "mesh without primitives",
			doc:  gltf{"meshes": []any{map[string]any{"primitives": []any{}}}},
			loc:  "meshes[0].primitives",
		},
		{
			name: "primitive mode",
			doc:  gltf{"meshes": []any{map[string]any{"primitives": []any{map[string]any{"attributes": map[string]int{}, "mode": 7}}}}},
			loc:  "meshes[0].primitives[0].mode",
		},
		{
			name: "metallic factor range",
			doc:  gltf{"materials": []any{map[string]any{"pbrMetallicRoughness": map[string]any{"metallicFactor": 2}}}},
			loc:  "materials[0].pbrMetallicRoughness.metallicFactor",
		},
		{
			name: "sampler wrap",
			doc:  gltf{"samplers": []any{map[string]any{"wrapT": 1}}},
			loc:  "samplers[0].wrapT",
		},
		{
			name: "perspective znear",
			doc:  gltf{"cameras": []any{map[string]any{"type": "perspective", "perspective": map[string]any{"yfov": 1, "znear": 0}}}},
			loc:  "cameras[0].perspective.znear",
		},
		{
			name: "orthographic zfar",
			doc: gltf{"cameras": []any{map[string]any{"type": "orthographic",
				"orthographic": map[string]any{"xmag": 1, "ymag": 1, "znear": 1, "zfar": 1}}}},
			loc: "cameras[0].orthographic.zfar",
		},
		{
			name: "animation without channels",
			doc:  gltf{"animations": []any{map[string]any{"samplers": []any{map[string]any{"input": 0, "output": 0}}, "channels": []any{}}}},
			loc:  "animations[0].channels",
		},
		{
			name: "entity is not an object",
			doc:  gltf{"nodes": []any{3}},
			loc:  "nodes[0]",
		},
		{
			name: "unsupported required extension",
			doc:  gltf{"extensionsRequired": []string{"KHR_draco_mesh_compression"}},
			loc:  "extensionsRequired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.doc, noFiles)
			expectError(t, err, gerrors.ErrParse, tt.loc)
		})
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	for _, input := range []string{"", "{", "[]", "null", `{"asset": 1}`} {
		if _, err := Parse([]byte(input), noFiles, ""); err == nil {
			t.Errorf("Parse(%q) succeeded", input)
		}
	}
	if _, err := Parse([]byte(`{}`), noFiles, ""); err == nil {
		t.Error("expected missing asset to fail")
	} else {
		expectError(t, err, gerrors.ErrParse, "asset")
	}
}

func TestParse_Extensions(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	g := gltf{
		"extensionsUsed":     []string{"KHR_materials_unlit", "EXT_custom"},
		"extensionsRequired": []string{"KHR_materials_unlit"},
		"nodes": []any{map[string]any{
			"extensions": map[string]any{"EXT_custom": map[string]any{"answer": 42}},
			"extras":     map[string]any{"tag": "x"},
		}},
	}

	doc := mustParse(t, g, WithSupportedExtensions("KHR_materials_unlit"), WithLogger(zap.New(core)))

	if got := logs.FilterField(zap.String("extension", "EXT_custom")).Len(); got != 1 {
		t.Errorf("expected one warning for EXT_custom, got %d", got)
	}
	if got := logs.FilterField(zap.String("extension", "KHR_materials_unlit")).Len(); got != 0 {
		t.Errorf("supported extension should not warn, got %d", got)
	}
	n := doc.Nodes[0]
	if string(n.Extensions["EXT_custom"]) != `{"answer":42}` {
		t.Errorf("extension kept as %s", n.Extensions["EXT_custom"])
	}
	if string(n.Extras) != `{"tag":"x"}` {
		t.Errorf("extras kept as %s", n.Extras)
	}
}

func TestParse_NullIsAbsent(t *testing.T) {
	doc := mustParse(t, gltf{"nodes": []any{map[string]any{"mesh": nil, "name": nil}}})
	if doc.Nodes[0].Mesh != nil || doc.Nodes[0].Name != "" {
		t.Error("null fields should be treated as absent")
	}
}

func TestParse_MaterialDefaults(t *testing.T) {
	doc := mustParse(t, gltf{"materials": []any{map[string]any{}}})
	m := doc.Materials[0]
	pbr := m.PBRMetallicRoughness
	if pbr.BaseColorFactor != [4]float32{1, 1, 1, 1} || pbr.MetallicFactor != 1 || pbr.RoughnessFactor != 1 {
		t.Errorf("pbr defaults = %+v", pbr)
	}
	if m.AlphaMode != AlphaOpaque || m.AlphaCutoff != 0.5 || m.DoubleSided {
		t.Errorf("material defaults = %+v", m)
	}
}

func TestParse_TextureDefaultSampler(t *testing.T) {
	doc := mustParse(t, gltf{
		"images":   []any{map[string]any{"uri": "a.png"}},
		"samplers": []any{map[string]any{"magFilter": 9728, "wrapS": 33071}},
		"textures": []any{map[string]any{"source": 0}, map[string]any{"source": 0, "sampler": 0}},
	})

	def := doc.Textures[0].EffectiveSampler()
	if def.Index != -1 || def.WrapS != WrapRepeat || def.WrapT != WrapRepeat {
		t.Errorf("default sampler = %+v", def)
	}
	if doc.Textures[1].EffectiveSampler() != doc.Samplers[0] {
		t.Error("declared sampler not used")
	}
	if doc.Textures[0].Source != doc.Images[0] {
		t.Error("texture source not linked")
	}
}

func TestParse_Camera(t *testing.T) {
	doc := mustParse(t, gltf{
		"cameras": []any{
			map[string]any{"type": "perspective", "perspective": map[string]any{"yfov": 0.8, "znear": 0.1, "aspectRatio": 1.5}},
			map[string]any{"type": "orthographic", "orthographic": map[string]any{"xmag": 2, "ymag": 1, "znear": 0, "zfar": 10}},
		},
		"nodes": []any{map[string]any{"camera": 1}},
	})

	p := doc.Cameras[0].Perspective
	if p == nil || p.YFov != 0.8 || p.ZFar != 0 || p.AspectRatio != 1.5 {
		t.Errorf("perspective = %+v", p)
	}
	if doc.Nodes[0].Camera != doc.Cameras[1] || doc.Cameras[1].Orthographic == nil {
		t.Error("orthographic camera not linked")
	}
}

func TestParse_StrideLimitsOption(t *testing.T) {
	g := func() gltf {
		return gltf{
			"buffers":     []any{map[string]any{"byteLength": 512}},
			"bufferViews": []any{map[string]any{"buffer": 0, "byteLength": 512, "byteStride": 256}},
		}
	}
	if _, err := parse(g(), noFiles); err == nil {
		t.Fatal("expected stride 256 to exceed the default maximum")
	}
	doc, err := parse(g(), noFiles, WithByteStrideLimits(4, 256, 4))
	if err != nil {
		t.Fatalf("Parse() with raised limit: %v", err)
	}
	if doc.BufferViews[0].ByteStride != 256 {
		t.Errorf("stride = %d", doc.BufferViews[0].ByteStride)
	}
}
