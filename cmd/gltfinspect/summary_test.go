package main

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"

	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/resource"
)

func testDocument(t *testing.T) *document.Document {
	t.Helper()
	bin := make([]byte, 36)
	for i, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.LittleEndian.PutUint32(bin[i*4:], math.Float32bits(v))
	}
	json := `{
		"asset": {"version": "2.0", "generator": "hand"},
		"scenes": [{"name": "main", "nodes": [0]}],
		"nodes": [{"name": "root", "children": [1]}, {"mesh": 0}],
		"meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}}]}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
		"bufferViews": [{"buffer": 0, "byteLength": 36}],
		"buffers": [{"byteLength": 36, "uri": "data:application/octet-stream;base64,` + base64.StdEncoding.EncodeToString(bin) + `"}]
	}`
	doc, err := document.Parse([]byte(json), resource.NewFileProvider(), "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return doc
}

func TestSummarize(t *testing.T) {
	s, err := summarize("tri.gltf", testDocument(t), 0, 2)
	if err != nil {
		t.Fatalf("summarize() error: %v", err)
	}

	wantNodes := []sceneNode{{Name: "root", Children: []sceneNode{{Name: "node_1", Mesh: "tri"}}}}
	if diff := cmp.Diff(wantNodes, s.Nodes); diff != "" {
		t.Errorf("Nodes mismatch (-want +got):\n%s", diff)
	}
	if s.Scene != "main" || s.Counts.Meshes != 1 || s.Generator != "hand" {
		t.Errorf("summary = %+v", s)
	}

	want := &accessorDump{
		Index:         0,
		Type:          "VEC3",
		ComponentType: "FLOAT",
		Count:         3,
		Values:        [][]float32{{0, 0, 0}, {1, 0, 0}},
	}
	if diff := cmp.Diff(want, s.Accessor); diff != "" {
		t.Errorf("Accessor mismatch (-want +got):\n%s", diff)
	}

	text := renderText(s)
	for _, part := range []string{"tri.gltf", "root", "mesh=tri", "... 1 more"} {
		if !strings.Contains(text, part) {
			t.Errorf("text output is missing %q:\n%s", part, text)
		}
	}

	out, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("yaml.Marshal() error: %v", err)
	}
	var back summary
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}
	if back.Counts.Meshes != 1 || back.Nodes[0].Children[0].Mesh != "tri" {
		t.Errorf("yaml round trip = %+v", back)
	}
}

func TestSummarize_AccessorOutOfRange(t *testing.T) {
	if _, err := summarize("tri.gltf", testDocument(t), 5, 1); err == nil {
		t.Fatal("summarize() with a bad accessor index succeeded")
	}
}
