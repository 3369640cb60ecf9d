package document

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"testing"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
	"github.com/Carmen-Shannon/oxy-gltf/engine/resource"
)

// gltf is a loosely typed document used to build test inputs.
type gltf map[string]any

func asset() map[string]any {
	return map[string]any{"version": "2.0"}
}

func dataURI(b []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b)
}

func floatsLE(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func uint16sLE(vals ...uint16) []byte {
	out := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// noFiles fails every fetch; documents built on data URIs never reach it.
var noFiles = resource.ProviderFunc(func(uri string) ([]byte, error) {
	return nil, errors.New("unexpected fetch of " + uri)
})

func mustParse(t *testing.T, g gltf, opts ...ParseOption) *Document {
	t.Helper()
	doc, err := parse(g, noFiles, opts...)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return doc
}

func parse(g gltf, provider resource.Provider, opts ...ParseOption) (*Document, error) {
	if _, ok := g["asset"]; !ok {
		g["asset"] = asset()
	}
	data, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return Parse(data, provider, "", opts...)
}

// expectError checks the error's kind and, when loc is set, its location.
func expectError(t *testing.T, err error, kind *gerrors.Error, loc string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error at %q, got nil", kind.Kind, loc)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %s error, got %v", kind.Kind, err)
	}
	if loc == "" {
		return
	}
	var e *gerrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if e.Location() != loc {
		t.Errorf("location = %q, want %q (%v)", e.Location(), loc, err)
	}
}

// singleBuffer returns a document with one data URI buffer holding data and
// one buffer view per range.
func singleBuffer(data []byte, views ...map[string]any) gltf {
	bv := make([]any, len(views))
	for i, v := range views {
		v["buffer"] = 0
		bv[i] = v
	}
	return gltf{
		"buffers":     []any{map[string]any{"uri": dataURI(data), "byteLength": len(data)}},
		"bufferViews": bv,
	}
}

func mustMarshal(t *testing.T, g gltf) []byte {
	t.Helper()
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
