package document

import (
	"strconv"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
)

// resolveAction replaces one raw index (or index list) with entity links.
// Actions run after every sequence of the document exists.
type resolveAction func(d *Document) error

// site names the field holding a reference, for error messages.
type site struct {
	entity string
	field  string
	index  int
}

// The xxxOf functions return one of the document's entity sequences. Actions
// look targets up through them rather than a captured slice because the
// sequence may not exist yet when the action is registered.
func accessorsOf(d *Document) []*Accessor     { return d.Accessors }
func buffersOf(d *Document) []*Buffer         { return d.Buffers }
func bufferViewsOf(d *Document) []*BufferView { return d.BufferViews }
func camerasOf(d *Document) []*Camera         { return d.Cameras }
func imagesOf(d *Document) []*Image           { return d.Images }
func materialsOf(d *Document) []*Material     { return d.Materials }
func meshesOf(d *Document) []*Mesh            { return d.Meshes }
func nodesOf(d *Document) []*Node             { return d.Nodes }
func samplersOf(d *Document) []*Sampler       { return d.Samplers }
func scenesOf(d *Document) []*Scene           { return d.Scenes }
func skinsOf(d *Document) []*Skin             { return d.Skins }
func texturesOf(d *Document) []*Texture       { return d.Textures }

// enqueue appends a resolution action.
func (d *Document) enqueue(a resolveAction) {
	d.pending = append(d.pending, a)
}

// link registers the resolution of a single index. set receives the target
// and may reject it with a type-compatibility or range error.
func link[T any](d *Document, at site, target string, tbl func(*Document) []*T, raw int, set func(*T) error) {
	d.enqueue(func(d *Document) error {
		items := tbl(d)
		if raw < 0 || raw >= len(items) {
			return gerrors.Reference(at.entity, at.index, at.field, target, raw, len(items))
		}
		return set(items[raw])
	})
}

// linkAll registers the resolution of an index list. Targets are handed to set
// in declaration order; the field in errors names the offending position.
func linkAll[T any](d *Document, at site, target string, tbl func(*Document) []*T, raws []int, set func([]*T) error) {
	if len(raws) == 0 {
		return
	}
	d.enqueue(func(d *Document) error {
		items := tbl(d)
		out := make([]*T, len(raws))
		for k, raw := range raws {
			if raw < 0 || raw >= len(items) {
				field := at.field + "[" + strconv.Itoa(k) + "]"
				return gerrors.Reference(at.entity, at.index, field, target, raw, len(items))
			}
			out[k] = items[raw]
		}
		return set(out)
	})
}

// assign returns a setter that stores the target in *dst.
func assign[T any](dst **T) func(*T) error {
	return func(v *T) error {
		*dst = v
		return nil
	}
}

// resolve runs every pending action in insertion order and clears the queue.
// The first failure aborts resolution.
func (d *Document) resolve() error {
	pending := d.pending
	d.pending = nil
	for _, action := range pending {
		if err := action(d); err != nil {
			return err
		}
	}
	return nil
}
