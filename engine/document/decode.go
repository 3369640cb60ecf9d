package document

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
)

// object reads the fields of one JSON object. The first failure sticks in err
// and every later read becomes a no-op returning its default, so decoders can
// read all fields and check err once.
type object struct {
	fields map[string]json.RawMessage
	err    error
	entity string
	path   string // field prefix for nested objects, e.g. "pbrMetallicRoughness."
	index  int
}

// newObject splits raw into its fields. entity and index locate the object in
// the document for error messages; pass "" and -1 for the root.
func newObject(raw json.RawMessage, entity string, index int, path string) (*object, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		b := gerrors.New(gerrors.KindParse).Entity(entity, index).Field(strings.TrimSuffix(path, ".")).Detail("expected a JSON object")
		if err != nil {
			b.Cause(err)
		}
		return nil, b.Build()
	}
	return &object{
		fields: fields,
		entity: entity,
		index:  index,
		path:   path,
	}, nil
}

func (o *object) fail(field, msg string, args ...any) {
	if o.err == nil {
		o.err = gerrors.Parse(o.entity, o.index, o.path+field, msg, args...)
	}
}

func (o *object) missing(field string) {
	if o.err == nil {
		o.err = gerrors.FieldMissing(o.entity, o.index, o.path+field)
	}
}

// raw returns the field's JSON, treating an explicit null as absent.
func (o *object) raw(field string) (json.RawMessage, bool) {
	if o.err != nil {
		return nil, false
	}
	r, ok := o.fields[field]
	if !ok || bytes.Equal(bytes.TrimSpace(r), []byte("null")) {
		return nil, false
	}
	return r, true
}

func (o *object) has(field string) bool {
	_, ok := o.raw(field)
	return ok
}

func (o *object) unmarshal(field string, r json.RawMessage, v any, want string) bool {
	if err := json.Unmarshal(r, v); err != nil {
		o.fail(field, "expected %s", want)
		return false
	}
	return true
}

func (o *object) str(field, def string) string {
	r, ok := o.raw(field)
	if !ok {
		return def
	}
	var s string
	if !o.unmarshal(field, r, &s, "a string") {
		return def
	}
	return s
}

func (o *object) requiredString(field string) string {
	if !o.has(field) {
		o.missing(field)
		return ""
	}
	return o.str(field, "")
}

func (o *object) boolean(field string, def bool) bool {
	r, ok := o.raw(field)
	if !ok {
		return def
	}
	var b bool
	if !o.unmarshal(field, r, &b, "a boolean") {
		return def
	}
	return b
}

// integer reads a JSON number that must be integral.
func (o *object) integer(field string, def int) int {
	r, ok := o.raw(field)
	if !ok {
		return def
	}
	var f float64
	if !o.unmarshal(field, r, &f, "an integer") {
		return def
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		o.fail(field, "expected an integer, got %v", f)
		return def
	}
	return int(f)
}

func (o *object) requiredInt(field string) int {
	if !o.has(field) {
		o.missing(field)
		return 0
	}
	return o.integer(field, 0)
}

// nonNegative reads an optional integer that must be >= 0.
func (o *object) nonNegative(field string, def int) int {
	v := o.integer(field, def)
	if v < 0 {
		o.fail(field, "must be >= 0, got %d", v)
	}
	return v
}

// positive reads a required integer that must be >= 1.
func (o *object) positive(field string) int {
	v := o.requiredInt(field)
	if o.err == nil && v < 1 {
		o.fail(field, "must be >= 1, got %d", v)
	}
	return v
}

// ref reads an optional index field. Bounds are checked during resolution.
func (o *object) ref(field string) (int, bool) {
	if !o.has(field) {
		return 0, false
	}
	v := o.integer(field, 0)
	return v, o.err == nil
}

func (o *object) requiredRef(field string) int {
	if !o.has(field) {
		o.missing(field)
		return 0
	}
	return o.integer(field, 0)
}

// refs reads an optional array of indices.
func (o *object) refs(field string) []int {
	r, ok := o.raw(field)
	if !ok {
		return nil
	}
	var fs []float64
	if !o.unmarshal(field, r, &fs, "an array of integers") {
		return nil
	}
	out := make([]int, len(fs))
	for i, f := range fs {
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			o.fail(field, "element %d: expected an integer, got %v", i, f)
			return nil
		}
		out[i] = int(f)
	}
	return out
}

// refMap reads an object whose values are indices, such as primitive attributes.
func (o *object) refMap(field string) map[string]int {
	r, ok := o.raw(field)
	if !ok {
		return nil
	}
	var fs map[string]float64
	if !o.unmarshal(field, r, &fs, "an object of integers") {
		return nil
	}
	out := make(map[string]int, len(fs))
	for k, f := range fs {
		if f != math.Trunc(f) {
			o.fail(field+"."+k, "expected an integer, got %v", f)
			return nil
		}
		out[k] = int(f)
	}
	return out
}

func (o *object) number(field string, def float32) float32 {
	r, ok := o.raw(field)
	if !ok {
		return def
	}
	var f float64
	if !o.unmarshal(field, r, &f, "a number") {
		return def
	}
	return float32(f)
}

// numberIn reads an optional number constrained to [lo, hi].
func (o *object) numberIn(field string, def, lo, hi float32) float32 {
	v := o.number(field, def)
	if v < lo || v > hi {
		o.fail(field, "must be within [%v, %v], got %v", lo, hi, v)
	}
	return v
}

// floats reads an optional number array. n < 0 accepts any length.
func (o *object) floats(field string, n int) ([]float64, bool) {
	r, ok := o.raw(field)
	if !ok {
		return nil, false
	}
	var fs []float64
	if !o.unmarshal(field, r, &fs, "an array of numbers") {
		return nil, false
	}
	if n >= 0 && len(fs) != n {
		o.fail(field, "expected %d numbers, got %d", n, len(fs))
		return nil, false
	}
	return fs, true
}

func (o *object) float32s(field string) []float32 {
	fs, ok := o.floats(field, -1)
	if !ok {
		return nil
	}
	out := make([]float32, len(fs))
	for i, f := range fs {
		out[i] = float32(f)
	}
	return out
}

// fixed fills dst from a number array of exactly len(dst) elements; dst keeps
// its contents (the default) when the field is absent.
func (o *object) fixed(field string, dst []float32) bool {
	fs, ok := o.floats(field, len(dst))
	if !ok {
		return false
	}
	for i, f := range fs {
		dst[i] = float32(f)
	}
	return true
}

func (o *object) stringList(field string) []string {
	r, ok := o.raw(field)
	if !ok {
		return nil
	}
	var ss []string
	if !o.unmarshal(field, r, &ss, "an array of strings") {
		return nil
	}
	return ss
}

// child opens a nested object field.
func (o *object) child(field string) (*object, bool) {
	r, ok := o.raw(field)
	if !ok {
		return nil, false
	}
	c, err := newObject(r, o.entity, o.index, o.path+field+".")
	if err != nil {
		o.err = err
		return nil, false
	}
	return c, true
}

// requiredChild opens a nested object field that must be present.
func (o *object) requiredChild(field string) (*object, bool) {
	if !o.has(field) {
		o.missing(field)
		return nil, false
	}
	return o.child(field)
}

// array reads an optional array of raw elements.
func (o *object) array(field string) []json.RawMessage {
	r, ok := o.raw(field)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if !o.unmarshal(field, r, &items, "an array") {
		return nil
	}
	return items
}

// element opens item i of an array field of objects.
func (o *object) element(field string, i int, raw json.RawMessage) (*object, bool) {
	c, err := newObject(raw, o.entity, o.index, o.path+field+"["+strconv.Itoa(i)+"].")
	if err != nil {
		o.err = err
		return nil, false
	}
	return c, true
}

// properties reads extras and extensions.
func (o *object) properties() Properties {
	var p Properties
	if r, ok := o.raw("extras"); ok {
		p.Extras = append(json.RawMessage(nil), r...)
	}
	if r, ok := o.raw("extensions"); ok {
		var ext map[string]json.RawMessage
		if o.unmarshal("extensions", r, &ext, "an object") {
			p.Extensions = ext
		}
	}
	return p
}

// merge propagates a nested reader's error to its parent.
func (o *object) merge(c *object) {
	if c != nil && c.err != nil && o.err == nil {
		o.err = c.err
	}
}

func (o *object) requiredNumber(field string) float32 {
	if !o.has(field) {
		o.missing(field)
		return 0
	}
	return o.number(field, 0)
}

// at locates field of this object for resolution errors.
func (o *object) at(field string) site {
	return site{entity: o.entity, index: o.index, field: o.path + field}
}
