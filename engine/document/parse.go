package document

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
)

// parser performs the decode phase: it materializes every entity with scalar
// fields set and registers a resolution action for every relational field.
type parser struct {
	doc *Document
	cfg *parseConfig
}

// decodeArray decodes the top-level array name, one entity per element.
func decodeArray[T any](root *object, name string, decode func(o *object, i int) *T) ([]*T, error) {
	raws := root.array(name)
	if root.err != nil {
		return nil, root.err
	}
	out := make([]*T, 0, len(raws))
	for i, raw := range raws {
		o, err := newObject(raw, name, i, "")
		if err != nil {
			return nil, err
		}
		v := decode(o, i)
		if o.err != nil {
			return nil, o.err
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *parser) decode(data []byte) error {
	root, err := newObject(data, "", -1, "")
	if err != nil {
		return err
	}
	d := p.doc

	d.Properties = root.properties()
	p.decodeAsset(root)
	d.ExtensionsUsed = root.stringList("extensionsUsed")
	d.ExtensionsRequired = root.stringList("extensionsRequired")
	if root.err != nil {
		return root.err
	}
	if err := p.checkExtensions(); err != nil {
		return err
	}

	// Decode order fixes the order of resolution actions: buffer views link
	// before the accessors and images that validate against them.
	if d.Buffers, err = decodeArray(root, "buffers", p.decodeBuffer); err != nil {
		return err
	}
	if d.BufferViews, err = decodeArray(root, "bufferViews", p.decodeBufferView); err != nil {
		return err
	}
	if d.Accessors, err = decodeArray(root, "accessors", p.decodeAccessor); err != nil {
		return err
	}
	if d.Images, err = decodeArray(root, "images", p.decodeImage); err != nil {
		return err
	}
	if d.Samplers, err = decodeArray(root, "samplers", p.decodeSampler); err != nil {
		return err
	}
	if d.Textures, err = decodeArray(root, "textures", p.decodeTexture); err != nil {
		return err
	}
	if d.Materials, err = decodeArray(root, "materials", p.decodeMaterial); err != nil {
		return err
	}
	if d.Meshes, err = decodeArray(root, "meshes", p.decodeMesh); err != nil {
		return err
	}
	if d.Cameras, err = decodeArray(root, "cameras", p.decodeCamera); err != nil {
		return err
	}
	if d.Skins, err = decodeArray(root, "skins", p.decodeSkin); err != nil {
		return err
	}
	if d.Nodes, err = decodeArray(root, "nodes", p.decodeNode); err != nil {
		return err
	}
	if d.Scenes, err = decodeArray(root, "scenes", p.decodeScene); err != nil {
		return err
	}
	if d.Animations, err = decodeArray(root, "animations", p.decodeAnimation); err != nil {
		return err
	}

	if raw, ok := root.ref("scene"); ok {
		link(d, root.at("scene"), "scenes", scenesOf, raw, assign(&d.Scene))
	}
	return root.err
}

// --- Asset Metadata ---

func (p *parser) decodeAsset(root *object) {
	a, ok := root.requiredChild("asset")
	if !ok {
		return
	}
	asset := Asset{
		Properties: a.properties(),
		Version:    a.requiredString("version"),
		MinVersion: a.str("minVersion", ""),
		Generator:  a.str("generator", ""),
		Copyright:  a.str("copyright", ""),
	}
	if a.err == nil {
		if major, _, ok := parseVersion(asset.Version); !ok || major != 2 {
			a.fail("version", "unsupported glTF version %q: must be 2.x", asset.Version)
		}
	}
	if a.err == nil && asset.MinVersion != "" {
		if major, minor, ok := parseVersion(asset.MinVersion); !ok || major != 2 || minor != 0 {
			a.fail("minVersion", "unsupported minimum version %q: only 2.0 is implemented", asset.MinVersion)
		}
	}
	root.merge(a)
	p.doc.Asset = asset
}

// parseVersion splits a "major.minor" version string.
func parseVersion(v string) (int, int, bool) {
	ma, mi, ok := strings.Cut(v, ".")
	if !ok {
		return 0, 0, false
	}
	major, err := strconv.Atoi(ma)
	if err != nil {
		return 0, 0, false
	}
	minor, err := strconv.Atoi(mi)
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

func (p *parser) checkExtensions() error {
	for _, name := range p.doc.ExtensionsRequired {
		if _, ok := p.cfg.supported[name]; !ok {
			return gerrors.Parse("", -1, "extensionsRequired", "required extension %q is not supported", name)
		}
	}
	for _, name := range p.doc.ExtensionsUsed {
		if _, ok := p.cfg.supported[name]; !ok {
			p.cfg.logger.Warn("extension is not interpreted, its data is kept raw", zap.String("extension", name))
		}
	}
	return nil
}

// --- Buffer Data ---

func (p *parser) decodeBuffer(o *object, i int) *Buffer {
	return &Buffer{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
		URI:        o.str("uri", ""),
		ByteLength: o.positive("byteLength"),
		doc:        p.doc,
	}
}

func (p *parser) decodeBufferView(o *object, i int) *BufferView {
	v := &BufferView{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
		ByteOffset: o.nonNegative("byteOffset", 0),
		ByteLength: o.positive("byteLength"),
		ByteStride: o.integer("byteStride", 0),
		Target:     BufferTarget(o.integer("target", 0)),
	}
	if o.has("byteStride") {
		s := v.ByteStride
		if s < p.cfg.minStride || s > p.cfg.maxStride || (p.cfg.strideAlign > 0 && s%p.cfg.strideAlign != 0) {
			o.fail("byteStride", "stride %d must be within [%d, %d] and a multiple of %d",
				s, p.cfg.minStride, p.cfg.maxStride, p.cfg.strideAlign)
		}
	}
	switch v.Target {
	case TargetNone, TargetArray, TargetElementArray:
	default:
		o.fail("target", "invalid buffer view target %d", v.Target)
	}

	raw := o.requiredRef("buffer")
	link(p.doc, o.at("buffer"), "buffers", buffersOf, raw, func(b *Buffer) error {
		if end := v.ByteOffset + v.ByteLength; end > b.ByteLength {
			return gerrors.New(gerrors.KindOutOfRange).Entity("bufferViews", i).Field("byteLength").Value(end).
				Detail("range [%d, %d) exceeds buffer %d byteLength %d", v.ByteOffset, end, b.Index, b.ByteLength).Build()
		}
		v.Buffer = b
		return nil
	})
	return v
}

func (p *parser) decodeAccessor(o *object, i int) *Accessor {
	a := &Accessor{
		Properties:    o.properties(),
		Index:         i,
		Name:          o.str("name", ""),
		ByteOffset:    o.nonNegative("byteOffset", 0),
		ComponentType: ComponentType(o.requiredInt("componentType")),
		Normalized:    o.boolean("normalized", false),
		Count:         o.positive("count"),
		Type:          AccessorType(o.requiredString("type")),
	}
	if o.err != nil {
		return a
	}

	switch {
	case !a.ComponentType.IsValid():
		o.fail("componentType", "invalid component type %d", uint32(a.ComponentType))
	case a.Type.Components() == 0:
		o.fail("type", "invalid accessor type %q", a.Type)
	case a.Normalized && (a.ComponentType == ComponentFloat || a.ComponentType == ComponentUnsignedInt):
		o.fail("normalized", "normalization is not defined for %s", a.ComponentType)
	case a.ByteOffset%a.ComponentType.Size() != 0:
		o.fail("byteOffset", "offset %d is not a multiple of the component size %d", a.ByteOffset, a.ComponentType.Size())
	}
	if o.err != nil {
		return a
	}

	if (!o.has("bufferView") || o.has("sparse")) && a.Count > p.cfg.maxImplicit/a.ElementSize() {
		o.err = gerrors.New(gerrors.KindOutOfRange).Entity("accessors", i).Field("count").Value(a.Count).
			Detail("%d elements of %d bytes exceed the %d byte limit for implicit data", a.Count, a.ElementSize(), p.cfg.maxImplicit).Build()
		return a
	}

	n := a.Type.Components()
	if v, ok := o.floats("min", n); ok {
		a.Min = v
	}
	if v, ok := o.floats("max", n); ok {
		a.Max = v
	}

	if raw, ok := o.ref("bufferView"); ok {
		link(p.doc, o.at("bufferView"), "bufferViews", bufferViewsOf, raw, func(v *BufferView) error {
			return bindAccessorView(a, v)
		})
	}

	if so, ok := o.child("sparse"); ok {
		a.Sparse = p.decodeSparse(so, a)
		o.merge(so)
	}
	return a
}

// bindAccessorView checks that v can hold every element of a.
func bindAccessorView(a *Accessor, v *BufferView) error {
	elem := a.ElementSize()
	if v.ByteStride != 0 && elem > v.ByteStride {
		return gerrors.Incompatible("accessors", a.Index, "bufferView",
			"element size %d exceeds bufferView %d byteStride %d", elem, v.Index, v.ByteStride)
	}
	if end := a.ByteOffset + span(a.Count, elem, v.ByteStride); end > v.ByteLength {
		return gerrors.New(gerrors.KindOutOfRange).Entity("accessors", a.Index).Field("count").Value(a.Count).
			Detail("elements end at byte %d, beyond bufferView %d byteLength %d", end, v.Index, v.ByteLength).Build()
	}
	a.BufferView = v
	return nil
}

// span is the number of bytes count elements of size elem occupy at stride
// (elem when stride is zero). The last element needs no trailing padding.
func span(count, elem, stride int) int {
	if count == 0 {
		return 0
	}
	if stride == 0 {
		stride = elem
	}
	return (count-1)*stride + elem
}

func (p *parser) decodeSparse(o *object, a *Accessor) *Sparse {
	s := &Sparse{
		Properties: o.properties(),
		Count:      o.positive("count"),
	}
	if o.err == nil && s.Count > a.Count {
		o.fail("count", "sparse count %d exceeds accessor count %d", s.Count, a.Count)
	}

	if xo, ok := o.requiredChild("indices"); ok {
		s.Indices = SparseIndices{
			Properties:    xo.properties(),
			ByteOffset:    xo.nonNegative("byteOffset", 0),
			ComponentType: ComponentType(xo.requiredInt("componentType")),
		}
		raw := xo.requiredRef("bufferView")
		at := xo.at("bufferView")
		link(p.doc, at, "bufferViews", bufferViewsOf, raw, func(v *BufferView) error {
			ct := s.Indices.ComponentType
			if !ct.IsUnsigned() {
				return gerrors.Incompatible(at.entity, at.index, "sparse.indices.componentType",
					"sparse indices must use an unsigned integer type, got %s", ct)
			}
			if v.ByteStride != 0 {
				return gerrors.Incompatible(at.entity, at.index, at.field,
					"bufferView %d holds sparse indices and must not declare byteStride", v.Index)
			}
			if end := s.Indices.ByteOffset + s.Count*ct.Size(); end > v.ByteLength {
				return gerrors.New(gerrors.KindOutOfRange).Entity(at.entity, at.index).Field("sparse.indices").Value(end).
					Detail("indices end at byte %d, beyond bufferView %d byteLength %d", end, v.Index, v.ByteLength).Build()
			}
			s.Indices.BufferView = v
			return nil
		})
		o.merge(xo)
	}

	if vo, ok := o.requiredChild("values"); ok {
		s.Values = SparseValues{
			Properties: vo.properties(),
			ByteOffset: vo.nonNegative("byteOffset", 0),
		}
		raw := vo.requiredRef("bufferView")
		at := vo.at("bufferView")
		link(p.doc, at, "bufferViews", bufferViewsOf, raw, func(v *BufferView) error {
			if v.ByteStride != 0 {
				return gerrors.Incompatible(at.entity, at.index, at.field,
					"bufferView %d holds sparse values and must not declare byteStride", v.Index)
			}
			if end := s.Values.ByteOffset + s.Count*a.ElementSize(); end > v.ByteLength {
				return gerrors.New(gerrors.KindOutOfRange).Entity(at.entity, at.index).Field("sparse.values").Value(end).
					Detail("values end at byte %d, beyond bufferView %d byteLength %d", end, v.Index, v.ByteLength).Build()
			}
			s.Values.BufferView = v
			return nil
		})
		o.merge(vo)
	}
	return s
}

// --- Materials and Textures ---

func (p *parser) decodeImage(o *object, i int) *Image {
	img := &Image{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
		URI:        o.str("uri", ""),
		MimeType:   o.str("mimeType", ""),
		doc:        p.doc,
	}
	raw, hasView := o.ref("bufferView")
	switch {
	case hasView && img.URI != "":
		o.fail("uri", "must not be defined together with bufferView")
	case hasView && img.MimeType == "":
		o.missing("mimeType")
	case !hasView && img.URI == "":
		o.missing("uri")
	}
	if hasView {
		link(p.doc, o.at("bufferView"), "bufferViews", bufferViewsOf, raw, assign(&img.BufferView))
	}
	return img
}

func (p *parser) decodeSampler(o *object, i int) *Sampler {
	s := &Sampler{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
		MagFilter:  Filter(o.integer("magFilter", 0)),
		MinFilter:  Filter(o.integer("minFilter", 0)),
		WrapS:      Wrap(o.integer("wrapS", int(WrapRepeat))),
		WrapT:      Wrap(o.integer("wrapT", int(WrapRepeat))),
	}
	switch s.MagFilter {
	case FilterUnset, FilterNearest, FilterLinear:
	default:
		o.fail("magFilter", "invalid magnification filter %d", s.MagFilter)
	}
	switch s.MinFilter {
	case FilterUnset, FilterNearest, FilterLinear,
		FilterNearestMipmapNearest, FilterLinearMipmapNearest,
		FilterNearestMipmapLinear, FilterLinearMipmapLinear:
	default:
		o.fail("minFilter", "invalid minification filter %d", s.MinFilter)
	}
	checkWrap(o, "wrapS", s.WrapS)
	checkWrap(o, "wrapT", s.WrapT)
	return s
}

func checkWrap(o *object, field string, w Wrap) {
	switch w {
	case WrapClampToEdge, WrapMirroredRepeat, WrapRepeat:
	default:
		o.fail(field, "invalid wrap mode %d", w)
	}
}

func (p *parser) decodeTexture(o *object, i int) *Texture {
	t := &Texture{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
	}
	if raw, ok := o.ref("sampler"); ok {
		link(p.doc, o.at("sampler"), "samplers", samplersOf, raw, assign(&t.Sampler))
	}
	if raw, ok := o.ref("source"); ok {
		link(p.doc, o.at("source"), "images", imagesOf, raw, assign(&t.Source))
	}
	return t
}

func (p *parser) decodeMaterial(o *object, i int) *Material {
	m := &Material{
		Properties:  o.properties(),
		Index:       i,
		Name:        o.str("name", ""),
		AlphaMode:   AlphaMode(o.str("alphaMode", string(AlphaOpaque))),
		AlphaCutoff: o.number("alphaCutoff", 0.5),
		DoubleSided: o.boolean("doubleSided", false),
		PBRMetallicRoughness: PBRMetallicRoughness{
			BaseColorFactor: [4]float32{1, 1, 1, 1},
			MetallicFactor:  1,
			RoughnessFactor: 1,
		},
	}
	o.fixed("emissiveFactor", m.EmissiveFactor[:])

	switch m.AlphaMode {
	case AlphaOpaque, AlphaMask, AlphaBlend:
	default:
		o.fail("alphaMode", "invalid alpha mode %q", m.AlphaMode)
	}
	if m.AlphaCutoff < 0 {
		o.fail("alphaCutoff", "must be >= 0, got %v", m.AlphaCutoff)
	}

	if po, ok := o.child("pbrMetallicRoughness"); ok {
		pbr := &m.PBRMetallicRoughness
		pbr.Properties = po.properties()
		po.fixed("baseColorFactor", pbr.BaseColorFactor[:])
		pbr.MetallicFactor = po.numberIn("metallicFactor", 1, 0, 1)
		pbr.RoughnessFactor = po.numberIn("roughnessFactor", 1, 0, 1)
		if to, ok := po.child("baseColorTexture"); ok {
			pbr.BaseColorTexture = &TextureInfo{}
			p.decodeTextureInfo(to, pbr.BaseColorTexture)
			po.merge(to)
		}
		if to, ok := po.child("metallicRoughnessTexture"); ok {
			pbr.MetallicRoughnessTexture = &TextureInfo{}
			p.decodeTextureInfo(to, pbr.MetallicRoughnessTexture)
			po.merge(to)
		}
		o.merge(po)
	}
	if to, ok := o.child("normalTexture"); ok {
		m.NormalTexture = &NormalTextureInfo{Scale: to.number("scale", 1)}
		p.decodeTextureInfo(to, &m.NormalTexture.TextureInfo)
		o.merge(to)
	}
	if to, ok := o.child("occlusionTexture"); ok {
		m.OcclusionTexture = &OcclusionTextureInfo{Strength: to.numberIn("strength", 1, 0, 1)}
		p.decodeTextureInfo(to, &m.OcclusionTexture.TextureInfo)
		o.merge(to)
	}
	if to, ok := o.child("emissiveTexture"); ok {
		m.EmissiveTexture = &TextureInfo{}
		p.decodeTextureInfo(to, m.EmissiveTexture)
		o.merge(to)
	}
	return m
}

// decodeTextureInfo fills info in place so the resolution action can store
// the texture link in its final location.
func (p *parser) decodeTextureInfo(o *object, info *TextureInfo) {
	info.Properties = o.properties()
	info.TexCoord = o.nonNegative("texCoord", 0)
	raw := o.requiredRef("index")
	link(p.doc, o.at("index"), "textures", texturesOf, raw, assign(&info.Texture))
}

// --- Mesh Data ---

func (p *parser) decodeMesh(o *object, i int) *Mesh {
	m := &Mesh{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
		Weights:    o.float32s("weights"),
	}
	if !o.has("primitives") {
		o.missing("primitives")
		return m
	}
	raws := o.array("primitives")
	if o.err == nil && len(raws) == 0 {
		o.fail("primitives", "must contain at least one primitive")
	}
	for k, raw := range raws {
		po, ok := o.element("primitives", k, raw)
		if !ok {
			break
		}
		m.Primitives = append(m.Primitives, p.decodePrimitive(po))
		o.merge(po)
		if o.err != nil {
			break
		}
	}
	return m
}

func (p *parser) decodePrimitive(o *object) *Primitive {
	prim := &Primitive{
		Properties: o.properties(),
		Mode:       PrimitiveMode(o.integer("mode", int(PrimitiveTriangles))),
	}
	if prim.Mode < PrimitivePoints || prim.Mode > PrimitiveTriangleFan {
		o.fail("mode", "invalid primitive mode %d", prim.Mode)
	}

	if !o.has("attributes") {
		o.missing("attributes")
		return prim
	}
	attrs := o.refMap("attributes")
	prim.Attributes = make(map[string]*Accessor, len(attrs))
	for _, semantic := range slices.Sorted(maps.Keys(attrs)) {
		link(p.doc, o.at("attributes."+semantic), "accessors", accessorsOf, attrs[semantic], func(a *Accessor) error {
			prim.Attributes[semantic] = a
			return nil
		})
	}

	if raw, ok := o.ref("indices"); ok {
		at := o.at("indices")
		link(p.doc, at, "accessors", accessorsOf, raw, func(a *Accessor) error {
			if a.Type != AccessorScalar || !a.ComponentType.IsUnsigned() {
				return gerrors.Incompatible(at.entity, at.index, at.field,
					"index accessor %d must be SCALAR with an unsigned component type, got %s %s", a.Index, a.Type, a.ComponentType)
			}
			prim.Indices = a
			return nil
		})
	}
	if raw, ok := o.ref("material"); ok {
		link(p.doc, o.at("material"), "materials", materialsOf, raw, assign(&prim.Material))
	}

	targets := o.array("targets")
	for k, raw := range targets {
		to, ok := o.element("targets", k, raw)
		if !ok {
			break
		}
		target := make(map[string]*Accessor, len(to.fields))
		for _, semantic := range slices.Sorted(maps.Keys(to.fields)) {
			idx := to.integer(semantic, 0)
			link(p.doc, to.at(semantic), "accessors", accessorsOf, idx, func(a *Accessor) error {
				target[semantic] = a
				return nil
			})
		}
		prim.Targets = append(prim.Targets, target)
		o.merge(to)
	}
	return prim
}

// --- Cameras ---

func (p *parser) decodeCamera(o *object, i int) *Camera {
	c := &Camera{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
		Type:       CameraType(o.requiredString("type")),
	}
	if o.err != nil {
		return c
	}

	switch c.Type {
	case CameraPerspective:
		po, ok := o.requiredChild("perspective")
		if !ok {
			return c
		}
		c.Perspective = &Perspective{
			Properties:  po.properties(),
			AspectRatio: po.number("aspectRatio", 0),
			YFov:        po.requiredNumber("yfov"),
			ZFar:        po.number("zfar", 0),
			ZNear:       po.requiredNumber("znear"),
		}
		pc := c.Perspective
		switch {
		case po.err != nil:
		case pc.YFov <= 0:
			po.fail("yfov", "must be > 0, got %v", pc.YFov)
		case pc.ZNear <= 0:
			po.fail("znear", "must be > 0, got %v", pc.ZNear)
		case po.has("aspectRatio") && pc.AspectRatio <= 0:
			po.fail("aspectRatio", "must be > 0, got %v", pc.AspectRatio)
		case po.has("zfar") && pc.ZFar <= pc.ZNear:
			po.fail("zfar", "must be greater than znear %v, got %v", pc.ZNear, pc.ZFar)
		}
		o.merge(po)
	case CameraOrthographic:
		oo, ok := o.requiredChild("orthographic")
		if !ok {
			return c
		}
		c.Orthographic = &Orthographic{
			Properties: oo.properties(),
			XMag:       oo.requiredNumber("xmag"),
			YMag:       oo.requiredNumber("ymag"),
			ZFar:       oo.requiredNumber("zfar"),
			ZNear:      oo.requiredNumber("znear"),
		}
		oc := c.Orthographic
		switch {
		case oo.err != nil:
		case oc.ZNear < 0:
			oo.fail("znear", "must be >= 0, got %v", oc.ZNear)
		case oc.ZFar <= oc.ZNear:
			oo.fail("zfar", "must be greater than znear %v, got %v", oc.ZNear, oc.ZFar)
		}
		o.merge(oo)
	default:
		o.fail("type", "invalid camera type %q", c.Type)
	}
	return c
}

// --- Skeletal Animation ---

func (p *parser) decodeSkin(o *object, i int) *Skin {
	s := &Skin{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
	}
	if !o.has("joints") {
		o.missing("joints")
		return s
	}
	joints := o.refs("joints")
	if o.err == nil && len(joints) == 0 {
		o.fail("joints", "must contain at least one joint")
	}

	if raw, ok := o.ref("inverseBindMatrices"); ok {
		at := o.at("inverseBindMatrices")
		link(p.doc, at, "accessors", accessorsOf, raw, func(a *Accessor) error {
			if a.Type != AccessorMat4 || a.ComponentType != ComponentFloat {
				return gerrors.Incompatible(at.entity, at.index, at.field,
					"accessor %d must be MAT4 FLOAT, got %s %s", a.Index, a.Type, a.ComponentType)
			}
			if a.Count < len(joints) {
				return gerrors.Incompatible(at.entity, at.index, at.field,
					"accessor %d has %d matrices for %d joints", a.Index, a.Count, len(joints))
			}
			s.InverseBindMatrices = a
			return nil
		})
	}
	if raw, ok := o.ref("skeleton"); ok {
		link(p.doc, o.at("skeleton"), "nodes", nodesOf, raw, assign(&s.Skeleton))
	}
	linkAll(p.doc, o.at("joints"), "nodes", nodesOf, joints, func(ns []*Node) error {
		s.Joints = ns
		return nil
	})
	return s
}

// --- Scene Graph ---

func (p *parser) decodeNode(o *object, i int) *Node {
	n := &Node{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
		Rotation:   [4]float32{0, 0, 0, 1},
		Scale:      [3]float32{1, 1, 1},
		Weights:    o.float32s("weights"),
	}
	hasT := o.fixed("translation", n.Translation[:])
	hasR := o.fixed("rotation", n.Rotation[:])
	hasS := o.fixed("scale", n.Scale[:])

	var m [16]float32
	if o.fixed("matrix", m[:]) {
		if hasT || hasR || hasS {
			o.fail("matrix", "must not be defined together with translation, rotation or scale")
		}
		n.Matrix = &m
	}

	if raw, ok := o.ref("mesh"); ok {
		link(p.doc, o.at("mesh"), "meshes", meshesOf, raw, assign(&n.Mesh))
	}
	if raw, ok := o.ref("camera"); ok {
		link(p.doc, o.at("camera"), "cameras", camerasOf, raw, assign(&n.Camera))
	}
	if raw, ok := o.ref("skin"); ok {
		link(p.doc, o.at("skin"), "skins", skinsOf, raw, assign(&n.Skin))
	}
	linkAll(p.doc, o.at("children"), "nodes", nodesOf, o.refs("children"), func(children []*Node) error {
		n.Children = children
		for _, c := range children {
			c.Parent = n
		}
		return nil
	})
	return n
}

func (p *parser) decodeScene(o *object, i int) *Scene {
	s := &Scene{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
	}
	linkAll(p.doc, o.at("nodes"), "nodes", nodesOf, o.refs("nodes"), func(roots []*Node) error {
		s.Nodes = roots
		return nil
	})
	return s
}

func (p *parser) decodeAnimation(o *object, i int) *Animation {
	a := &Animation{
		Properties: o.properties(),
		Index:      i,
		Name:       o.str("name", ""),
	}
	for _, field := range []string{"samplers", "channels"} {
		if !o.has(field) {
			o.missing(field)
			return a
		}
		if len(o.array(field)) == 0 && o.err == nil {
			o.fail(field, "must contain at least one element")
			return a
		}
	}

	for k, raw := range o.array("samplers") {
		so, ok := o.element("samplers", k, raw)
		if !ok {
			break
		}
		s := &AnimationSampler{
			Properties:    so.properties(),
			Index:         k,
			Interpolation: Interpolation(so.str("interpolation", string(InterpolationLinear))),
		}
		switch s.Interpolation {
		case InterpolationLinear, InterpolationStep, InterpolationCubicSpline:
		default:
			so.fail("interpolation", "invalid interpolation %q", s.Interpolation)
		}
		input := so.requiredRef("input")
		output := so.requiredRef("output")
		at := so.at("input")
		link(p.doc, at, "accessors", accessorsOf, input, func(acc *Accessor) error {
			if acc.Type != AccessorScalar || acc.ComponentType != ComponentFloat {
				return gerrors.Incompatible(at.entity, at.index, at.field,
					"keyframe accessor %d must be SCALAR FLOAT, got %s %s", acc.Index, acc.Type, acc.ComponentType)
			}
			s.Input = acc
			return nil
		})
		link(p.doc, so.at("output"), "accessors", accessorsOf, output, assign(&s.Output))
		a.Samplers = append(a.Samplers, s)
		o.merge(so)
		if o.err != nil {
			return a
		}
	}

	samplers := func(*Document) []*AnimationSampler { return a.Samplers }
	for k, raw := range o.array("channels") {
		co, ok := o.element("channels", k, raw)
		if !ok {
			break
		}
		ch := &Channel{Properties: co.properties()}
		link(p.doc, co.at("sampler"), "samplers", samplers, co.requiredRef("sampler"), assign(&ch.Sampler))

		if to, ok := co.requiredChild("target"); ok {
			ch.Target = ChannelTarget{
				Properties: to.properties(),
				Path:       AnimationPath(to.requiredString("path")),
			}
			switch ch.Target.Path {
			case PathTranslation, PathRotation, PathScale, PathWeights:
			default:
				to.fail("path", "invalid animation path %q", ch.Target.Path)
			}
			if raw, ok := to.ref("node"); ok {
				link(p.doc, to.at("node"), "nodes", nodesOf, raw, assign(&ch.Target.Node))
			}
			co.merge(to)
		}
		a.Channels = append(a.Channels, ch)
		o.merge(co)
		if o.err != nil {
			return a
		}
	}
	return a
}
