package document

import (
	"encoding/json"
	"sync"
)

// Properties holds the extension points every glTF object carries. Both are
// kept as raw JSON; no extension is interpreted by this package.
type Properties struct {
	// Extras is application-specific data, nil when absent.
	Extras json.RawMessage

	// Extensions maps extension names to their raw JSON objects.
	Extensions map[string]json.RawMessage
}

// --- Asset Metadata ---

// Asset contains metadata about the glTF asset.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-asset
type Asset struct {
	Properties

	// Version is the glTF version the asset targets, "2.x".
	Version string

	// MinVersion is the minimum glTF version required, empty when absent.
	MinVersion string

	// Generator is the tool that generated this asset.
	Generator string

	// Copyright information.
	Copyright string
}

// --- Scene Graph ---

// Scene is a set of root nodes.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-scene
type Scene struct {
	Properties
	Index int
	Name  string

	// Nodes are the root nodes of this scene, in declaration order.
	Nodes []*Node
}

// Node is an element of the node hierarchy. A node carries either Matrix or
// the TRS triple; the TRS fields hold format defaults when Matrix is used.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-node
type Node struct {
	Properties
	Index int
	Name  string

	// Parent is the node listing this node as a child, nil for roots.
	// It is a back-link only; the hierarchy is owned by Children.
	Parent *Node

	// Children in declaration order.
	Children []*Node

	Mesh   *Mesh
	Camera *Camera
	Skin   *Skin

	// Matrix is the column-major local transform, nil when TRS is used.
	Matrix *[16]float32

	Translation [3]float32
	Rotation    [4]float32 // quaternion (x, y, z, w)
	Scale       [3]float32

	// Weights are morph target weights overriding the mesh's defaults.
	Weights []float32
}

// --- Mesh Data ---

// Mesh is a set of primitives to be rendered.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh
type Mesh struct {
	Properties
	Index int
	Name  string

	Primitives []*Primitive

	// Weights are the default morph target weights.
	Weights []float32
}

// Primitive is geometry to be rendered with a single material.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh-primitive
type Primitive struct {
	Properties

	// Attributes maps semantics (POSITION, NORMAL, TEXCOORD_0 ...) to accessors.
	Attributes map[string]*Accessor

	// Indices is the index accessor, nil for non-indexed geometry.
	Indices *Accessor

	Material *Material
	Mode     PrimitiveMode

	// Targets are morph targets, each mapping semantics to displacement accessors.
	Targets []map[string]*Accessor
}

// Attribute returns the accessor bound to semantic, or nil.
func (p *Primitive) Attribute(semantic string) *Accessor {
	return p.Attributes[semantic]
}

// --- Materials and Textures ---

// Material defines the appearance of a primitive. Every factor holds its
// format default when the document omits it.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material
type Material struct {
	Properties
	Index int
	Name  string

	PBRMetallicRoughness PBRMetallicRoughness

	NormalTexture    *NormalTextureInfo
	OcclusionTexture *OcclusionTextureInfo
	EmissiveTexture  *TextureInfo

	EmissiveFactor [3]float32
	AlphaMode      AlphaMode
	AlphaCutoff    float32
	DoubleSided    bool
}

// PBRMetallicRoughness is the metallic-roughness material model.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material-pbrmetallicroughness
type PBRMetallicRoughness struct {
	Properties

	BaseColorFactor          [4]float32
	BaseColorTexture         *TextureInfo
	MetallicFactor           float32
	RoughnessFactor          float32
	MetallicRoughnessTexture *TextureInfo
}

// TextureInfo references a texture and the UV set used to sample it.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-textureinfo
type TextureInfo struct {
	Properties

	Texture  *Texture
	TexCoord int
}

// NormalTextureInfo references a tangent-space normal map.
type NormalTextureInfo struct {
	TextureInfo

	// Scale multiplies the sampled X and Y components.
	Scale float32
}

// OcclusionTextureInfo references an occlusion map.
type OcclusionTextureInfo struct {
	TextureInfo

	// Strength scales the occlusion effect.
	Strength float32
}

// Texture combines an image and a sampler.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-texture
type Texture struct {
	Properties
	Index int
	Name  string

	// Sampler is nil when the document leaves it undefined; see EffectiveSampler.
	Sampler *Sampler

	// Source is nil when only an extension provides the image.
	Source *Image
}

// EffectiveSampler returns the texture's sampler, or the format's default
// sampler (repeat wrapping, undefined filters) when none is referenced.
func (t *Texture) EffectiveSampler() *Sampler {
	if t.Sampler != nil {
		return t.Sampler
	}
	return DefaultSampler()
}

// Image is a texture image source, either a URI or a buffer view.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-image
type Image struct {
	Properties
	Index int
	Name  string

	URI        string
	MimeType   string
	BufferView *BufferView

	doc  *Document
	once sync.Once
	data []byte
	err  error
}

// Sampler defines texture filtering and wrapping.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
type Sampler struct {
	Properties
	Index int // -1 for the default sampler
	Name  string

	MagFilter Filter
	MinFilter Filter
	WrapS     Wrap
	WrapT     Wrap
}

// DefaultSampler returns a new sampler holding the format defaults.
func DefaultSampler() *Sampler {
	return &Sampler{
		Index: -1,
		WrapS: WrapRepeat,
		WrapT: WrapRepeat,
	}
}

// --- Cameras ---

// Camera is a projection attached to a node.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-camera
type Camera struct {
	Properties
	Index int
	Name  string

	Type         CameraType
	Perspective  *Perspective
	Orthographic *Orthographic
}

// Perspective projection parameters. AspectRatio and ZFar are zero when the
// document leaves them undefined (infinite far plane).
type Perspective struct {
	Properties

	AspectRatio float32
	YFov        float32
	ZFar        float32
	ZNear       float32
}

// Orthographic projection parameters.
type Orthographic struct {
	Properties

	XMag  float32
	YMag  float32
	ZFar  float32
	ZNear float32
}

// --- Skeletal Animation ---

// Skin binds a mesh to a joint hierarchy.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-skin
type Skin struct {
	Properties
	Index int
	Name  string

	// InverseBindMatrices is a MAT4/FLOAT accessor parallel to Joints, or nil.
	InverseBindMatrices *Accessor

	// Skeleton is the common root of the joint hierarchy, or nil.
	Skeleton *Node

	// Joints in declaration order; the order matches InverseBindMatrices.
	Joints []*Node
}

// Animation is a set of keyframe channels.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-animation
type Animation struct {
	Properties
	Index int
	Name  string

	Channels []*Channel
	Samplers []*AnimationSampler
}

// Channel connects an animation sampler to a node property.
type Channel struct {
	Properties

	Sampler *AnimationSampler
	Target  ChannelTarget
}

// ChannelTarget names the animated node and property. Node is nil when an
// extension supplies the target.
type ChannelTarget struct {
	Properties

	Node *Node
	Path AnimationPath
}

// AnimationSampler pairs keyframe times with output values.
type AnimationSampler struct {
	Properties
	Index int // position within the owning animation

	// Input is a SCALAR/FLOAT accessor of keyframe times in seconds.
	Input *Accessor

	// Output holds the keyframe values.
	Output *Accessor

	Interpolation Interpolation
}

// --- Buffer Data ---

// Accessor is a typed view over the bytes of a buffer view. An accessor
// without a buffer view reads as zeros (before any sparse substitution).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor
type Accessor struct {
	Properties
	Index int
	Name  string

	BufferView    *BufferView
	ByteOffset    int
	ComponentType ComponentType
	Normalized    bool
	Count         int
	Type          AccessorType

	// Min and Max are the per-component bounds, nil when absent.
	Min []float64
	Max []float64

	Sparse *Sparse

	sparseOnce sync.Once
	sparseData []byte
	sparseErr  error
}

// Sparse substitutes Count elements of the base accessor.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor-sparse
type Sparse struct {
	Properties

	Count   int
	Indices SparseIndices
	Values  SparseValues
}

// SparseIndices locates the strictly increasing element indices to substitute.
type SparseIndices struct {
	Properties

	BufferView    *BufferView
	ByteOffset    int
	ComponentType ComponentType
}

// SparseValues locates the substituted elements, tightly packed, using the
// base accessor's component type and shape.
type SparseValues struct {
	Properties

	BufferView *BufferView
	ByteOffset int
}

// BufferView is a sub-range of a buffer.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-bufferview
type BufferView struct {
	Properties
	Index int
	Name  string

	Buffer     *Buffer
	ByteOffset int
	ByteLength int

	// ByteStride is zero when elements are tightly packed.
	ByteStride int

	Target BufferTarget
}

// Buffer is a source of raw bytes. An empty URI refers to the binary chunk of
// the enclosing container.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-buffer
type Buffer struct {
	Properties
	Index int
	Name  string

	URI        string
	ByteLength int

	doc  *Document
	once sync.Once
	data []byte
	err  error
}
