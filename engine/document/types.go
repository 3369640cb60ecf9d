package document

import "strconv"

// ComponentType is the numeric type of a single accessor component.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#accessor-data-types
type ComponentType uint32

// ComponentType constants
const (
	ComponentByte          ComponentType = 5120
	ComponentUnsignedByte  ComponentType = 5121
	ComponentShort         ComponentType = 5122
	ComponentUnsignedShort ComponentType = 5123
	ComponentUnsignedInt   ComponentType = 5125
	ComponentFloat         ComponentType = 5126
)

// Size returns the byte size of one component, or 0 for unknown codes.
func (c ComponentType) Size() int {
	switch c {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// IsValid reports whether c is one of the six format-defined codes.
func (c ComponentType) IsValid() bool {
	return c.Size() != 0
}

// IsInteger reports whether c is an integer type.
func (c ComponentType) IsInteger() bool {
	return c.IsValid() && c != ComponentFloat
}

// IsUnsigned reports whether c is an unsigned integer type.
func (c ComponentType) IsUnsigned() bool {
	return c == ComponentUnsignedByte || c == ComponentUnsignedShort || c == ComponentUnsignedInt
}

func (c ComponentType) String() string {
	switch c {
	case ComponentByte:
		return "BYTE"
	case ComponentUnsignedByte:
		return "UNSIGNED_BYTE"
	case ComponentShort:
		return "SHORT"
	case ComponentUnsignedShort:
		return "UNSIGNED_SHORT"
	case ComponentUnsignedInt:
		return "UNSIGNED_INT"
	case ComponentFloat:
		return "FLOAT"
	default:
		return "ComponentType(" + strconv.Itoa(int(c)) + ")"
	}
}

// AccessorType is the shape of an accessor element.
type AccessorType string

// AccessorType constants
const (
	AccessorScalar AccessorType = "SCALAR"
	AccessorVec2   AccessorType = "VEC2"
	AccessorVec3   AccessorType = "VEC3"
	AccessorVec4   AccessorType = "VEC4"
	AccessorMat2   AccessorType = "MAT2"
	AccessorMat3   AccessorType = "MAT3"
	AccessorMat4   AccessorType = "MAT4"
)

// Components returns the number of components in one element, or 0 for unknown types.
func (t AccessorType) Components() int {
	switch t {
	case AccessorScalar:
		return 1
	case AccessorVec2:
		return 2
	case AccessorVec3:
		return 3
	case AccessorVec4, AccessorMat2:
		return 4
	case AccessorMat3:
		return 9
	case AccessorMat4:
		return 16
	default:
		return 0
	}
}

// IsMatrix reports whether t is one of the matrix shapes.
func (t AccessorType) IsMatrix() bool {
	return t == AccessorMat2 || t == AccessorMat3 || t == AccessorMat4
}

// rows returns the number of rows per column: the vector width for matrices,
// the component count for everything else.
func (t AccessorType) rows() int {
	switch t {
	case AccessorMat2:
		return 2
	case AccessorMat3:
		return 3
	case AccessorMat4:
		return 4
	default:
		return t.Components()
	}
}

// PrimitiveMode is the topology of a mesh primitive.
type PrimitiveMode int

// PrimitiveMode constants
const (
	PrimitivePoints PrimitiveMode = iota
	PrimitiveLines
	PrimitiveLineLoop
	PrimitiveLineStrip
	PrimitiveTriangles
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
)

// AlphaMode is the alpha rendering mode of a material.
type AlphaMode string

// AlphaMode constants
const (
	AlphaOpaque AlphaMode = "OPAQUE"
	AlphaMask   AlphaMode = "MASK"
	AlphaBlend  AlphaMode = "BLEND"
)

// Interpolation is the keyframe interpolation of an animation sampler.
type Interpolation string

// Interpolation constants
const (
	InterpolationLinear      Interpolation = "LINEAR"
	InterpolationStep        Interpolation = "STEP"
	InterpolationCubicSpline Interpolation = "CUBICSPLINE"
)

// AnimationPath is the node property an animation channel drives.
type AnimationPath string

// AnimationPath constants
const (
	PathTranslation AnimationPath = "translation"
	PathRotation    AnimationPath = "rotation"
	PathScale       AnimationPath = "scale"
	PathWeights     AnimationPath = "weights"
)

// BufferTarget is the GPU buffer usage hint of a buffer view.
type BufferTarget int

// BufferTarget constants
const (
	TargetNone         BufferTarget = 0
	TargetArray        BufferTarget = 34962
	TargetElementArray BufferTarget = 34963
)

// Filter is a sampler magnification or minification filter code.
// Zero means the document left the filter undefined.
type Filter int

// Filter constants
const (
	FilterUnset                Filter = 0
	FilterNearest              Filter = 9728
	FilterLinear               Filter = 9729
	FilterNearestMipmapNearest Filter = 9984
	FilterLinearMipmapNearest  Filter = 9985
	FilterNearestMipmapLinear  Filter = 9986
	FilterLinearMipmapLinear   Filter = 9987
)

// Wrap is a sampler texture coordinate wrapping code.
type Wrap int

// Wrap constants
const (
	WrapClampToEdge    Wrap = 33071
	WrapMirroredRepeat Wrap = 33648
	WrapRepeat         Wrap = 10497
)

// CameraType selects the projection of a camera.
type CameraType string

// CameraType constants
const (
	CameraPerspective  CameraType = "perspective"
	CameraOrthographic CameraType = "orthographic"
)
