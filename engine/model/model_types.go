// Package model holds the CPU-side products of importing a glTF document:
// meshes with GPU-ready vertex layouts, skeletons, animation clips and the
// flattened scene.
package model

import (
	"github.com/Carmen-Shannon/oxy-gltf/common"
)

// --- Transform & Skeleton Types ---

// Transform represents a decomposed node transform.
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// Bone represents a single joint of a skin.
type Bone struct {
	// Name is the joint node's name, or a generated "bone_N" name.
	Name string

	// NodeIndex is the index of the joint node in the source document.
	NodeIndex int

	// ParentIndex is the index of the parent bone (-1 for root bones).
	ParentIndex int32

	// InverseBindMatrix transforms from model space to bone space at bind pose.
	InverseBindMatrix [16]float32

	// LocalTransform is the joint node's rest transform relative to its parent.
	LocalTransform Transform
}

// Skeleton is a bone hierarchy ordered so that parents precede their children.
type Skeleton struct {
	// Name is the skin's name.
	Name string

	// Bones is the array of all bones in the skeleton.
	Bones []Bone

	// RootBoneIndices are indices of bones with no parent bone.
	RootBoneIndices []int32

	// BoneNameToIndex maps bone names to their indices for quick lookup.
	BoneNameToIndex map[string]int32
}

// --- Animation Types ---

// AnimationClip is one glTF animation, with channels grouped per bone.
type AnimationClip struct {
	// Name is the animation identifier.
	Name string

	// Duration is the largest keyframe time in seconds.
	Duration float32

	// TicksPerSecond is always 1: glTF keyframe times are seconds.
	TicksPerSecond float32

	// Channels contains animation data for each animated bone, ordered by bone index.
	Channels []AnimationChannel
}

// AnimationChannel contains keyframe data for a single bone.
type AnimationChannel struct {
	// BoneIndex is the index of the bone this channel animates.
	BoneIndex int32

	// Interpolation is LINEAR, STEP or CUBICSPLINE. CUBICSPLINE keys hold
	// (in-tangent, value, out-tangent) triplets in that order.
	Interpolation string

	// PositionKeys are keyframes for translation.
	PositionKeys []VectorKeyframe

	// RotationKeys are keyframes for rotation (quaternion).
	RotationKeys []QuaternionKeyframe

	// ScaleKeys are keyframes for scale.
	ScaleKeys []VectorKeyframe
}

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the 3D vector value at this keyframe.
	Value [3]float32
}

// QuaternionKeyframe stores a quaternion rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the quaternion value at this keyframe (x, y, z, w).
	Value [4]float32
}

// --- Import Types ---

// ImportedModel is the CPU-side product of importing a glTF document.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Meshes holds one entry per triangle primitive, in mesh then primitive order.
	Meshes []ImportedMesh

	// Nodes are the default scene's nodes in depth-first order.
	Nodes []ImportedNode

	// Skeleton is the first skin's bone hierarchy (nil for static models).
	Skeleton *Skeleton

	// Animations are all animation clips bundled with the model.
	Animations []*AnimationClip

	// Materials are the document's materials, indexed by ImportedMesh.MaterialIndex.
	Materials []common.ImportedMaterial
}

// ImportedNode is a scene node placed in scene space.
type ImportedNode struct {
	// Name is the node's name.
	Name string

	// NodeIndex is the node's index in the source document.
	NodeIndex int

	// ParentIndex is the position of the parent in ImportedModel.Nodes (-1 for roots).
	ParentIndex int

	// MeshIndices are positions in ImportedModel.Meshes drawn at this node.
	MeshIndices []int

	// Local is the node's rest transform.
	Local Transform

	// World is the column-major scene-space matrix.
	World [16]float32
}

// ImportedMesh represents a single primitive within an imported model.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// MeshIndex and PrimitiveIndex locate the primitive in the source document.
	MeshIndex      int
	PrimitiveIndex int

	// Vertices are the mesh vertices, including bone skinning data for skinned meshes.
	Vertices []GPUSkinnedVertex

	// Indices are the triangle indices.
	Indices []uint32

	// MaterialIndex references ImportedModel.Materials, -1 for the default material.
	MaterialIndex int

	// Skinned is true when the primitive carries JOINTS_0 and WEIGHTS_0.
	Skinned bool

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin [3]float32

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax [3]float32
}
