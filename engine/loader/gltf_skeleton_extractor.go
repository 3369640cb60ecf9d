package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	doc *document.Document
}

// gltfSkeletonExtractor defines the interface for extracting skeleton/bone data from a resolved glTF document.
// It converts skins into engine-ready Skeleton structs with topologically sorted bones.
type gltfSkeletonExtractor interface {
	// ExtractSkeleton extracts the skeleton of a skin and returns the old-to-new bone index mapping.
	// The mapping is needed to remap mesh JOINTS_0 values after topological sorting.
	//
	// Parameters:
	//   - skin: the skin to extract
	//
	// Returns:
	//   - *model.Skeleton: the extracted skeleton with parents before children
	//   - map[int32]int32: mapping from joint position to sorted bone index
	//   - error: error if the inverse bind matrices cannot be read
	ExtractSkeleton(skin *document.Skin) (*model.Skeleton, map[int32]int32, error)

	// FindSkinForMesh finds the skin applied to a mesh by any node instancing it.
	// Returns nil if no node skins the mesh.
	//
	// Parameters:
	//   - mesh: the mesh to find a skin for
	//
	// Returns:
	//   - *document.Skin: the skin, or nil if none
	FindSkinForMesh(mesh *document.Mesh) *document.Skin
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

// newGLTFSkeletonExtractor creates a new skeleton extractor for a resolved document.
//
// Parameters:
//   - doc: the resolved document
//
// Returns:
//   - gltfSkeletonExtractor: the skeleton extractor
func newGLTFSkeletonExtractor(doc *document.Document) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{doc: doc}
}

func (e *gltfSkeletonExtractorImpl) FindSkinForMesh(mesh *document.Mesh) *document.Skin {
	for _, node := range e.doc.Nodes {
		if node.Mesh == mesh && node.Skin != nil {
			return node.Skin
		}
	}
	return nil
}

func (e *gltfSkeletonExtractorImpl) ExtractSkeleton(skin *document.Skin) (*model.Skeleton, map[int32]int32, error) {
	var inverseBindMatrices [][16]float32
	if skin.InverseBindMatrices != nil {
		var err error
		inverseBindMatrices, err = skin.InverseBindMatrices.ReadMat4()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
		}
	}

	bones := make([]model.Bone, len(skin.Joints))
	boneNameToIndex := make(map[string]int32, len(skin.Joints))
	nodeToBone := make(map[*document.Node]int32, len(skin.Joints))

	for i, joint := range skin.Joints {
		bone := &bones[i]
		bone.Name = common.Coalesce(joint.Name, fmt.Sprintf("bone_%d", i))
		bone.NodeIndex = joint.Index
		boneNameToIndex[bone.Name] = int32(i)
		nodeToBone[joint] = int32(i)

		if i < len(inverseBindMatrices) {
			bone.InverseBindMatrix = inverseBindMatrices[i]
		} else {
			common.Identity(bone.InverseBindMatrix[:])
		}

		t, r, s := joint.TRS()
		bone.LocalTransform = model.Transform{Translation: t, Rotation: r, Scale: s}
	}

	// A bone's parent is its node's parent when that node is also a joint.
	var rootBoneIndices []int32
	for i, joint := range skin.Joints {
		if parent, ok := nodeToBone[joint.Parent]; ok {
			bones[i].ParentIndex = parent
			continue
		}
		bones[i].ParentIndex = -1
		rootBoneIndices = append(rootBoneIndices, int32(i))
	}

	sortedBones, sortedRootIndices, sortedNameToIndex, oldToNew := gltfTopologicalSortBones(bones, rootBoneIndices, boneNameToIndex)

	return &model.Skeleton{
		Name:            common.Coalesce(skin.Name, fmt.Sprintf("skin_%d", skin.Index)),
		Bones:           sortedBones,
		RootBoneIndices: sortedRootIndices,
		BoneNameToIndex: sortedNameToIndex,
	}, oldToNew, nil
}

// gltfTopologicalSortBones sorts bones so that parents always come before children.
// This is required for GPU bone matrix computation where we iterate bones in order
// and multiply by the parent's already-computed world matrix.
//
// Parameters:
//   - bones: original bone array
//   - rootIndices: indices of root bones (no parent)
//   - nameToIndex: original name-to-index mapping
//
// Returns:
//   - []model.Bone: sorted bone array with updated parent indices
//   - []int32: new root indices
//   - map[string]int32: updated name-to-index mapping
//   - map[int32]int32: old bone index to new bone index mapping
func gltfTopologicalSortBones(bones []model.Bone, rootIndices []int32, nameToIndex map[string]int32) ([]model.Bone, []int32, map[string]int32, map[int32]int32) {
	if len(bones) == 0 {
		return bones, rootIndices, nameToIndex, make(map[int32]int32)
	}

	// Build children map (old indices)
	children := make(map[int32][]int32)
	for i, bone := range bones {
		if bone.ParentIndex >= 0 {
			children[bone.ParentIndex] = append(children[bone.ParentIndex], int32(i))
		}
	}

	// BFS from roots to get topological order
	sorted := make([]int32, 0, len(bones))
	queue := make([]int32, 0, len(rootIndices))
	queue = append(queue, rootIndices...)

	for len(queue) > 0 {
		oldIdx := queue[0]
		queue = queue[1:]
		sorted = append(sorted, oldIdx)

		queue = append(queue, children[oldIdx]...)
	}

	// If we didn't get all bones (disconnected), append remaining
	if len(sorted) < len(bones) {
		visited := make(map[int32]bool)
		for _, idx := range sorted {
			visited[idx] = true
		}
		for i := range bones {
			if !visited[int32(i)] {
				sorted = append(sorted, int32(i))
			}
		}
	}

	// Build old-to-new index mapping
	oldToNew := make(map[int32]int32)
	for newIdx, oldIdx := range sorted {
		oldToNew[oldIdx] = int32(newIdx)
	}

	// Create new bone array with updated parent indices
	newBones := make([]model.Bone, len(bones))
	newNameToIndex := make(map[string]int32)
	var newRootIndices []int32

	for newIdx, oldIdx := range sorted {
		bone := bones[oldIdx]

		if bone.ParentIndex >= 0 {
			bone.ParentIndex = oldToNew[bone.ParentIndex]
		} else {
			newRootIndices = append(newRootIndices, int32(newIdx))
		}

		newBones[newIdx] = bone
		newNameToIndex[bone.Name] = int32(newIdx)
	}

	return newBones, newRootIndices, newNameToIndex, oldToNew
}
