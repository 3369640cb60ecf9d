package document

import (
	"github.com/Carmen-Shannon/oxy-gltf/common"
)

// LocalTransform returns the node's column-major local matrix: Matrix when
// present, T * R * S otherwise.
//
// Returns:
//   - [16]float32: the local transform
func (n *Node) LocalTransform() [16]float32 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	var m [16]float32
	common.ComposeTRS(m[:], n.Translation, n.Rotation, n.Scale)
	return m
}

// TRS returns the node's translation, rotation and scale, decomposing Matrix
// when the node uses one.
//
// Returns:
//   - [3]float32: translation
//   - [4]float32: rotation quaternion (x, y, z, w)
//   - [3]float32: scale
func (n *Node) TRS() ([3]float32, [4]float32, [3]float32) {
	if n.Matrix != nil {
		return common.DecomposeTRS(*n.Matrix)
	}
	return n.Translation, n.Rotation, n.Scale
}

// WorldTransform returns the node's matrix in scene space by walking the
// Parent chain. A chain that loops back on itself stops at the first repeat.
//
// Returns:
//   - [16]float32: the world transform
func (n *Node) WorldTransform() [16]float32 {
	world := n.LocalTransform()
	seen := map[*Node]bool{n: true}
	for p := n.Parent; p != nil && !seen[p]; p = p.Parent {
		seen[p] = true
		parent := p.LocalTransform()
		common.Mul4(world[:], parent[:], world[:])
	}
	return world
}
