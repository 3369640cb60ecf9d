package model

import (
	"encoding/binary"
	"math"
)

const (
	// GPUVertexSize is the byte size of a marshaled GPUVertex.
	GPUVertexSize = 64
	// GPUSkinnedVertexSize is the byte size of a marshaled GPUSkinnedVertex.
	GPUSkinnedVertexSize = 96
)

// GPUVertex is the GPU-aligned layout of a static mesh vertex.
// Size: 64 bytes (std430 aligned, no padding required).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
	Color    [4]float32 // offset 32: per-vertex RGBA color (16 bytes)
	Tangent  [4]float32 // offset 48: tangent vector (xyz) + handedness (w) for normal mapping (16 bytes)
}

// Marshal serializes the vertex into a little-endian byte buffer.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	return g.appendTo(make([]byte, 0, GPUVertexSize))
}

func (g *GPUVertex) appendTo(buf []byte) []byte {
	buf = appendFloats(buf, g.Position[:]...)
	buf = appendFloats(buf, g.Normal[:]...)
	buf = appendFloats(buf, g.TexCoord[:]...)
	buf = appendFloats(buf, g.Color[:]...)
	return appendFloats(buf, g.Tangent[:]...)
}

// GPUSkinnedVertex extends GPUVertex with per-vertex bone skinning data.
// Size: 96 bytes (64 base vertex + 32 skinning data, std430 aligned, no padding required).
type GPUSkinnedVertex struct {
	GPUVertex              // offset  0: base vertex data (64 bytes)
	BoneIndices [4]uint32  // offset 64: indices of up to 4 influencing bones (16 bytes)
	BoneWeights [4]float32 // offset 80: blend weights for each bone (16 bytes)
}

// Marshal serializes the vertex into a little-endian byte buffer.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload.
func (g *GPUSkinnedVertex) Marshal() []byte {
	return g.appendTo(make([]byte, 0, GPUSkinnedVertexSize))
}

func (g *GPUSkinnedVertex) appendTo(buf []byte) []byte {
	buf = g.GPUVertex.appendTo(buf)
	for _, idx := range g.BoneIndices {
		buf = binary.LittleEndian.AppendUint32(buf, idx)
	}
	return appendFloats(buf, g.BoneWeights[:]...)
}

// MarshalVertices serializes a mesh's vertices back to back. Static layouts
// drop the skinning fields.
//
// Parameters:
//   - vertices: the vertices to serialize
//   - skinned: true for the 96-byte skinned layout, false for the 64-byte static layout
//
// Returns:
//   - []byte: the packed vertex buffer
func MarshalVertices(vertices []GPUSkinnedVertex, skinned bool) []byte {
	size := GPUVertexSize
	if skinned {
		size = GPUSkinnedVertexSize
	}
	buf := make([]byte, 0, len(vertices)*size)
	for i := range vertices {
		if skinned {
			buf = vertices[i].appendTo(buf)
		} else {
			buf = vertices[i].GPUVertex.appendTo(buf)
		}
	}
	return buf
}

func appendFloats(buf []byte, vs ...float32) []byte {
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// ComputeBoundingRadius calculates the bounding sphere radius from a slice of
// vertex positions: the maximum distance from the origin.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUSkinnedVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}

// ComputeBounds returns the axis-aligned bounding box of the vertex positions.
// Both corners are zero for an empty slice.
//
// Parameters:
//   - vertices: the vertex data
//
// Returns:
//   - [3]float32: the minimum corner
//   - [3]float32: the maximum corner
func ComputeBounds(vertices []GPUSkinnedVertex) ([3]float32, [3]float32) {
	if len(vertices) == 0 {
		return [3]float32{}, [3]float32{}
	}
	bmin, bmax := vertices[0].Position, vertices[0].Position
	for _, v := range vertices[1:] {
		for j := range 3 {
			bmin[j] = min(bmin[j], v.Position[j])
			bmax[j] = max(bmax[j], v.Position[j])
		}
	}
	return bmin, bmax
}
