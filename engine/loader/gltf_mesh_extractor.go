package loader

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	doc    *document.Document
	logger *zap.Logger
}

// gltfMeshExtractor defines the interface for extracting mesh data from a resolved glTF document.
// It converts accessor data into engine-ready ImportedMesh structs.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh.
	// Returns one ImportedMesh per triangle primitive; point and line primitives are skipped.
	//
	// Parameters:
	//   - mesh: the mesh to extract
	//
	// Returns:
	//   - []model.ImportedMesh: one ImportedMesh per triangle primitive
	//   - error: error if extraction fails
	ExtractMesh(mesh *document.Mesh) ([]model.ImportedMesh, error)

	// ExtractAllMeshes extracts all meshes from the document.
	// Returns a flattened slice with one ImportedMesh per primitive across all meshes,
	// plus the positions in that slice owned by each document mesh.
	//
	// Returns:
	//   - []model.ImportedMesh: all meshes (flattened, one per primitive)
	//   - map[int][]int: document mesh index to positions in the flattened slice
	//   - error: error if extraction fails
	ExtractAllMeshes() ([]model.ImportedMesh, map[int][]int, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a resolved document.
//
// Parameters:
//   - doc: the resolved document
//   - logger: the logger for skipped primitives
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(doc *document.Document, logger *zap.Logger) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{doc: doc, logger: logger}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(mesh *document.Mesh) ([]model.ImportedMesh, error) {
	var result []model.ImportedMesh

	for primIdx, prim := range mesh.Primitives {
		switch prim.Mode {
		case document.PrimitiveTriangles, document.PrimitiveTriangleStrip, document.PrimitiveTriangleFan:
		default:
			e.logger.Debug("skipping non-triangle primitive",
				zap.Int("mesh", mesh.Index),
				zap.Int("primitive", primIdx),
				zap.Int("mode", int(prim.Mode)),
			)
			continue
		}

		imported, err := e.extractPrimitive(prim, mesh, primIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", mesh.Index, primIdx, err)
		}
		result = append(result, *imported)
	}

	return result, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.ImportedMesh, map[int][]int, error) {
	var allMeshes []model.ImportedMesh
	owned := make(map[int][]int, len(e.doc.Meshes))

	for _, mesh := range e.doc.Meshes {
		meshes, err := e.ExtractMesh(mesh)
		if err != nil {
			return nil, nil, err
		}
		for _, m := range meshes {
			owned[mesh.Index] = append(owned[mesh.Index], len(allMeshes))
			allMeshes = append(allMeshes, m)
		}
	}

	return allMeshes, owned, nil
}

// extractPrimitive extracts a single primitive as an ImportedMesh.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *document.Primitive, mesh *document.Mesh, primIndex int) (*model.ImportedMesh, error) {
	posAccessor := prim.Attribute("POSITION")
	if posAccessor == nil {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}

	positions, err := posAccessor.ReadVec3()
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	vertexCount := len(positions)
	vertices := make([]model.GPUSkinnedVertex, vertexCount)
	for i, pos := range positions {
		vertices[i].Position = pos
		vertices[i].Color = [4]float32{1, 1, 1, 1}
	}

	hasNormals := false
	if acc := prim.Attribute("NORMAL"); acc != nil {
		normals, err := acc.ReadVec3()
		if err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
		for i := range min(len(normals), vertexCount) {
			vertices[i].Normal = normals[i]
		}
		hasNormals = true
	}

	if acc := prim.Attribute("TEXCOORD_0"); acc != nil {
		texCoords, err := acc.ReadVec2()
		if err != nil {
			return nil, fmt.Errorf("failed to read texcoords: %w", err)
		}
		for i := range min(len(texCoords), vertexCount) {
			vertices[i].TexCoord = texCoords[i]
		}
	}

	if acc := prim.Attribute("COLOR_0"); acc != nil {
		colors, err := readColors(acc)
		if err != nil {
			return nil, fmt.Errorf("failed to read colors: %w", err)
		}
		for i := range min(len(colors), vertexCount) {
			vertices[i].Color = colors[i]
		}
	}

	hasTangents := false
	if acc := prim.Attribute("TANGENT"); acc != nil {
		tangents, err := acc.ReadVec4()
		if err != nil {
			return nil, fmt.Errorf("failed to read tangents: %w", err)
		}
		for i := range min(len(tangents), vertexCount) {
			vertices[i].Tangent = tangents[i]
		}
		hasTangents = true
	}

	joints, weights := prim.Attribute("JOINTS_0"), prim.Attribute("WEIGHTS_0")
	if joints != nil {
		bones, err := joints.ReadUvec4()
		if err != nil {
			return nil, fmt.Errorf("failed to read joints: %w", err)
		}
		for i := range min(len(bones), vertexCount) {
			vertices[i].BoneIndices = bones[i]
		}
	}
	if weights != nil {
		w, err := weights.ReadVec4()
		if err != nil {
			return nil, fmt.Errorf("failed to read weights: %w", err)
		}
		for i := range min(len(w), vertexCount) {
			vertices[i].BoneWeights = w[i]
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = prim.Indices.Uint32s()
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for k, idx := range indices {
			if int(idx) >= vertexCount {
				return nil, fmt.Errorf("index %d at position %d exceeds vertex count %d", idx, k, vertexCount)
			}
		}
	} else {
		indices = make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	indices = triangulate(prim.Mode, indices)

	// Normals first: tangents are orthonormalized against them.
	if !hasNormals && len(indices) >= 3 {
		generateNormals(vertices, indices)
	}
	if !hasTangents && len(indices) >= 3 {
		generateTangents(vertices, indices)
	}

	bmin, bmax := model.ComputeBounds(vertices)

	materialIndex := -1
	if prim.Material != nil {
		materialIndex = prim.Material.Index
	}

	name := common.Coalesce(mesh.Name, fmt.Sprintf("mesh_%d", mesh.Index))
	if primIndex > 0 {
		name = fmt.Sprintf("%s_prim%d", name, primIndex)
	}

	return &model.ImportedMesh{
		Name:           name,
		MeshIndex:      mesh.Index,
		PrimitiveIndex: primIndex,
		Vertices:       vertices,
		Indices:        indices,
		MaterialIndex:  materialIndex,
		Skinned:        joints != nil && weights != nil,
		BoundingMin:    bmin,
		BoundingMax:    bmax,
	}, nil
}

// readColors reads COLOR_0 as RGBA. VEC3 colors get an opaque alpha;
// normalized integer colors are scaled by the accessor layer.
func readColors(acc *document.Accessor) ([][4]float32, error) {
	switch acc.Type {
	case document.AccessorVec4:
		return acc.ReadVec4()
	case document.AccessorVec3:
		rgb, err := acc.ReadVec3()
		if err != nil {
			return nil, err
		}
		result := make([][4]float32, len(rgb))
		for i, v := range rgb {
			result[i] = [4]float32{v[0], v[1], v[2], 1.0}
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported color format: type=%s, componentType=%s", acc.Type, acc.ComponentType)
	}
}

// triangulate converts strip and fan index sequences into a triangle list.
// Lists are returned unchanged.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#topology-types
func triangulate(mode document.PrimitiveMode, indices []uint32) []uint32 {
	if len(indices) < 3 {
		return nil
	}
	switch mode {
	case document.PrimitiveTriangleStrip:
		out := make([]uint32, 0, (len(indices)-2)*3)
		for i := 0; i+2 < len(indices); i++ {
			// Odd triangles swap their last two vertices to keep the winding.
			if i%2 == 0 {
				out = append(out, indices[i], indices[i+1], indices[i+2])
			} else {
				out = append(out, indices[i], indices[i+2], indices[i+1])
			}
		}
		return out
	case document.PrimitiveTriangleFan:
		out := make([]uint32, 0, (len(indices)-2)*3)
		for i := 1; i+1 < len(indices); i++ {
			out = append(out, indices[i], indices[i+1], indices[0])
		}
		return out
	default:
		return indices[:len(indices)-len(indices)%3]
	}
}

type vec3 [3]float32

func (a vec3) sub(b vec3) vec3 { return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a vec3) add(b vec3) vec3 { return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a vec3) scale(s float32) vec3 {
	return vec3{a[0] * s, a[1] * s, a[2] * s}
}
func (a vec3) dot(b vec3) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func (a vec3) cross(b vec3) vec3 {
	return vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
func (a vec3) length() float32 { return float32(math.Sqrt(float64(a.dot(a)))) }

// generateNormals computes smooth vertex normals when the primitive has no
// NORMAL attribute. Face normals (area-weighted cross products) are summed
// onto each vertex of the triangle and normalized. Vertices touched by no
// triangle get +Y.
//
// Parameters:
//   - vertices: the vertex slice to write normal data into
//   - indices: the triangle list
func generateNormals(vertices []model.GPUSkinnedVertex, indices []uint32) {
	accum := make([]vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vec3(vertices[i0].Position)
		face := vec3(vertices[i1].Position).sub(p0).cross(vec3(vertices[i2].Position).sub(p0))
		for _, idx := range [3]uint32{i0, i1, i2} {
			accum[idx] = accum[idx].add(face)
		}
	}

	for i, n := range accum {
		length := n.length()
		if length < 1e-6 {
			vertices[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		vertices[i].Normal = n.scale(1 / length)
	}
}

// generateTangents computes per-vertex tangents from UV gradients. Per-triangle
// tangents and bitangents are accumulated per vertex, then the tangent is
// Gram-Schmidt orthonormalized against the normal; W holds the handedness (±1).
//
// Parameters:
//   - vertices: the vertex slice to write tangent data into
//   - indices: the triangle list
func generateTangents(vertices []model.GPUSkinnedVertex, indices []uint32) {
	tan := make([]vec3, len(vertices))
	btan := make([]vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vec3(vertices[i0].Position)
		edge1 := vec3(vertices[i1].Position).sub(p0)
		edge2 := vec3(vertices[i2].Position).sub(p0)

		uv0, uv1, uv2 := vertices[i0].TexCoord, vertices[i1].TexCoord, vertices[i2].TexCoord
		du1, dv1 := uv1[0]-uv0[0], uv1[1]-uv0[1]
		du2, dv2 := uv2[0]-uv0[0], uv2[1]-uv0[1]

		det := du1*dv2 - dv1*du2
		if det == 0 {
			continue
		}
		r := 1 / det
		t := edge1.scale(dv2 * r).sub(edge2.scale(dv1 * r))
		b := edge2.scale(du1 * r).sub(edge1.scale(du2 * r))

		for _, idx := range [3]uint32{i0, i1, i2} {
			tan[idx] = tan[idx].add(t)
			btan[idx] = btan[idx].add(b)
		}
	}

	for i := range vertices {
		n := vec3(vertices[i].Normal)
		ortho := tan[i].sub(n.scale(n.dot(tan[i])))
		length := ortho.length()
		if length < 1e-6 {
			vertices[i].Tangent = [4]float32{1, 0, 0, 1}
			continue
		}
		ortho = ortho.scale(1 / length)

		w := float32(1)
		if n.cross(ortho).dot(btan[i]) < 0 {
			w = -1
		}
		vertices[i].Tangent = [4]float32{ortho[0], ortho[1], ortho[2], w}
	}
}
