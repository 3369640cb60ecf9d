package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfSceneExtractorImpl is the implementation of the gltfSceneExtractor interface.
type gltfSceneExtractorImpl struct {
	doc *document.Document
}

// gltfSceneExtractor flattens the default scene's node hierarchy into
// ImportedNodes carrying scene-space transforms.
type gltfSceneExtractor interface {
	// ExtractNodes walks the default scene depth-first. Documents without scenes
	// use every parentless node as a root.
	//
	// Parameters:
	//   - meshSlots: document mesh index to positions in ImportedModel.Meshes
	//
	// Returns:
	//   - []model.ImportedNode: the nodes, parents before children
	ExtractNodes(meshSlots map[int][]int) []model.ImportedNode
}

var _ gltfSceneExtractor = &gltfSceneExtractorImpl{}

// newGLTFSceneExtractor creates a new scene extractor for a resolved document.
//
// Parameters:
//   - doc: the resolved document
//
// Returns:
//   - gltfSceneExtractor: the scene extractor
func newGLTFSceneExtractor(doc *document.Document) gltfSceneExtractor {
	return &gltfSceneExtractorImpl{doc: doc}
}

func (e *gltfSceneExtractorImpl) ExtractNodes(meshSlots map[int][]int) []model.ImportedNode {
	roots := e.doc.RootNodes()
	if scene := e.doc.DefaultScene(); scene != nil {
		roots = scene.Nodes
	}

	var identity [16]float32
	common.Identity(identity[:])

	var nodes []model.ImportedNode
	visited := make(map[*document.Node]bool)

	var walk func(n *document.Node, parent int, parentWorld [16]float32)
	walk = func(n *document.Node, parent int, parentWorld [16]float32) {
		if visited[n] {
			return
		}
		visited[n] = true

		local := n.LocalTransform()
		var world [16]float32
		common.Mul4(world[:], parentWorld[:], local[:])

		t, r, s := n.TRS()
		imported := model.ImportedNode{
			Name:        common.Coalesce(n.Name, fmt.Sprintf("node_%d", n.Index)),
			NodeIndex:   n.Index,
			ParentIndex: parent,
			Local:       model.Transform{Translation: t, Rotation: r, Scale: s},
			World:       world,
		}
		if n.Mesh != nil {
			imported.MeshIndices = meshSlots[n.Mesh.Index]
		}

		self := len(nodes)
		nodes = append(nodes, imported)
		for _, child := range n.Children {
			walk(child, self, world)
		}
	}

	for _, root := range roots {
		walk(root, -1, identity)
	}

	return nodes
}
