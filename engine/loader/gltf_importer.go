package loader

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	doc    *document.Document
	logger *zap.Logger
}

// gltfImporter defines the interface for turning a resolved document into an ImportedModel.
// It combines all extractors to produce the complete model.
type gltfImporter interface {
	// Import extracts meshes, materials, the scene, the skeleton and animations.
	//
	// Parameters:
	//   - name: fallback model name when the default scene is unnamed
	//
	// Returns:
	//   - *model.ImportedModel: the fully populated imported model
	//   - error: error if any buffer, image or accessor cannot be read
	Import(name string) (*model.ImportedModel, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new importer for a resolved document.
//
// Parameters:
//   - doc: the resolved document
//   - logger: the logger for skipped content
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(doc *document.Document, logger *zap.Logger) gltfImporter {
	return &gltfImporterImpl{doc: doc, logger: logger}
}

func (imp *gltfImporterImpl) Import(name string) (*model.ImportedModel, error) {
	meshExtractor := newGLTFMeshExtractor(imp.doc, imp.logger)
	skeletonExtractor := newGLTFSkeletonExtractor(imp.doc)
	animationExtractor := newGLTFAnimationExtractor(imp.doc)

	meshes, meshSlots, err := meshExtractor.ExtractAllMeshes()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	materials, err := newGLTFMaterialExtractor(imp.doc).ExtractAllMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	// The model carries one skeleton: the skin of the first skinned mesh,
	// else the first skin.
	var skeleton *model.Skeleton
	var animations []*model.AnimationClip
	if skin := imp.primarySkin(skeletonExtractor); skin != nil {
		var oldToNew map[int32]int32
		skeleton, oldToNew, err = skeletonExtractor.ExtractSkeleton(skin)
		if err != nil {
			return nil, fmt.Errorf("skin %d: skeleton extraction failed: %w", skin.Index, err)
		}

		boneMapping := make(map[*document.Node]int32, len(skin.Joints))
		for originalBoneIdx, joint := range skin.Joints {
			if newBoneIdx, ok := oldToNew[int32(originalBoneIdx)]; ok {
				boneMapping[joint] = newBoneIdx
			}
		}

		gltfRemapMeshBoneIndices(meshes, oldToNew)

		animations, err = animationExtractor.ExtractAnimationsForSkeleton(boneMapping)
		if err != nil {
			return nil, fmt.Errorf("animation extraction failed: %w", err)
		}
		if len(imp.doc.Skins) > 1 {
			imp.logger.Warn("document has multiple skins, importing one",
				zap.Int("skins", len(imp.doc.Skins)),
				zap.Int("skin", skin.Index),
			)
		}
	}

	return &model.ImportedModel{
		Name:       gltfExtractModelName(imp.doc, name),
		Meshes:     meshes,
		Nodes:      newGLTFSceneExtractor(imp.doc).ExtractNodes(meshSlots),
		Skeleton:   skeleton,
		Animations: animations,
		Materials:  materials,
	}, nil
}

// primarySkin picks the skin of the first mesh instanced by a skinned node,
// falling back to the first skin.
func (imp *gltfImporterImpl) primarySkin(skeletons gltfSkeletonExtractor) *document.Skin {
	for _, mesh := range imp.doc.Meshes {
		if skin := skeletons.FindSkinForMesh(mesh); skin != nil {
			return skin
		}
	}
	if len(imp.doc.Skins) > 0 {
		return imp.doc.Skins[0]
	}
	return nil
}

// --- Helper Functions ---

// gltfRemapMeshBoneIndices updates the BoneIndices of skinned vertices
// to reflect the topologically sorted bone order from the skeleton extractor.
func gltfRemapMeshBoneIndices(meshes []model.ImportedMesh, oldToNew map[int32]int32) {
	if len(oldToNew) == 0 {
		return
	}

	for i := range meshes {
		if !meshes[i].Skinned {
			continue
		}
		for j := range meshes[i].Vertices {
			v := &meshes[i].Vertices[j]
			for k := range v.BoneIndices {
				if newIdx, ok := oldToNew[int32(v.BoneIndices[k])]; ok {
					v.BoneIndices[k] = uint32(newIdx)
				}
			}
		}
	}
}

// gltfExtractModelName derives a model name from the default scene or the fallback.
func gltfExtractModelName(doc *document.Document, fallback string) string {
	var sceneName string
	if scene := doc.DefaultScene(); scene != nil {
		sceneName = scene.Name
	}
	return common.Coalesce(sceneName, fallback, "unnamed_model")
}
