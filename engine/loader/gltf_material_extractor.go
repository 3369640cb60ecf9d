package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	doc *document.Document
}

// gltfMaterialExtractor defines the interface for extracting material and texture data
// from a resolved glTF document into engine-ready ImportedMaterial structs.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material, including the encoded bytes of every referenced image.
	//
	// Parameters:
	//   - mat: the material to extract
	//
	// Returns:
	//   - *common.ImportedMaterial: the extracted material with texture data loaded
	//   - error: error if an image cannot be fetched
	ExtractMaterial(mat *document.Material) (*common.ImportedMaterial, error)

	// ExtractAllMaterials extracts all materials from the document in index order.
	//
	// Returns:
	//   - []common.ImportedMaterial: all extracted materials
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]common.ImportedMaterial, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a resolved document.
//
// Parameters:
//   - doc: the resolved document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(doc *document.Document) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{doc: doc}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(mat *document.Material) (*common.ImportedMaterial, error) {
	pbr := mat.PBRMetallicRoughness
	result := &common.ImportedMaterial{
		Name:        common.Coalesce(mat.Name, fmt.Sprintf("material_%d", mat.Index)),
		Index:       mat.Index,
		BaseColor:   pbr.BaseColorFactor,
		Metallic:    pbr.MetallicFactor,
		Roughness:   pbr.RoughnessFactor,
		Emissive:    mat.EmissiveFactor,
		AlphaMode:   string(mat.AlphaMode),
		AlphaCutoff: mat.AlphaCutoff,
		DoubleSided: mat.DoubleSided,
	}

	var err error
	if result.DiffuseTexture, err = e.loadTexture(pbr.BaseColorTexture); err != nil {
		return nil, fmt.Errorf("material %q: base color texture: %w", result.Name, err)
	}
	if result.MetallicRoughnessTexture, err = e.loadTexture(pbr.MetallicRoughnessTexture); err != nil {
		return nil, fmt.Errorf("material %q: metallic-roughness texture: %w", result.Name, err)
	}
	if result.EmissiveTexture, err = e.loadTexture(mat.EmissiveTexture); err != nil {
		return nil, fmt.Errorf("material %q: emissive texture: %w", result.Name, err)
	}
	if mat.NormalTexture != nil {
		if result.NormalTexture, err = e.loadTexture(&mat.NormalTexture.TextureInfo); err != nil {
			return nil, fmt.Errorf("material %q: normal texture: %w", result.Name, err)
		}
	}
	if mat.OcclusionTexture != nil {
		if result.OcclusionTexture, err = e.loadTexture(&mat.OcclusionTexture.TextureInfo); err != nil {
			return nil, fmt.Errorf("material %q: occlusion texture: %w", result.Name, err)
		}
	}

	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]common.ImportedMaterial, error) {
	materials := make([]common.ImportedMaterial, len(e.doc.Materials))
	for i, m := range e.doc.Materials {
		mat, err := e.ExtractMaterial(m)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		materials[i] = *mat
	}

	return materials, nil
}

// loadTexture converts a texture reference into an ImportedTexture holding the
// encoded image bytes. Buffer view, data URI and external images are all read
// through the document's resolver. Returns nil for a nil reference or a
// texture whose image is only provided by an extension.
func (e *gltfMaterialExtractorImpl) loadTexture(info *document.TextureInfo) (*common.ImportedTexture, error) {
	if info == nil || info.Texture == nil || info.Texture.Source == nil {
		return nil, nil
	}

	tex := info.Texture
	img := tex.Source
	data, err := img.Bytes()
	if err != nil {
		return nil, fmt.Errorf("texture %d: %w", tex.Index, err)
	}

	return &common.ImportedTexture{
		Name:        common.Coalesce(tex.Name, img.Name),
		URI:         img.URI,
		TexCoord:    info.TexCoord,
		Data:        data,
		MimeType:    img.MimeType,
		SamplerData: tex.EffectiveSampler().StagingData(),
	}, nil
}
