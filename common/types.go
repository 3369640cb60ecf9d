// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types, plus the matrix math shared by the document and loader packages.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// It is produced by ImportedTexture.Decode and handed to whatever uploads textures to the GPU.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Imported textures carry one converted from their glTF sampler.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers, used in shadow mapping and similar techniques.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering, which can improve texture quality at oblique viewing angles.
	MaxAnisotropy uint16
}

// ImportedMaterial represents material properties from an imported model file.
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// Index is the material's position in the source document, -1 for the default material.
	Index int

	// BaseColor is the albedo/diffuse color (RGBA).
	BaseColor [4]float32

	// Metallic factor (0.0 = dielectric, 1.0 = metal).
	Metallic float32

	// Roughness factor (0.0 = smooth, 1.0 = rough).
	Roughness float32

	// Emissive is the emitted light color (RGB).
	Emissive [3]float32

	// AlphaMode is OPAQUE, MASK or BLEND.
	AlphaMode string

	// AlphaCutoff is the MASK threshold.
	AlphaCutoff float32

	// DoubleSided disables back-face culling when true.
	DoubleSided bool

	// DiffuseTexture holds the base color texture (if present).
	DiffuseTexture *ImportedTexture

	// NormalTexture holds the normal map (if present).
	NormalTexture *ImportedTexture

	// MetallicRoughnessTexture holds the metallic/roughness texture (if present).
	MetallicRoughnessTexture *ImportedTexture

	// OcclusionTexture holds the ambient occlusion texture (if present).
	OcclusionTexture *ImportedTexture

	// EmissiveTexture holds the emissive texture (if present).
	EmissiveTexture *ImportedTexture
}

// ImportedTexture represents texture data extracted from a model file.
// Data always holds the encoded image bytes, whether they came from a buffer
// view, a data URI or an external file.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "diffuse", "normal").
	Name string

	// URI is the image's source URI, empty for buffer view images.
	URI string

	// TexCoord is the TEXCOORD_n set the texture is sampled with.
	TexCoord int

	// Data contains the encoded image bytes (PNG/JPEG).
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/jpeg").
	MimeType string

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int

	// SamplerData holds GPU sampler parameters extracted from the model file.
	SamplerData *SamplerStagingData
}

// Decode decodes the texture to raw RGBA pixel data.
// Supports PNG and JPEG formats.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - *TextureStagingData: raw RGBA pixel data (4 bytes per pixel, row-major order) and its size
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() (*TextureStagingData, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}
	if len(t.Data) == 0 {
		return nil, fmt.Errorf("texture %q has no data", t.Name)
	}

	img, _, err := image.Decode(bytes.NewReader(t.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %q: %w", t.Name, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	t.Width = width
	t.Height = height

	return &TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(width),
		Height: uint32(height),
	}, nil
}
