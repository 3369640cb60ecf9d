package loader

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-gltf/engine/container"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/resource"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	logger       *zap.Logger
	parseOptions []document.ParseOption
}

// gltfLoaderBackend is a loaderBackend implementation for .gltf and .glb files.
// GLB data is recognized by its magic, so a container may carry any extension.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - logger: the logger for container diagnostics
//   - parseOptions: options forwarded to document.Parse
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(logger *zap.Logger, parseOptions []document.ParseOption) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		logger:       logger,
		parseOptions: parseOptions,
	}
}

func (b *gltfLoaderBackendImpl) Decode(data []byte, name, baseURI string, provider resource.Provider) (*document.Document, error) {
	if !container.IsContainer(data) && !strings.EqualFold(filepath.Ext(name), ".glb") {
		return document.Parse(data, provider, baseURI, b.parseOptions...)
	}

	c, err := container.Split(data)
	if err != nil {
		return nil, err
	}
	if c.SkippedChunks > 0 {
		b.logger.Warn("ignored unknown container chunks",
			zap.String("name", name),
			zap.Int("chunks", c.SkippedChunks),
		)
	}
	return document.Parse(c.JSON, c.Provider(provider), baseURI, b.parseOptions...)
}
