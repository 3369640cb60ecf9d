// Package document implements the glTF 2.0 document model: a schema-driven
// decode of the JSON graph, a deferred resolver that turns integer indices into
// validated entity links, and the binary accessor layer that reads typed values
// out of buffers.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package document

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-gltf/engine/resource"
)

// Document is a fully resolved glTF document. After Parse returns, no entity
// changes except the fetch-once caches of buffers, images and sparse accessors,
// so a Document may be read from multiple goroutines.
type Document struct {
	Properties

	Asset Asset

	// Scene is the default scene declared by the document, or nil.
	Scene *Scene

	Accessors   []*Accessor
	Animations  []*Animation
	Buffers     []*Buffer
	BufferViews []*BufferView
	Cameras     []*Camera
	Images      []*Image
	Materials   []*Material
	Meshes      []*Mesh
	Nodes       []*Node
	Samplers    []*Sampler
	Scenes      []*Scene
	Skins       []*Skin
	Textures    []*Texture

	ExtensionsUsed     []string
	ExtensionsRequired []string

	resolver resource.URIResolver
	logger   *zap.Logger

	// pending holds resolution actions collected during decode, in
	// declaration order. It is empty once Parse returns.
	pending []resolveAction
}

// DefaultScene returns the scene to display: the declared default scene,
// else the first scene, else nil.
//
// Returns:
//   - *Scene: the default scene or nil
func (d *Document) DefaultScene() *Scene {
	if d.Scene != nil {
		return d.Scene
	}
	if len(d.Scenes) > 0 {
		return d.Scenes[0]
	}
	return nil
}

// BaseURI returns the URI relative resources are resolved against.
//
// Returns:
//   - string: the base URI passed to Parse
func (d *Document) BaseURI() string {
	return d.resolver.Base()
}

// Resolver returns the URI resolver the document fetches buffers and images through.
//
// Returns:
//   - resource.URIResolver: the resolver
func (d *Document) Resolver() resource.URIResolver {
	return d.resolver
}

// RootNodes returns the nodes without a parent, in declaration order.
//
// Returns:
//   - []*Node: the root nodes
func (d *Document) RootNodes() []*Node {
	var roots []*Node
	for _, n := range d.Nodes {
		if n.Parent == nil {
			roots = append(roots, n)
		}
	}
	return roots
}

// Parse decodes jsonData into a Document and resolves every cross-reference.
// Buffers and images are not fetched; their bytes are loaded lazily through
// provider, with relative URIs resolved against baseURI.
//
// Parameters:
//   - jsonData: the glTF JSON (a .gltf file or a container's JSON chunk)
//   - provider: the byte provider for buffers and images
//   - baseURI: location of the document, used to resolve relative URIs
//   - opts: optional parse settings
//
// Returns:
//   - *Document: the resolved document
//   - error: a parse, reference or out-of-range error; no partial document is returned
func Parse(jsonData []byte, provider resource.Provider, baseURI string, opts ...ParseOption) (*Document, error) {
	cfg := newParseConfig(opts)

	doc := &Document{
		resolver: resource.NewURIResolver(provider, baseURI),
		logger:   cfg.logger,
	}

	p := &parser{doc: doc, cfg: cfg}
	if err := p.decode(jsonData); err != nil {
		return nil, err
	}

	actions := len(doc.pending)
	if err := doc.resolve(); err != nil {
		return nil, err
	}

	cfg.logger.Debug("parsed glTF document",
		zap.String("base", baseURI),
		zap.String("generator", doc.Asset.Generator),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("accessors", len(doc.Accessors)),
		zap.Int("buffers", len(doc.Buffers)),
		zap.Int("resolved", actions),
	)
	return doc, nil
}
