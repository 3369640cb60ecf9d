package loader

import (
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/resource"
)

// loaderBackend turns the raw bytes of a model file into a resolved document.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Decode parses data into a document. Resources referenced by the document
	// are fetched lazily through provider, relative to baseURI.
	//
	// Parameters:
	//   - data: the file contents
	//   - name: the file name, used for format detection when the content is ambiguous
	//   - baseURI: the location relative URIs resolve against
	//   - provider: the byte provider for external resources
	//
	// Returns:
	//   - *document.Document: the resolved document
	//   - error: error if the data cannot be decoded
	Decode(data []byte, name, baseURI string, provider resource.Provider) (*document.Document, error)
}
