// Package resource implements the byte-fetching boundary of the loader: the
// Provider capability supplied by the embedding application and the URI
// dispatch that the glTF format mandates on top of it.
package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
)

// ErrNoEmbeddedChunk is returned when an absent URI reaches a provider that has
// no container binary chunk to serve.
var ErrNoEmbeddedChunk = errors.New("resource has no URI and no embedded binary chunk")

// Provider fetches the bytes behind a URI. An empty uri means "absent": only a
// container decorator can satisfy it.
type Provider interface {
	// Fetch returns the bytes for uri.
	//
	// Parameters:
	//   - uri: the resolved URI or path, or "" for the embedded binary chunk
	//
	// Returns:
	//   - []byte: the resource bytes
	//   - error: a provider-defined I/O error when the resource is unreachable
	Fetch(uri string) ([]byte, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(uri string) ([]byte, error)

// Fetch calls f(uri).
func (f ProviderFunc) Fetch(uri string) ([]byte, error) {
	return f(uri)
}

// fileProvider reads resources from the operating system file system.
type fileProvider struct{}

// fsProvider reads resources from an io/fs tree.
type fsProvider struct {
	fsys fs.FS
}

var (
	_ Provider = fileProvider{}
	_ Provider = &fsProvider{}
)

// NewFileProvider creates a Provider backed by os.ReadFile. Resolved URIs are
// treated as file paths; "file://" URIs are accepted.
//
// Returns:
//   - Provider: the file system provider
func NewFileProvider() Provider {
	return fileProvider{}
}

// NewFSProvider creates a Provider that reads from fsys. Leading slashes and
// "./" prefixes are stripped because io/fs paths are always unrooted.
//
// Parameters:
//   - fsys: the file tree to read from
//
// Returns:
//   - Provider: the fs.FS backed provider
func NewFSProvider(fsys fs.FS) Provider {
	return &fsProvider{fsys: fsys}
}

func (fileProvider) Fetch(uri string) ([]byte, error) {
	if uri == "" {
		return nil, ErrNoEmbeddedChunk
	}
	p := uri
	if len(uri) >= 5 && strings.EqualFold(uri[:5], "file:") {
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid file URI: %w", err)
		}
		p = u.Path
	}
	data, err := os.ReadFile(filepath.FromSlash(p))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (p *fsProvider) Fetch(uri string) ([]byte, error) {
	if uri == "" {
		return nil, ErrNoEmbeddedChunk
	}
	name := path.Clean(strings.TrimPrefix(filepath.ToSlash(uri), "/"))
	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// fetch calls p and wraps any failure as an IO error naming uri.
func fetch(p Provider, uri string) ([]byte, error) {
	if p == nil {
		return nil, gerrors.IO(uri, errors.New("no resource provider configured"))
	}
	data, err := p.Fetch(uri)
	if err != nil {
		var ge *gerrors.Error
		if errors.As(err, &ge) {
			return nil, err
		}
		return nil, gerrors.IO(uri, err)
	}
	return data, nil
}
