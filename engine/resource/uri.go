package resource

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	gerrors "github.com/Carmen-Shannon/oxy-gltf/common/errors"
)

var (
	errNotDataURI     = errors.New("not a data URI")
	errMalformedData  = errors.New("malformed data URI: no comma found")
	errUnresolvableIn = errors.New("cannot resolve reference")
)

// uriResolverImpl is the implementation of the URIResolver interface.
type uriResolverImpl struct {
	provider Provider
	base     string
	baseURL  *url.URL // set only when base carries a scheme
}

// URIResolver dispatches the three URI classes the format defines: absent URIs
// go to the provider untouched (a container decorator may serve them), data
// URIs are decoded in place, and everything else is resolved against the base
// URI before being handed to the provider.
type URIResolver interface {
	// Fetch returns the bytes for a URI as written in the document.
	//
	// Parameters:
	//   - uri: the document URI, or "" when the field is absent
	//
	// Returns:
	//   - []byte: the resource bytes
	//   - error: an IO error naming the URI if the fetch fails
	Fetch(uri string) ([]byte, error)

	// Resolve turns a document-relative reference into the location handed to
	// the provider. Data URIs and absolute URIs are returned unchanged.
	//
	// Parameters:
	//   - ref: the reference as written in the document
	//
	// Returns:
	//   - string: the resolved location
	//   - error: error if ref cannot be parsed
	Resolve(ref string) (string, error)

	// Base returns the base URI references are resolved against.
	//
	// Returns:
	//   - string: the base URI
	Base() string

	// Provider returns the underlying byte provider.
	//
	// Returns:
	//   - Provider: the provider
	Provider() Provider
}

var _ URIResolver = &uriResolverImpl{}

// NewURIResolver creates a URIResolver over provider. baseURI is usually the
// path or URL of the document itself; its last segment is dropped when
// resolving relative references.
//
// Parameters:
//   - provider: the byte provider for resolved path URIs
//   - baseURI: the document location
//
// Returns:
//   - URIResolver: the resolver
func NewURIResolver(provider Provider, baseURI string) URIResolver {
	r := &uriResolverImpl{
		provider: provider,
		base:     baseURI,
	}
	if hasScheme(baseURI) {
		if u, err := url.Parse(baseURI); err == nil {
			r.baseURL = u
		}
	}
	return r
}

func (r *uriResolverImpl) Base() string {
	return r.base
}

func (r *uriResolverImpl) Provider() Provider {
	return r.provider
}

func (r *uriResolverImpl) Fetch(uri string) ([]byte, error) {
	switch {
	case uri == "":
		return fetch(r.provider, "")
	case IsDataURI(uri):
		data, _, err := DecodeDataURI(uri)
		if err != nil {
			return nil, gerrors.IO(truncateURI(uri), err)
		}
		return data, nil
	}

	resolved, err := r.Resolve(uri)
	if err != nil {
		return nil, gerrors.IO(uri, err)
	}
	return fetch(r.provider, resolved)
}

func (r *uriResolverImpl) Resolve(ref string) (string, error) {
	if ref == "" || IsDataURI(ref) || hasScheme(ref) {
		return ref, nil
	}

	if r.baseURL != nil {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("%w %q: %w", errUnresolvableIn, ref, err)
		}
		return r.baseURL.ResolveReference(u).String(), nil
	}

	decoded, err := url.PathUnescape(ref)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", errUnresolvableIn, ref, err)
	}
	if path.IsAbs(decoded) || filepath.IsAbs(decoded) {
		return decoded, nil
	}
	if r.base == "" {
		return filepath.Clean(decoded), nil
	}
	return filepath.Join(filepath.Dir(r.base), decoded), nil
}

// IsDataURI reports whether uri uses the data: scheme.
func IsDataURI(uri string) bool {
	return len(uri) >= 5 && strings.EqualFold(uri[:5], "data:")
}

// DecodeDataURI decodes a data URI. The payload is everything after the last
// comma; it is base64 decoded when the header ends in ";base64" and percent
// decoded otherwise.
// Format: data:[<mediatype>][;base64],<data>
//
// Parameters:
//   - uri: the data URI
//
// Returns:
//   - []byte: the decoded payload
//   - string: the media type from the header, possibly empty
//   - error: error if uri is not a well-formed data URI
func DecodeDataURI(uri string) ([]byte, string, error) {
	if !IsDataURI(uri) {
		return nil, "", errNotDataURI
	}

	commaIdx := strings.LastIndex(uri, ",")
	if commaIdx < 0 {
		return nil, "", errMalformedData
	}

	header := uri[5:commaIdx]
	payload := uri[commaIdx+1:]

	isBase64 := false
	if h, ok := strings.CutSuffix(header, ";base64"); ok {
		header = h
		isBase64 = true
	}
	mimeType, _, _ := strings.Cut(header, ";")

	if !isBase64 {
		data, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", fmt.Errorf("failed to percent-decode data URI: %w", err)
		}
		return []byte(data), mimeType, nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some exporters drop the trailing padding.
		raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if rawErr != nil {
			return nil, "", fmt.Errorf("failed to decode base64: %w", err)
		}
		data = raw
	}
	return data, mimeType, nil
}

// hasScheme reports whether s starts with an RFC 3986 scheme. Single letter
// schemes are rejected so Windows drive letters stay file paths.
func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9', c == '+', c == '-', c == '.':
			if i == 0 {
				return false
			}
		case c == ':':
			return i > 1
		default:
			return false
		}
	}
	return false
}

func truncateURI(uri string) string {
	if len(uri) > 48 {
		return uri[:48] + "..."
	}
	return uri
}
