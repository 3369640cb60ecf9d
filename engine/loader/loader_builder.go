package loader

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/resource"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithProvider is an option builder that sets the byte provider used for model
// files and the resources they reference.
//
// Parameters:
//   - p: the provider
//
// Returns:
//   - LoaderBuilderOption: a function that applies the provider option to a loader
func WithProvider(p resource.Provider) LoaderBuilderOption {
	return func(l *loader) {
		l.provider = p
	}
}

// WithLogger is an option builder that sets the logger used by the Loader and
// the documents it parses.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithPrefetchWorkers is an option builder that makes the Loader fetch every
// buffer eagerly on a pool of n workers after parsing. n <= 0 keeps fetching lazy.
//
// Parameters:
//   - n: the maximum number of concurrent fetches
//
// Returns:
//   - LoaderBuilderOption: a function that applies the prefetch option to a loader
func WithPrefetchWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.prefetchWorkers = max(n, 0)
	}
}

// WithProfiling is an option builder that makes the Loader log the duration
// and heap allocation of each phase of every load and import.
//
// Parameters:
//   - enabled: true to enable profiling
//
// Returns:
//   - LoaderBuilderOption: a function that applies the profiling option to a loader
func WithProfiling(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.profiling = enabled
	}
}

// WithParseOptions is an option builder that forwards options to document.Parse.
//
// Parameters:
//   - opts: the parse options
//
// Returns:
//   - LoaderBuilderOption: a function that applies the parse options to a loader
func WithParseOptions(opts ...document.ParseOption) LoaderBuilderOption {
	return func(l *loader) {
		l.parseOptions = append(l.parseOptions, opts...)
	}
}

// WithDocument is an option builder that pre-populates the document cache.
//
// Parameters:
//   - key: the cache key for the document
//   - doc: the document to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the document option to a loader
func WithDocument(key string, doc *document.Document) LoaderBuilderOption {
	return func(l *loader) {
		l.documentCache[key] = doc
	}
}
