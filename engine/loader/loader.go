// Package loader loads glTF and GLB files into resolved documents, caches
// them, and imports them into the CPU-side model types.
package loader

import (
	"fmt"
	"io"
	"maps"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gltf/engine/resource"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	provider     resource.Provider
	logger       *zap.Logger
	parseOptions []document.ParseOption

	// prefetchWorkers is the pool size for eager buffer fetches; 0 disables prefetching.
	prefetchWorkers int
	// poolMu is held for reading by in-flight prefetches and for writing by Close.
	poolMu       sync.RWMutex
	prefetchPool worker.DynamicWorkerPool

	// profiling reports per-phase timings of every load and import.
	profiling bool

	documentCache map[string]*document.Document

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching glTF documents.
// It abstracts the file format (glTF JSON or GLB container) behind a backend and
// manages a cache of previously loaded documents.
type Loader interface {
	// Load reads a .gltf or .glb file through the loader's provider and caches the
	// resolved document. If the document is already cached (by path), the cached
	// version is returned. Container data is recognized by its magic.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *document.Document: the loaded and cached document
	//   - error: error if loading fails
	Load(path string) (*document.Document, error)

	// LoadReader reads a document from a stream and caches it by the given name.
	// Relative resource URIs are resolved against baseURI.
	//
	// Parameters:
	//   - name: the cache key for the loaded document
	//   - r: the reader providing glTF JSON or GLB data
	//   - baseURI: the location relative URIs resolve against
	//
	// Returns:
	//   - *document.Document: the loaded document
	//   - error: error if reading or loading fails
	LoadReader(name string, r io.Reader, baseURI string) (*document.Document, error)

	// Import loads the file at path (through the cache) and extracts its meshes,
	// materials, skeleton, animations and scene.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *model.ImportedModel: the imported model
	//   - error: error if loading or extraction fails
	Import(path string) (*model.ImportedModel, error)

	// ImportDocument extracts a model from an already resolved document.
	//
	// Parameters:
	//   - doc: the resolved document
	//   - name: fallback model name when the default scene has none
	//
	// Returns:
	//   - *model.ImportedModel: the imported model
	//   - error: error if extraction fails
	ImportDocument(doc *document.Document, name string) (*model.ImportedModel, error)

	// Get retrieves a cached document by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *document.Document: the cached document or nil
	Get(name string) *document.Document

	// Documents returns a copy of the document cache.
	//
	// Returns:
	//   - map[string]*document.Document: all cached documents keyed by name
	Documents() map[string]*document.Document

	// Close stops the prefetch worker pool after in-flight prefetches finish.
	// Later loads fetch buffers lazily. Cached documents stay usable.
	//
	// Returns:
	//   - error: always nil, present to satisfy io.Closer
	Close() error
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the options applied. Without options it
// reads files from the local file system, logs nothing and fetches buffers lazily.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:            sync.RWMutex{},
		provider:      resource.NewFileProvider(),
		logger:        zap.NewNop(),
		documentCache: make(map[string]*document.Document),
	}

	for _, option := range options {
		option(l)
	}

	parseOptions := append([]document.ParseOption{document.WithLogger(l.logger)}, l.parseOptions...)
	l.backend = newGLTFLoaderBackend(l.logger, parseOptions)
	if l.prefetchWorkers > 0 {
		l.prefetchPool = worker.NewDynamicWorkerPool(l.prefetchWorkers, 64, 1*time.Second)
	}
	return l
}

func (l *loader) Load(path string) (*document.Document, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	p := l.newProfiler(path)
	data, err := l.provider.Fetch(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	p.Mark("fetch")

	return l.decodeAndCache(path, data, path, p)
}

func (l *loader) LoadReader(name string, r io.Reader, baseURI string) (*document.Document, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	p := l.newProfiler(name)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	p.Mark("read")

	return l.decodeAndCache(name, data, baseURI, p)
}

func (l *loader) Import(path string) (*model.ImportedModel, error) {
	doc, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	return l.ImportDocument(doc, path)
}

func (l *loader) ImportDocument(doc *document.Document, name string) (*model.ImportedModel, error) {
	p := l.newProfiler("import " + name)
	imported, err := newGLTFImporter(doc, l.logger).Import(name)
	if err != nil {
		return nil, fmt.Errorf("failed to import %q: %w", name, err)
	}
	p.Mark("extract")
	p.Finish()
	return imported, nil
}

func (l *loader) Get(name string) *document.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.documentCache[name]
}

func (l *loader) Documents() map[string]*document.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.documentCache)
}

// newProfiler returns a profiler for one operation, or nil when profiling is off.
func (l *loader) newProfiler(name string) *profiler.Profiler {
	if !l.profiling {
		return nil
	}
	return profiler.NewProfiler(l.logger, name)
}

// decodeAndCache parses data, optionally prefetches its buffers, and stores the
// document under name. A concurrent load of the same name keeps the first result.
func (l *loader) decodeAndCache(name string, data []byte, baseURI string, p *profiler.Profiler) (*document.Document, error) {
	doc, err := l.backend.Decode(data, name, baseURI, l.provider)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	p.Mark("decode")

	prefetched, err := l.prefetch(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to prefetch buffers of %s: %w", name, err)
	}
	if prefetched {
		p.Mark("prefetch")
	}
	p.Finish()

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.documentCache[name]; ok {
		return existing, nil
	}
	l.documentCache[name] = doc

	l.logger.Debug("loaded document",
		zap.String("name", name),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("buffers", len(doc.Buffers)),
	)
	return doc, nil
}

// prefetch fetches every buffer of doc on the worker pool. A WaitGroup provides
// the barrier; every failure is reported, not just the first. It reports false
// when prefetching is disabled or the pool was closed.
func (l *loader) prefetch(doc *document.Document) (bool, error) {
	l.poolMu.RLock()
	defer l.poolMu.RUnlock()
	if l.prefetchPool == nil {
		return false, nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)

	for i, buf := range doc.Buffers {
		wg.Add(1)
		b := buf
		l.prefetchPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				_, err := b.Bytes()
				if err != nil {
					mu.Lock()
					errs = multierr.Append(errs, err)
					mu.Unlock()
				}
				return nil, err
			},
		})
	}
	wg.Wait()

	return true, errs
}

func (l *loader) Close() error {
	l.poolMu.Lock()
	defer l.poolMu.Unlock()
	if l.prefetchPool != nil {
		l.prefetchPool.Stop()
		l.prefetchPool = nil
	}
	return nil
}
