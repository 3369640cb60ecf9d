package document

import "go.uber.org/zap"

// Default byte stride limits for buffer views.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#_bufferview_bytestride
const (
	DefaultMinByteStride   = 4
	DefaultMaxByteStride   = 252
	DefaultByteStrideAlign = 4
)

// DefaultMaxImplicitBytes bounds the decoded size of accessors whose elements
// are not all backed by buffer view bytes (no bufferView, or sparse).
const DefaultMaxImplicitBytes = 1 << 28

// parseConfig holds the settings applied by ParseOption values.
type parseConfig struct {
	logger      *zap.Logger
	supported   map[string]struct{}
	minStride   int
	maxStride   int
	strideAlign int
	maxImplicit int
}

// ParseOption is a functional option for configuring Parse.
type ParseOption func(*parseConfig)

func newParseConfig(opts []ParseOption) *parseConfig {
	cfg := &parseConfig{
		logger:      zap.NewNop(),
		supported:   map[string]struct{}{},
		minStride:   DefaultMinByteStride,
		maxStride:   DefaultMaxByteStride,
		strideAlign: DefaultByteStrideAlign,
		maxImplicit: DefaultMaxImplicitBytes,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger is an option builder that sets the logger used while parsing and
// for later lazy fetches.
//
// Parameters:
//   - logger: the logger, nil keeps the no-op default
//
// Returns:
//   - ParseOption: a function that applies the logger option
func WithLogger(logger *zap.Logger) ParseOption {
	return func(c *parseConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithByteStrideLimits is an option builder that overrides the accepted range
// and alignment of bufferView.byteStride.
//
// Parameters:
//   - minStride: smallest accepted stride
//   - maxStride: largest accepted stride
//   - align: strides must be a multiple of this value, values < 1 disable the check
//
// Returns:
//   - ParseOption: a function that applies the stride limits
func WithByteStrideLimits(minStride, maxStride, align int) ParseOption {
	return func(c *parseConfig) {
		c.minStride = minStride
		c.maxStride = maxStride
		c.strideAlign = align
	}
}

// WithMaxImplicitBytes is an option builder that overrides the largest decoded
// size, count × element size, accepted for accessors without a bufferView or
// with sparse storage. Their elements are materialized in memory on read.
//
// Parameters:
//   - n: the limit in bytes, values < 1 keep the default
//
// Returns:
//   - ParseOption: a function that applies the limit
func WithMaxImplicitBytes(n int) ParseOption {
	return func(c *parseConfig) {
		if n > 0 {
			c.maxImplicit = n
		}
	}
}

// WithSupportedExtensions is an option builder that declares extensions the
// caller handles itself. Documents listing other names in extensionsRequired
// are rejected.
//
// Parameters:
//   - names: extension names, e.g. "KHR_texture_transform"
//
// Returns:
//   - ParseOption: a function that adds the names to the supported set
func WithSupportedExtensions(names ...string) ParseOption {
	return func(c *parseConfig) {
		for _, n := range names {
			c.supported[n] = struct{}{}
		}
	}
}
