package flatten

import (
	"log/slog"
)

// DefaultRecursionLimit bounds nesting when no limit is configured.
const DefaultRecursionLimit = 4096

type config struct {
	prefix         string
	hasPrefix      bool
	separator      string
	maxDepth       int
	leaves         bool
	leavesAt       map[string]struct{}
	strict         bool
	recursionLimit int
	logger         *slog.Logger
}

func defaultConfig() config {
	return config{
		separator:      ".",
		maxDepth:       -1,
		recursionLimit: DefaultRecursionLimit,
		logger:         slog.New(slog.DiscardHandler),
	}
}

// Option configures a Flattener.
type Option func(*config)

// WithPrefix names the tree being flattened; its keys are joined below prefix.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
		c.hasPrefix = true
	}
}

// WithSeparator sets the string joining record key segments.
func WithSeparator(sep string) Option {
	return func(c *config) {
		if sep != "" {
			c.separator = sep
		}
	}
}

// WithMaxDepth limits how many levels are expanded. Zero returns trees
// unchanged; negative means unlimited.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		c.maxDepth = n
	}
}

// WithFlattenLeaves expands every scalar sequence into one record per element.
func WithFlattenLeaves(enabled bool) Option {
	return func(c *config) {
		c.leaves = enabled
	}
}

// WithFlattenLeavesAt expands the scalar sequences found at the given record
// prefixes only.
func WithFlattenLeavesAt(prefixes ...string) Option {
	return func(c *config) {
		if c.leavesAt == nil {
			c.leavesAt = make(map[string]struct{}, len(prefixes))
		}
		for _, p := range prefixes {
			c.leavesAt[p] = struct{}{}
		}
	}
}

// WithRequireSerializable rejects opaque leaves that cannot be serialized
// instead of replacing them with their string representation.
func WithRequireSerializable(enabled bool) Option {
	return func(c *config) {
		c.strict = enabled
	}
}

// WithRecursionLimit bounds the nesting depth processed before failing with
// ErrDepthExceeded.
func WithRecursionLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.recursionLimit = n
		}
	}
}

// WithLogger receives debug traces of the expansion.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
