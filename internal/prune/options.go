package prune

import (
	"log/slog"

	"github.com/jacoelho/tq/internal/path"
)

// DefaultRecursionLimit bounds the descent when no limit is configured.
const DefaultRecursionLimit = 4096

// Option configures a Pruner.
type Option func(*Pruner)

// WithSyntax sets the path syntax used to name results and record keys.
func WithSyntax(s path.Syntax) Option {
	return func(p *Pruner) {
		p.syntax = s.Resolved()
	}
}

// WithLogger receives debug traces of the descent.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pruner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecursionLimit bounds the depth of the descent before failing with
// ErrDepthExceeded.
func WithRecursionLimit(n int) Option {
	return func(p *Pruner) {
		if n > 0 {
			p.limit = n
		}
	}
}
