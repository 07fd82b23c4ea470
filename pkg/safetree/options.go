package safetree

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/safetree/pkg/errors"
)

// Option configures a Build call.
type Option func(*options)

type options struct {
	needle     string
	maxNodes   int
	stackLimit int
	logger     *log.Logger
	err        error
}

func defaultOptions() options {
	return options{
		stackLimit: DefaultStackLimit,
		logger:     log.New(io.Discard),
	}
}

// WithNeedle makes Build record the path of every scalar whose string form
// contains needle. An empty needle disables the search.
func WithNeedle(needle string) Option {
	return func(o *options) {
		o.needle = needle
	}
}

// WithMaxNodes caps the number of nodes written into the safe tree. Once the
// budget is spent, composites render as the depth-limit marker. Zero means
// no cap.
func WithMaxNodes(n int) Option {
	return func(o *options) {
		if n < 0 {
			o.err = errors.New(errors.ErrCodeInvalidInput, "max nodes must be >= 0, got %d", n)
			return
		}
		o.maxNodes = n
	}
}

// WithStackLimit sets how many characters of an error's stack text are kept.
func WithStackLimit(n int) Option {
	return func(o *options) {
		if n <= 0 {
			o.err = errors.New(errors.ErrCodeInvalidInput, "stack limit must be > 0, got %d", n)
			return
		}
		o.stackLimit = n
	}
}

// WithLogger sets the logger that receives diagnostics (unclassifiable
// values, failed property reads). The default discards them.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
