package document

import (
	"github.com/a3tai/pdfgraph/internal/pdf/filters"
	"github.com/a3tai/pdfgraph/internal/pdf/parser"
	"github.com/a3tai/pdfgraph/internal/pdf/xref"
)

type options struct {
	tracer           Tracer
	xrefWindow       int
	filters          filters.Options
	strictGeneration bool
	maxDepth         int
}

func defaultOptions() options {
	return options{
		tracer:     nopTracer{},
		xrefWindow: xref.DefaultWindow,
		maxDepth:   parser.DefaultMaxDepth,
	}
}

// Option configures Open
type Option func(*options)

// WithTracer installs an observer for assembly steps and object reads
func WithTracer(t Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithXRefWindow sets how many trailing bytes are searched for startxref
func WithXRefWindow(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.xrefWindow = n
		}
	}
}

// WithFilterOptions controls stream decoding
func WithFilterOptions(f filters.Options) Option {
	return func(o *options) {
		o.filters = f
	}
}

// WithStrictGenerations makes resolution fail when the object header's id or
// generation differs from the reference being resolved.
func WithStrictGenerations() Option {
	return func(o *options) {
		o.strictGeneration = true
	}
}

// WithMaxDepth bounds array and dictionary nesting
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}
