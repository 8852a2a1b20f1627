package document

import (
	"fmt"
	"log"
)

// Tracer observes document assembly. Implementations must not affect
// parsing; a nil Tracer is replaced by a no-op.
type Tracer interface {
	// Step is called after each completed assembly state
	Step(state State, format string, args ...any)
	// Hit is called for each indirect object read from the buffer
	Hit(kind string, offset int)
}

// LogTracer writes trace lines to a *log.Logger
type LogTracer struct {
	logger *log.Logger
}

// NewLogTracer adapts logger into a Tracer
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

func (t *LogTracer) Step(state State, format string, args ...any) {
	t.logger.Printf("[%s] %s", state, fmt.Sprintf(format, args...))
}

func (t *LogTracer) Hit(kind string, offset int) {
	t.logger.Printf("  read %s at #%d", kind, offset)
}

type nopTracer struct{}

func (nopTracer) Step(State, string, ...any) {}
func (nopTracer) Hit(string, int)            {}
