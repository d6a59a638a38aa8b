package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Tracer writes a readable log of code generation for debugging. A nil
// *Tracer is valid and traces nothing.
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

// New creates a tracer. Filters are filepath.Match patterns on method
// names; none means trace every method.
func New(enabled bool, filters []string, writer io.Writer) *Tracer {
	if writer == nil {
		writer = os.Stderr
	}
	return &Tracer{
		enabled: enabled,
		filters: filters,
		writer:  writer,
	}
}

// IsEnabled returns whether tracing is enabled
func (t *Tracer) IsEnabled() bool {
	return t != nil && t.enabled
}

// matchesFilter checks if a method name matches any of the filter patterns
func (t *Tracer) matchesFilter(method string) bool {
	if len(t.filters) == 0 {
		return true // No filters = trace everything
	}

	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, method); matched {
			return true
		}
	}
	return false
}

func (t *Tracer) printf(method, format string, args ...interface{}) {
	if !t.IsEnabled() || !t.matchesFilter(method) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.writer, "[TRACE] "+format+"\n", args...)
}

// MethodBegin logs entry into a new emission context
func (t *Tracer) MethodBegin(method string, nesting int) {
	t.printf(method, "BEGIN %s nesting=%d", method, nesting)
}

// MethodEnd logs a finished method with its computed limits
func (t *Tracer) MethodEnd(method string, maxStack, maxLocals, codeLen int) {
	t.printf(method, "END %s stack=%d locals=%d code=%d", method, maxStack, maxLocals, codeLen)
}

// Node logs one syntax node about to be compiled
func (t *Tracer) Node(method, pos, source string) {
	// Truncate long source for readability
	if r := []rune(source); len(r) > 60 {
		source = string(r[:57]) + "..."
	}
	t.printf(method, "  NODE %s %s %s", method, pos, source)
}

// Field logs a newly allocated static field
func (t *Tracer) Field(method, name string) {
	t.printf(method, "  FIELD %s (from %s)", name, method)
}
