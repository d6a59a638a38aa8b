package emit

import (
	"jyxal/classfile"

	"github.com/pkg/errors"
)

// Local slot layout shared by every generated method
const (
	ArgsSlot  = 0 // String[] args, entry method only
	StackSlot = 1 // produced-and-not-consumed counter
)

// ErrScopeImbalance is returned when a value is consumed in a scope that
// has produced none
var ErrScopeImbalance = errors.New("value consumed with none produced in scope")

// MethodContext is one emission target: a method body plus the local slot
// holding its stack-size counter
type MethodContext struct {
	*classfile.MethodWriter

	stackVar int
	depth    int
	entry    bool
}

// NewMethodContext wraps mw and emits the counter initialisation. Entry
// contexts are the ones whose slot 0 holds the program arguments.
func NewMethodContext(mw *classfile.MethodWriter, entry bool) *MethodContext {
	mc := &MethodContext{
		MethodWriter: mw,
		stackVar:     StackSlot,
		entry:        entry,
	}
	mc.Insn(classfile.OP_ICONST_0)
	mc.VarInsn(classfile.OP_ISTORE, mc.stackVar)
	return mc
}

// StackVar returns the local slot of the stack-size counter
func (mc *MethodContext) StackVar() int {
	return mc.stackVar
}

// Depth returns the number of values produced and not yet consumed so far
// in emission order
func (mc *MethodContext) Depth() int {
	return mc.depth
}

// IsEntry reports whether this is the program entry method
func (mc *MethodContext) IsEntry() bool {
	return mc.entry
}

// MarkProduced records that one value was pushed
func (mc *MethodContext) MarkProduced() {
	mc.IincInsn(mc.stackVar, 1)
	mc.depth++
}

// MarkConsumed records that one value was popped
func (mc *MethodContext) MarkConsumed() error {
	if mc.depth == 0 {
		return errors.Wrapf(ErrScopeImbalance, "in %s", mc.Name)
	}
	mc.IincInsn(mc.stackVar, -1)
	mc.depth--
	return nil
}

// MarkConsumedN records n pops
func (mc *MethodContext) MarkConsumedN(n int) error {
	for i := 0; i < n; i++ {
		if err := mc.MarkConsumed(); err != nil {
			return err
		}
	}
	return nil
}

// ContextStack is the LIFO of active emission targets. The top is the
// narrowest enclosing scope.
type ContextStack struct {
	items []*MethodContext
}

// Push makes mc the active context
func (s *ContextStack) Push(mc *MethodContext) {
	s.items = append(s.items, mc)
}

// Pop removes and returns the active context, or nil if empty
func (s *ContextStack) Pop() *MethodContext {
	if len(s.items) == 0 {
		return nil
	}
	mc := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return mc
}

// Peek returns the active context, or nil if empty
func (s *ContextStack) Peek() *MethodContext {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

// Len returns the nesting depth
func (s *ContextStack) Len() int {
	return len(s.items)
}
