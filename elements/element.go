package elements

import (
	"jyxal/classfile"
	"jyxal/emit"

	"github.com/pkg/errors"
)

// Element emits the code for one built-in operator into the active context.
// Implementations keep the context's produced/consumed bookkeeping in step
// with what they leave on the operand stack.
type Element interface {
	Compile(mc *emit.MethodContext) error
}

// Func adapts a plain function to Element
type Func func(mc *emit.MethodContext) error

func (f Func) Compile(mc *emit.MethodContext) error { return f(mc) }

// need fails unless n values are available in the scope
func need(mc *emit.MethodContext, n int) error {
	if mc.Depth() < n {
		return errors.Wrapf(emit.ErrScopeImbalance, "in %s: need %d values, have %d", mc.Name, n, mc.Depth())
	}
	return nil
}

// Call invokes a static runtime method taking Pops objects and returning
// one object (Pushes == 1) or nothing (Pushes == 0)
type Call struct {
	Owner  string
	Method string
	Pops   int
	Pushes int
}

// Descriptor returns the JVM method descriptor of the call
func (c *Call) Descriptor() string {
	args := make([]string, c.Pops)
	for i := range args {
		args[i] = classfile.ObjectDesc
	}
	ret := "V"
	if c.Pushes == 1 {
		ret = classfile.ObjectDesc
	}
	return classfile.MethodDescriptor(ret, args...)
}

func (c *Call) Compile(mc *emit.MethodContext) error {
	if err := need(mc, c.Pops); err != nil {
		return err
	}
	mc.MethodInsn(classfile.OP_INVOKESTATIC, c.Owner, c.Method, c.Descriptor())
	if err := mc.MarkConsumedN(c.Pops); err != nil {
		return err
	}
	for i := 0; i < c.Pushes; i++ {
		mc.MarkProduced()
	}
	return nil
}

// StackOp is a native stack shuffle
type StackOp int

const (
	Dup StackOp = iota
	Pop
	Swap
)

func (s StackOp) Compile(mc *emit.MethodContext) error {
	switch s {
	case Dup:
		if err := need(mc, 1); err != nil {
			return err
		}
		mc.Insn(classfile.OP_DUP)
		mc.MarkProduced()
	case Pop:
		if err := need(mc, 1); err != nil {
			return err
		}
		mc.Insn(classfile.OP_POP)
		return mc.MarkConsumed()
	case Swap:
		if err := need(mc, 2); err != nil {
			return err
		}
		mc.Insn(classfile.OP_SWAP)
	default:
		return errors.Errorf("unknown stack op %d", s)
	}
	return nil
}

// Print pops the top value and writes it with a trailing newline
type Print struct{}

func (Print) Compile(mc *emit.MethodContext) error {
	if err := need(mc, 1); err != nil {
		return err
	}
	emit.PrintTop(mc.MethodWriter)
	return mc.MarkConsumed()
}

// NumberConstant pushes a fixed runtime number
type NumberConstant string

func (n NumberConstant) Compile(mc *emit.MethodContext) error {
	emit.AddBigComplex(mc.MethodWriter, string(n))
	mc.MarkProduced()
	return nil
}

// StringConstant pushes a fixed string
type StringConstant string

func (s StringConstant) Compile(mc *emit.MethodContext) error {
	mc.LdcString(string(s))
	mc.MarkProduced()
	return nil
}

// Input pushes the program argument at Index. Outside the entry method
// there are no arguments in scope and null is pushed instead.
type Input struct {
	Index int
}

func (in Input) Compile(mc *emit.MethodContext) error {
	if mc.IsEntry() {
		emit.LoadIndexed(mc.MethodWriter, emit.ArgsSlot, in.Index)
	} else {
		emit.Placeholder(mc.MethodWriter)
	}
	mc.MarkProduced()
	return nil
}
