package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"jyxal/classfile"
	"jyxal/emit"
	"jyxal/parser"

	"github.com/golang/glog"
)

var (
	integerPattern = regexp.MustCompile(`^[0-9]+$`)
	decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
)

func (s *session) compileInteger(n *parser.IntegerLit) error {
	if !integerPattern.MatchString(n.Text) {
		return newError(InvalidLiteral, n.Pos, "integer %q", n.Text)
	}
	mc := s.current()
	emit.AddBigComplex(mc.MethodWriter, n.Text)
	mc.MarkProduced()
	return nil
}

// compileComplex uses the components split by the front end, falling back
// to splitting the literal text itself
func (s *session) compileComplex(n *parser.ComplexLit) error {
	re, im := n.Real, n.Imag
	if re == "" && im == "" {
		parts := strings.Split(n.Text, parser.ComplexSeparator)
		if len(parts) != 2 {
			return newError(InvalidLiteral, n.Pos, "complex %q: want exactly one %s", n.Text, parser.ComplexSeparator)
		}
		re, im = parts[0], parts[1]
	}
	for _, part := range []string{re, im} {
		if !decimalPattern.MatchString(part) {
			return newError(InvalidLiteral, n.Pos, "complex %q: bad component %q", n.Text, part)
		}
	}

	mc := s.current()
	emit.AddComplex(mc.MethodWriter, re, im)
	mc.MarkProduced()
	return nil
}

func (s *session) compileString(n *parser.StringLit) error {
	mc := s.current()
	mc.LdcString(n.Value)
	mc.MarkProduced()
	return nil
}

// compileList builds an Object[] whose element i is computed by its own
// synthesized method, then wraps it as a runtime list
func (s *session) compileList(n *parser.ListLit) error {
	mc := s.current()
	emit.PushNumber(mc.MethodWriter, len(n.Items))
	mc.TypeInsn(classfile.OP_ANEWARRAY, emit.ObjectClass)

	for i, item := range n.Items {
		mc.Insn(classfile.OP_DUP)
		emit.PushNumber(mc.MethodWriter, i)

		name := fmt.Sprintf("%s%d", ListInitPrefix, s.listCounter)
		s.listCounter++
		inner := emit.NewMethodContext(s.class.NewMethod(classfile.ACC_PRIVATE|classfile.ACC_STATIC, name, ListInitDesc), false)
		err := s.withContext(inner, func() error {
			emit.Placeholder(inner.MethodWriter)
			if err := s.compileProgram(item); err != nil {
				return err
			}
			inner.Insn(classfile.OP_ARETURN)
			return nil
		})
		if err != nil {
			return err
		}
		if err := s.endMethod(inner.MethodWriter); err != nil {
			return err
		}

		mc.MethodInsn(classfile.OP_INVOKESTATIC, s.class.Name, name, ListInitDesc)
		mc.Insn(classfile.OP_AASTORE)
	}

	mc.MethodInsn(classfile.OP_INVOKESTATIC, emit.ListClass, emit.ListFactory, emit.ListFactoryDesc)
	mc.MarkProduced()
	return nil
}

func (s *session) compileVariable(n *parser.VariableAssn) error {
	v, created, err := s.symbols.Variable(n.Name)
	if err != nil {
		return err
	}
	mc := s.current()
	if created {
		s.tracer.Field(mc.Name, v.Field)
	}
	if n.IsStore() {
		return s.symbols.Store(mc, v)
	}
	s.symbols.Load(mc, v)
	return nil
}

func (s *session) compileElement(n *parser.Element) error {
	e, ok := s.catalog.Lookup(n.Key())
	if !ok {
		return newError(UnresolvedElement, n.Pos, "%q", n.Key())
	}
	return e.Compile(s.current())
}

// compileLoop emits {body} as an unconditional back-edge, and {cond|body}
// as a back-edge gated by the truth value of cond
func (s *session) compileLoop(n *parser.WhileLoop) error {
	mc := s.current()
	start := classfile.NewLabel()
	end := classfile.NewLabel()
	mc.Label(start)

	var body *parser.Program
	conditional := len(n.Blocks) > 1
	if conditional {
		if len(n.Blocks) > 2 {
			glog.Warningf("%s: loop has %d blocks; blocks after the second are ignored", n.Pos, len(n.Blocks))
		}
		if err := s.compileProgram(n.Blocks[0]); err != nil {
			return err
		}
		emit.TruthValue(mc.MethodWriter)
		if err := mc.MarkConsumed(); err != nil {
			return err
		}
		mc.JumpInsn(classfile.OP_IFEQ, end)
		body = n.Blocks[1]
	} else if len(n.Blocks) == 1 {
		body = n.Blocks[0]
	}

	if err := s.compileProgram(body); err != nil {
		return err
	}
	mc.JumpInsn(classfile.OP_GOTO, start)
	if conditional {
		mc.Label(end)
	}
	return nil
}
