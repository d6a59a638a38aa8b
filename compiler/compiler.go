package compiler

import (
	"jyxal/classfile"
	"jyxal/elements"
	"jyxal/emit"
	"jyxal/parser"
	"jyxal/trace"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Version changes whenever the generated code for a given input may change
const Version = "0.4.0"

// Names of the generated class members
const (
	DefaultClassName = "jyxal/Main"
	RegisterField    = "$register"
	EntryMethod      = "main"
	InitMethod       = "<clinit>"
	ListInitPrefix   = "listInit$"
)

// ListInitDesc is the descriptor of every synthesized list element method
var ListInitDesc = classfile.MethodDescriptor(classfile.ObjectDesc)

// Options configures a compile
type Options struct {
	ClassName string            // internal name of the generated class
	Catalog   *elements.Catalog // element table; nil uses elements.Default
	Tracer    *trace.Tracer     // optional
}

// DefaultOptions returns the options Compile uses
func DefaultOptions() Options {
	return Options{ClassName: DefaultClassName}
}

// Compile turns a parsed file into the bytes of one class file
func Compile(file *parser.File, sourceName string) ([]byte, error) {
	return CompileWithOptions(file, sourceName, DefaultOptions())
}

// CompileWithOptions is Compile with explicit options. Each call works on
// fresh state; nothing is shared between calls.
func CompileWithOptions(file *parser.File, sourceName string, opts Options) ([]byte, error) {
	if file == nil {
		return nil, errors.New("nil file")
	}
	if opts.ClassName == "" {
		opts.ClassName = DefaultClassName
	}
	if opts.Catalog == nil {
		cat, err := elements.Default()
		if err != nil {
			return nil, err
		}
		opts.Catalog = cat
	}

	s := newSession(opts, sourceName)
	if err := s.compileFile(file); err != nil {
		return nil, err
	}
	data, err := s.class.Bytes()
	if err != nil {
		return nil, errors.Wrapf(err, "write class %s", opts.ClassName)
	}
	glog.V(3).Infof("compiled %s: %d methods, %d variables, %d bytes",
		sourceName, len(s.class.Methods()), s.symbols.Len(), len(data))
	return data, nil
}

// session holds all mutable state of one compile
type session struct {
	class       *classfile.ClassWriter
	clinit      *classfile.MethodWriter
	contexts    emit.ContextStack
	symbols     *Symbols
	catalog     *elements.Catalog
	tracer      *trace.Tracer
	listCounter int
}

func newSession(opts Options, sourceName string) *session {
	cw := classfile.NewClassWriter(classfile.ACC_PUBLIC|classfile.ACC_FINAL|classfile.ACC_SUPER, opts.ClassName, emit.ObjectClass)
	cw.SourceFile = sourceName
	clinit := cw.NewMethod(classfile.ACC_STATIC, InitMethod, classfile.VoidDesc)
	return &session{
		class:   cw,
		clinit:  clinit,
		symbols: NewSymbols(cw, clinit),
		catalog: opts.Catalog,
		tracer:  opts.Tracer,
	}
}

// current returns the narrowest enclosing emission context
func (s *session) current() *emit.MethodContext {
	return s.contexts.Peek()
}

// withContext runs fn with mc as the active context. The stack is popped
// whether or not fn succeeds.
func (s *session) withContext(mc *emit.MethodContext, fn func() error) error {
	s.contexts.Push(mc)
	defer s.contexts.Pop()
	s.tracer.MethodBegin(mc.Name, s.contexts.Len())
	return fn()
}

func (s *session) endMethod(mw *classfile.MethodWriter) error {
	if err := mw.End(); err != nil {
		return err
	}
	s.tracer.MethodEnd(mw.Name, mw.MaxStack(), mw.MaxLocals(), len(mw.Code()))
	return nil
}

// compileFile emits the initializer, the entry method and, through the
// body, every synthesized method
func (s *session) compileFile(file *parser.File) error {
	if err := s.class.AddField(classfile.ACC_PRIVATE|classfile.ACC_STATIC|classfile.ACC_FINAL, RegisterField, classfile.ObjectDesc); err != nil {
		return err
	}
	emit.Placeholder(s.clinit)
	s.clinit.FieldInsn(classfile.OP_PUTSTATIC, s.class.Name, RegisterField, classfile.ObjectDesc)

	main := emit.NewMethodContext(s.class.NewMethod(classfile.ACC_PUBLIC|classfile.ACC_STATIC, EntryMethod, classfile.MainDesc), true)
	err := s.withContext(main, func() error {
		emit.Placeholder(main.MethodWriter)
		if err := s.compileProgram(file.Body); err != nil {
			return err
		}

		// Print whatever the body left on top, if it left anything.
		end := classfile.NewLabel()
		main.VarInsn(classfile.OP_ILOAD, main.StackVar())
		main.JumpInsn(classfile.OP_IFEQ, end)
		main.Insn(classfile.OP_DUP)
		emit.PrintTop(main.MethodWriter)
		main.Label(end)
		main.Insn(classfile.OP_RETURN)
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.endMethod(main.MethodWriter); err != nil {
		return err
	}

	s.clinit.Insn(classfile.OP_RETURN)
	return s.endMethod(s.clinit)
}

func (s *session) compileProgram(prog *parser.Program) error {
	if prog == nil {
		return nil
	}
	for _, item := range prog.Items {
		if err := s.compileNode(item); err != nil {
			return err
		}
	}
	return nil
}

// compileNode dispatches one item to its code generator
func (s *session) compileNode(node parser.Item) error {
	if s.tracer.IsEnabled() {
		s.tracer.Node(s.current().Name, node.Position().String(), parser.Unparse(node))
	}

	var err error
	switch n := node.(type) {
	case *parser.IntegerLit:
		err = s.compileInteger(n)
	case *parser.ComplexLit:
		err = s.compileComplex(n)
	case *parser.StringLit:
		err = s.compileString(n)
	case *parser.ListLit:
		err = s.compileList(n)
	case *parser.VariableAssn:
		err = s.compileVariable(n)
	case *parser.Element:
		err = s.compileElement(n)
	case *parser.WhileLoop:
		err = s.compileLoop(n)
	default:
		return errors.Errorf("%s: unsupported node %T", node.Position(), node)
	}

	var ce *Error
	if err != nil && !errors.As(err, &ce) && errors.Is(err, emit.ErrScopeImbalance) {
		return &Error{Kind: InternalScopeImbalance, Pos: node.Position(), Detail: err.Error(), cause: err}
	}
	return err
}
