package compiler

import (
	"jyxal/classfile"
	"jyxal/emit"

	"github.com/pkg/errors"
)

// ContextFieldPrefix keeps context variables apart from plain ones
const ContextFieldPrefix = "ctx$"

// Variable is one global storage slot. First sighting is reported by the
// created result of Symbols.Variable.
type Variable struct {
	Name  string
	Field string
}

// Symbols allocates one static field per variable name and schedules its
// zero initialisation in the class initializer
type Symbols struct {
	class *classfile.ClassWriter
	init  *classfile.MethodWriter

	vars    map[string]*Variable
	ctxVars map[string]*Variable
}

// NewSymbols creates a registry that adds fields to class and zero stores to init
func NewSymbols(class *classfile.ClassWriter, init *classfile.MethodWriter) *Symbols {
	return &Symbols{
		class:   class,
		init:    init,
		vars:    make(map[string]*Variable),
		ctxVars: make(map[string]*Variable),
	}
}

// Variable returns the slot for a plain variable, allocating it on first
// sighting. created reports whether this call allocated it.
func (s *Symbols) Variable(name string) (v *Variable, created bool, err error) {
	return s.register(s.vars, name, name)
}

// ContextVariable is Variable for the context namespace
func (s *Symbols) ContextVariable(name string) (v *Variable, created bool, err error) {
	return s.register(s.ctxVars, name, ContextFieldPrefix+name)
}

func (s *Symbols) register(ns map[string]*Variable, name, field string) (*Variable, bool, error) {
	if v, ok := ns[name]; ok {
		return v, false, nil
	}
	if err := s.class.AddField(classfile.ACC_PRIVATE|classfile.ACC_STATIC, field, classfile.ObjectDesc); err != nil {
		return nil, false, errors.Wrapf(err, "variable %s", name)
	}
	emit.AddBigComplex(s.init, "0")
	s.init.FieldInsn(classfile.OP_PUTSTATIC, s.class.Name, field, classfile.ObjectDesc)

	v := &Variable{Name: name, Field: field}
	ns[name] = v
	return v, true, nil
}

// Lookup returns a plain variable without allocating it
func (s *Symbols) Lookup(name string) (*Variable, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// LookupContext returns a context variable without allocating it
func (s *Symbols) LookupContext(name string) (*Variable, bool) {
	v, ok := s.ctxVars[name]
	return v, ok
}

// Len returns the number of plain variables
func (s *Symbols) Len() int {
	return len(s.vars)
}

// ContextLen returns the number of context variables
func (s *Symbols) ContextLen() int {
	return len(s.ctxVars)
}

// Load pushes the variable's value
func (s *Symbols) Load(mc *emit.MethodContext, v *Variable) {
	mc.FieldInsn(classfile.OP_GETSTATIC, s.class.Name, v.Field, classfile.ObjectDesc)
	mc.MarkProduced()
}

// Store pops the top value into the variable
func (s *Symbols) Store(mc *emit.MethodContext, v *Variable) error {
	if mc.Depth() == 0 {
		return errors.Wrapf(emit.ErrScopeImbalance, "store to %s", v.Name)
	}
	mc.FieldInsn(classfile.OP_PUTSTATIC, s.class.Name, v.Field, classfile.ObjectDesc)
	return mc.MarkConsumed()
}
