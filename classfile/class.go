package classfile

import (
	"github.com/pkg/errors"
)

// Magic is the class file signature
const Magic uint32 = 0xCAFEBABE

// MajorVersion 49 (Java 5) predates mandatory StackMapTable attributes,
// so generated code is checked by the type-inferring verifier.
const MajorVersion uint16 = 49

// FieldInfo describes one declared field
type FieldInfo struct {
	Access     uint16
	Name       string
	Descriptor string
}

// ClassWriter assembles a single class file
type ClassWriter struct {
	Access     uint16
	Name       string
	SuperName  string
	SourceFile string
	Pool       *ConstantPool

	fields  []FieldInfo
	fieldIx map[string]int
	methods []*MethodWriter
}

// NewClassWriter creates a writer for the class with the given internal name
func NewClassWriter(access uint16, name, superName string) *ClassWriter {
	return &ClassWriter{
		Access:    access,
		Name:      name,
		SuperName: superName,
		Pool:      NewConstantPool(),
		fields:    make([]FieldInfo, 0, 8),
		fieldIx:   make(map[string]int),
		methods:   make([]*MethodWriter, 0, 4),
	}
}

// AddField declares a field. Declaring the same name twice is an error.
func (c *ClassWriter) AddField(access uint16, name, desc string) error {
	if _, ok := c.fieldIx[name]; ok {
		return errors.Errorf("duplicate field %s in %s", name, c.Name)
	}
	c.fieldIx[name] = len(c.fields)
	c.fields = append(c.fields, FieldInfo{Access: access, Name: name, Descriptor: desc})
	return nil
}

// HasField reports whether a field with this name was declared
func (c *ClassWriter) HasField(name string) bool {
	_, ok := c.fieldIx[name]
	return ok
}

// Fields returns the declared fields in declaration order
func (c *ClassWriter) Fields() []FieldInfo {
	return c.fields
}

// NewMethod declares a method and returns its code writer.
// Methods appear in the class file in the order they are declared.
func (c *ClassWriter) NewMethod(access uint16, name, desc string) *MethodWriter {
	mw := newMethodWriter(c, access, name, desc)
	c.methods = append(c.methods, mw)
	return mw
}

// Methods returns the declared methods
func (c *ClassWriter) Methods() []*MethodWriter {
	return c.methods
}

// Bytes serializes the class. Every method must have been ended.
func (c *ClassWriter) Bytes() ([]byte, error) {
	for _, m := range c.methods {
		if !m.ended {
			return nil, errors.Errorf("method %s was never ended", m.Name)
		}
	}

	// Intern everything the trailing sections reference, so the pool is
	// complete before it is written.
	thisIdx := c.Pool.Class(c.Name)
	superIdx := c.Pool.Class(c.SuperName)
	for _, f := range c.fields {
		c.Pool.Utf8(f.Name)
		c.Pool.Utf8(f.Descriptor)
	}
	if len(c.methods) > 0 {
		c.Pool.Utf8("Code")
	}
	for _, m := range c.methods {
		c.Pool.Utf8(m.Name)
		c.Pool.Utf8(m.Descriptor)
	}
	var sourceIdx uint16
	if c.SourceFile != "" {
		c.Pool.Utf8("SourceFile")
		sourceIdx = c.Pool.Utf8(c.SourceFile)
	}

	pool, err := c.Pool.Bytes()
	if err != nil {
		return nil, errors.Wrapf(err, "class %s", c.Name)
	}

	out := make([]byte, 0, 1024)
	out = append(out, u4(Magic)...)
	out = append(out, u2(0)...) // minor_version
	out = append(out, u2(MajorVersion)...)
	out = append(out, pool...)
	out = append(out, u2(c.Access)...)
	out = append(out, u2(thisIdx)...)
	out = append(out, u2(superIdx)...)
	out = append(out, u2(0)...) // interfaces_count

	out = append(out, u2(uint16(len(c.fields)))...)
	for _, f := range c.fields {
		out = append(out, u2(f.Access)...)
		out = append(out, u2(c.Pool.Utf8(f.Name))...)
		out = append(out, u2(c.Pool.Utf8(f.Descriptor))...)
		out = append(out, u2(0)...) // attributes_count
	}

	out = append(out, u2(uint16(len(c.methods)))...)
	for _, m := range c.methods {
		out = append(out, m.bytes(c.Pool)...)
	}

	if c.SourceFile != "" {
		out = append(out, u2(1)...)
		out = append(out, u2(c.Pool.Utf8("SourceFile"))...)
		out = append(out, u4(2)...)
		out = append(out, u2(sourceIdx)...)
	} else {
		out = append(out, u2(0)...)
	}
	return out, nil
}
