package classfile

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Constant is a decoded constant pool entry
type Constant struct {
	Tag   byte
	Text  string // Utf8 value, or the resolved text of a reference entry
	Int   int32
	Index [2]uint16
}

// Method is a decoded method_info with its Code attribute
type Method struct {
	Access     uint16
	Name       string
	Descriptor string
	MaxStack   int
	MaxLocals  int
	Code       []byte
}

// Class is a decoded class file
type Class struct {
	Major      uint16
	Minor      uint16
	Access     uint16
	Name       string
	SuperName  string
	SourceFile string
	Pool       []Constant // index 0 unused
	Fields     []FieldInfo
	Methods    []Method
}

// Method returns the method with the given name, or nil
func (c *Class) Method(name string) *Method {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i]
		}
	}
	return nil
}

// Field returns the field with the given name, or nil
func (c *Class) Field(name string) *FieldInfo {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// reader is a bounds-checked big-endian cursor
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > len(r.data) {
		r.err = errors.Errorf("truncated class file at offset %d", r.pos)
		return false
	}
	return true
}

func (r *reader) u1() byte {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v
}

// Parse decodes a class file
func Parse(data []byte) (*Class, error) {
	r := &reader{data: data}
	if magic := r.u4(); r.err == nil && magic != Magic {
		return nil, errors.Errorf("bad magic 0x%08x", magic)
	}
	c := &Class{}
	c.Minor = r.u2()
	c.Major = r.u2()

	if err := c.readPool(r); err != nil {
		return nil, err
	}

	c.Access = r.u2()
	c.Name = c.className(r.u2())
	c.SuperName = c.className(r.u2())
	for n := int(r.u2()); n > 0; n-- {
		r.u2() // interfaces are not used by generated classes
	}

	for n := int(r.u2()); n > 0 && r.err == nil; n-- {
		f := FieldInfo{Access: r.u2(), Name: c.utf8(r.u2()), Descriptor: c.utf8(r.u2())}
		skipAttributes(r)
		c.Fields = append(c.Fields, f)
	}

	for n := int(r.u2()); n > 0 && r.err == nil; n-- {
		m := Method{Access: r.u2(), Name: c.utf8(r.u2()), Descriptor: c.utf8(r.u2())}
		for a := int(r.u2()); a > 0 && r.err == nil; a-- {
			name := c.utf8(r.u2())
			body := r.bytes(int(r.u4()))
			if name == "Code" && body != nil {
				if err := m.readCode(body); err != nil {
					return nil, errors.Wrapf(err, "method %s", m.Name)
				}
			}
		}
		c.Methods = append(c.Methods, m)
	}

	for a := int(r.u2()); a > 0 && r.err == nil; a-- {
		name := c.utf8(r.u2())
		body := r.bytes(int(r.u4()))
		if name == "SourceFile" && len(body) == 2 {
			c.SourceFile = c.utf8(binary.BigEndian.Uint16(body))
		}
	}

	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

func (c *Class) readPool(r *reader) error {
	count := int(r.u2())
	c.Pool = make([]Constant, count)
	for i := 1; i < count && r.err == nil; i++ {
		tag := r.u1()
		k := Constant{Tag: tag}
		switch tag {
		case TagUtf8:
			s, err := DecodeModifiedUTF8(r.bytes(int(r.u2())))
			if err != nil {
				return errors.Wrapf(err, "constant %d", i)
			}
			k.Text = s
		case TagInteger:
			k.Int = int32(r.u4())
		case TagFloat:
			r.u4()
		case TagLong, TagDouble:
			r.u4()
			r.u4()
			c.Pool[i] = k
			i++ // eight-byte constants take two slots
			continue
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			k.Index[0] = r.u2()
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
			k.Index[0] = r.u2()
			k.Index[1] = r.u2()
		case TagMethodHandle:
			r.u1()
			k.Index[0] = r.u2()
		default:
			return errors.Errorf("unknown constant tag %d at index %d", tag, i)
		}
		c.Pool[i] = k
	}
	if r.err != nil {
		return r.err
	}

	// Resolve reference entries to readable text once every entry is known.
	for i := range c.Pool {
		switch c.Pool[i].Tag {
		case TagClass, TagString:
			c.Pool[i].Text = c.utf8(c.Pool[i].Index[0])
		case TagNameAndType:
			c.Pool[i].Text = c.utf8(c.Pool[i].Index[0]) + ":" + c.utf8(c.Pool[i].Index[1])
		}
	}
	for i := range c.Pool {
		switch c.Pool[i].Tag {
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			owner := c.className(c.Pool[i].Index[0])
			nt := c.entry(c.Pool[i].Index[1]).Text
			name, desc := nt, ""
			for j := 0; j < len(nt); j++ {
				if nt[j] == ':' {
					name, desc = nt[:j], nt[j+1:]
					break
				}
			}
			if c.Pool[i].Tag == TagFieldref {
				desc = ":" + desc
			}
			c.Pool[i].Text = owner + "." + name + desc
		}
	}
	return nil
}

func (c *Class) entry(idx uint16) Constant {
	if int(idx) >= len(c.Pool) {
		return Constant{}
	}
	return c.Pool[idx]
}

func (c *Class) utf8(idx uint16) string {
	return c.entry(idx).Text
}

func (c *Class) className(idx uint16) string {
	k := c.entry(idx)
	if k.Tag != TagClass {
		return ""
	}
	return k.Text
}

func (m *Method) readCode(body []byte) error {
	r := &reader{data: body}
	m.MaxStack = int(r.u2())
	m.MaxLocals = int(r.u2())
	m.Code = r.bytes(int(r.u4()))
	return r.err
}

func skipAttributes(r *reader) {
	for a := int(r.u2()); a > 0 && r.err == nil; a-- {
		r.u2()
		r.bytes(int(r.u4()))
	}
}

// ConstantText renders a pool entry for listings
func (c *Class) ConstantText(idx uint16) string {
	k := c.entry(idx)
	switch k.Tag {
	case TagInteger:
		return fmt.Sprintf("%d", k.Int)
	case TagString:
		return fmt.Sprintf("%q", k.Text)
	default:
		return k.Text
	}
}
