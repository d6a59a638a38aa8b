package classfile

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// Constant pool tags
const (
	TagUtf8               byte = 1
	TagInteger            byte = 3
	TagFloat              byte = 4
	TagLong               byte = 5
	TagDouble             byte = 6
	TagClass              byte = 7
	TagString             byte = 8
	TagFieldref           byte = 9
	TagMethodref          byte = 10
	TagInterfaceMethodref byte = 11
	TagNameAndType        byte = 12
	TagMethodHandle       byte = 15
	TagMethodType         byte = 16
	TagDynamic            byte = 17
	TagInvokeDynamic      byte = 18
	TagModule             byte = 19
	TagPackage            byte = 20
)

// maxPoolEntries is the largest constant_pool_count the format allows
const maxPoolEntries = 0xFFFF

// ErrPoolOverflow is returned when a class needs more constants than the format can index
var ErrPoolOverflow = errors.New("constant pool overflow")

// poolEntry is one serialized constant
type poolEntry struct {
	tag  byte
	data []byte
}

// ConstantPool accumulates constants with deduplication.
// Index 0 is unused, as the format requires.
type ConstantPool struct {
	entries []poolEntry
	index   map[string]uint16 // dedup key -> pool index
	err     error             // first overflow, reported by Bytes
}

// NewConstantPool creates an empty pool
func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		entries: make([]poolEntry, 0, 64),
		index:   make(map[string]uint16),
	}
}

// Len returns constant_pool_count (number of entries plus one)
func (p *ConstantPool) Len() int {
	return len(p.entries) + 1
}

// Err returns the first error recorded while adding constants
func (p *ConstantPool) Err() error {
	return p.err
}

// add interns an entry under key and returns its index
func (p *ConstantPool) add(key string, tag byte, data []byte) uint16 {
	if idx, ok := p.index[key]; ok {
		return idx
	}
	if len(p.entries)+1 >= maxPoolEntries {
		if p.err == nil {
			p.err = errors.Wrapf(ErrPoolOverflow, "adding %s", key)
		}
		return 0
	}
	p.entries = append(p.entries, poolEntry{tag: tag, data: data})
	idx := uint16(len(p.entries))
	p.index[key] = idx
	return idx
}

// Utf8 interns a CONSTANT_Utf8 entry
func (p *ConstantPool) Utf8(s string) uint16 {
	enc := EncodeModifiedUTF8(s)
	if len(enc) > 0xFFFF {
		if p.err == nil {
			p.err = errors.Errorf("string constant too long (%d bytes)", len(enc))
		}
		return 0
	}
	data := make([]byte, 2, 2+len(enc))
	binary.BigEndian.PutUint16(data, uint16(len(enc)))
	data = append(data, enc...)
	return p.add("U:"+s, TagUtf8, data)
}

// Integer interns a CONSTANT_Integer entry
func (p *ConstantPool) Integer(v int32) uint16 {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, uint32(v))
	return p.add(fmt.Sprintf("I:%d", v), TagInteger, data)
}

// Class interns a CONSTANT_Class entry for an internal name (java/lang/Object)
func (p *ConstantPool) Class(name string) uint16 {
	return p.add("C:"+name, TagClass, u2(p.Utf8(name)))
}

// String interns a CONSTANT_String entry
func (p *ConstantPool) String(s string) uint16 {
	return p.add("S:"+s, TagString, u2(p.Utf8(s)))
}

// NameAndType interns a CONSTANT_NameAndType entry
func (p *ConstantPool) NameAndType(name, desc string) uint16 {
	data := append(u2(p.Utf8(name)), u2(p.Utf8(desc))...)
	return p.add("N:"+name+":"+desc, TagNameAndType, data)
}

// Fieldref interns a CONSTANT_Fieldref entry
func (p *ConstantPool) Fieldref(owner, name, desc string) uint16 {
	data := append(u2(p.Class(owner)), u2(p.NameAndType(name, desc))...)
	return p.add("F:"+owner+"."+name+":"+desc, TagFieldref, data)
}

// Methodref interns a CONSTANT_Methodref entry
func (p *ConstantPool) Methodref(owner, name, desc string) uint16 {
	data := append(u2(p.Class(owner)), u2(p.NameAndType(name, desc))...)
	return p.add("M:"+owner+"."+name+":"+desc, TagMethodref, data)
}

// Bytes serializes constant_pool_count followed by the entries
func (p *ConstantPool) Bytes() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := u2(uint16(p.Len()))
	for _, e := range p.entries {
		out = append(out, e.tag)
		out = append(out, e.data...)
	}
	return out, nil
}

// EncodeModifiedUTF8 encodes s the way class files store strings:
// NUL as two bytes and supplementary characters as surrogate pairs.
func EncodeModifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			out = appendModifiedUnit(out, uint16(hi))
			out = appendModifiedUnit(out, uint16(lo))
			continue
		}
		out = appendModifiedUnit(out, uint16(r))
	}
	return out
}

func appendModifiedUnit(out []byte, c uint16) []byte {
	switch {
	case c != 0 && c < 0x80:
		return append(out, byte(c))
	case c < 0x800:
		return append(out, byte(0xC0|(c>>6)), byte(0x80|(c&0x3F)))
	default:
		return append(out, byte(0xE0|(c>>12)), byte(0x80|((c>>6)&0x3F)), byte(0x80|(c&0x3F)))
	}
}

// DecodeModifiedUTF8 is the inverse of EncodeModifiedUTF8
func DecodeModifiedUTF8(b []byte) (string, error) {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) {
				return "", errors.New("truncated modified UTF-8 sequence")
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) {
				return "", errors.New("truncated modified UTF-8 sequence")
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			return "", errors.Errorf("invalid modified UTF-8 byte 0x%02x", c)
		}
	}
	return string(utf16.Decode(units)), nil
}

func u2(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func u4(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
