package classfile

import (
	"encoding/binary"
	"slices"
	"sort"

	"github.com/pkg/errors"
)

// Label marks a position in a method's code array
type Label struct {
	offset int
	bound  bool
}

// NewLabel creates an unbound label
func NewLabel() *Label {
	return &Label{offset: -1}
}

// Offset returns the bound code offset, or -1 if the label is unbound
func (l *Label) Offset() int {
	if !l.bound {
		return -1
	}
	return l.offset
}

// insn records one emitted instruction for the max-stack pass
type insn struct {
	offset int
	op     OpCode
	delta  int
	target *Label
}

// fixup is a branch operand to patch once every label is bound. Wide
// fixups hold a 4-byte GOTO_W offset.
type fixup struct {
	insnStart int
	at        int
	label     *Label
	wide      bool
}

// MethodWriter builds the Code attribute of one method
type MethodWriter struct {
	class      *ClassWriter
	Access     uint16
	Name       string
	Descriptor string

	code      []byte
	insns     []insn
	fixups    []fixup
	labels    []*Label
	maxLocals int
	maxStack  int
	ended     bool
}

func newMethodWriter(cw *ClassWriter, access uint16, name, desc string) *MethodWriter {
	mw := &MethodWriter{
		class:      cw,
		Access:     access,
		Name:       name,
		Descriptor: desc,
		code:       make([]byte, 0, 128),
		insns:      make([]insn, 0, 64),
	}
	mw.maxLocals = argSlots(desc)
	if access&ACC_STATIC == 0 {
		mw.maxLocals++
	}
	return mw
}

// Offset returns the current code offset
func (m *MethodWriter) Offset() int {
	return len(m.code)
}

// MaxStack returns the operand stack depth computed by End
func (m *MethodWriter) MaxStack() int {
	return m.maxStack
}

// MaxLocals returns the local slot count computed so far
func (m *MethodWriter) MaxLocals() int {
	return m.maxLocals
}

// Code returns the raw code array
func (m *MethodWriter) Code() []byte {
	return m.code
}

func (m *MethodWriter) record(op OpCode, delta int, target *Label) {
	m.insns = append(m.insns, insn{offset: len(m.code), op: op, delta: delta, target: target})
	m.code = append(m.code, byte(op))
}

func (m *MethodWriter) useLocal(slot int) {
	if slot+1 > m.maxLocals {
		m.maxLocals = slot + 1
	}
}

// Insn emits an instruction without operands
func (m *MethodWriter) Insn(op OpCode) {
	m.record(op, opTable[op].delta, nil)
}

// IntInsn emits BIPUSH or SIPUSH
func (m *MethodWriter) IntInsn(op OpCode, v int) {
	m.record(op, 1, nil)
	if op == OP_BIPUSH {
		m.code = append(m.code, byte(int8(v)))
		return
	}
	m.code = append(m.code, u2(uint16(int16(v)))...)
}

// VarInsn emits a load or store of a local slot, widening when needed
func (m *MethodWriter) VarInsn(op OpCode, slot int) {
	m.useLocal(slot)
	if slot > 0xFF {
		m.record(OP_WIDE, 0, nil)
		m.insns[len(m.insns)-1].delta = opTable[op].delta
		m.code = append(m.code, byte(op))
		m.code = append(m.code, u2(uint16(slot))...)
		return
	}
	m.record(op, opTable[op].delta, nil)
	m.code = append(m.code, byte(slot))
}

// IincInsn emits an increment of an int local
func (m *MethodWriter) IincInsn(slot, delta int) {
	m.useLocal(slot)
	if slot > 0xFF || delta < -128 || delta > 127 {
		m.record(OP_WIDE, 0, nil)
		m.code = append(m.code, byte(OP_IINC))
		m.code = append(m.code, u2(uint16(slot))...)
		m.code = append(m.code, u2(uint16(int16(delta)))...)
		return
	}
	m.record(OP_IINC, 0, nil)
	m.code = append(m.code, byte(slot), byte(int8(delta)))
}

// ldc emits LDC or LDC_W for a pool index
func (m *MethodWriter) ldc(idx uint16) {
	if idx <= 0xFF {
		m.record(OP_LDC, 1, nil)
		m.code = append(m.code, byte(idx))
		return
	}
	m.record(OP_LDC_W, 1, nil)
	m.code = append(m.code, u2(idx)...)
}

// LdcString pushes a String constant
func (m *MethodWriter) LdcString(s string) {
	m.ldc(m.class.Pool.String(s))
}

// LdcInt pushes an int constant from the pool
func (m *MethodWriter) LdcInt(v int32) {
	m.ldc(m.class.Pool.Integer(v))
}

// TypeInsn emits NEW, ANEWARRAY, CHECKCAST or INSTANCEOF
func (m *MethodWriter) TypeInsn(op OpCode, className string) {
	m.record(op, opTable[op].delta, nil)
	m.code = append(m.code, u2(m.class.Pool.Class(className))...)
}

// FieldInsn emits a static or instance field access
func (m *MethodWriter) FieldInsn(op OpCode, owner, name, desc string) {
	size := typeSlots(desc)
	delta := 0
	switch op {
	case OP_GETSTATIC:
		delta = size
	case OP_PUTSTATIC:
		delta = -size
	case OP_GETFIELD:
		delta = size - 1
	case OP_PUTFIELD:
		delta = -size - 1
	}
	m.record(op, delta, nil)
	m.code = append(m.code, u2(m.class.Pool.Fieldref(owner, name, desc))...)
}

// MethodInsn emits a method invocation
func (m *MethodWriter) MethodInsn(op OpCode, owner, name, desc string) {
	delta := returnSlots(desc) - argSlots(desc)
	if op != OP_INVOKESTATIC {
		delta--
	}
	m.record(op, delta, nil)
	m.code = append(m.code, u2(m.class.Pool.Methodref(owner, name, desc))...)
}

// JumpInsn emits a branch to label, patched when the method ends
func (m *MethodWriter) JumpInsn(op OpCode, label *Label) {
	start := len(m.code)
	m.record(op, opTable[op].delta, label)
	m.fixups = append(m.fixups, fixup{insnStart: start, at: len(m.code), label: label})
	m.code = append(m.code, 0xFF, 0xFF) // placeholder offset
}

// Label binds label to the current offset
func (m *MethodWriter) Label(label *Label) {
	if !label.bound {
		m.labels = append(m.labels, label)
	}
	label.offset = len(m.code)
	label.bound = true
}

// End patches branches and computes the maximum stack depth.
// The writer must not be used afterwards.
func (m *MethodWriter) End() error {
	if m.ended {
		return errors.Errorf("method %s already ended", m.Name)
	}
	m.ended = true

	for _, f := range m.fixups {
		if !f.label.bound {
			return errors.Errorf("method %s: branch to unbound label", m.Name)
		}
	}

	// Widening moves later code, which can push other branches out of
	// range, so repeat until every short branch fits.
	for widened := true; widened; {
		widened = false
		for i := range m.fixups {
			f := &m.fixups[i]
			if f.wide {
				continue
			}
			if rel := f.label.offset - f.insnStart; rel < -0x8000 || rel > 0x7FFF {
				if err := m.widen(i); err != nil {
					return err
				}
				widened = true
			}
		}
	}

	for _, f := range m.fixups {
		rel := f.label.offset - f.insnStart
		if f.wide {
			binary.BigEndian.PutUint32(m.code[f.at:], uint32(int32(rel)))
		} else {
			binary.BigEndian.PutUint16(m.code[f.at:], uint16(int16(rel)))
		}
	}

	if len(m.code) > 0xFFFF {
		return errors.Errorf("method %s: code too large (%d bytes)", m.Name, len(m.code))
	}

	m.maxStack = m.computeMaxStack()
	return nil
}

// widen rewrites the short branch of fixup i with a 4-byte offset.
// GOTO becomes GOTO_W; a conditional branch becomes its negation jumping
// over a GOTO_W to the original target.
func (m *MethodWriter) widen(i int) error {
	f := &m.fixups[i]
	start := f.insnStart
	k := sort.Search(len(m.insns), func(j int) bool { return m.insns[j].offset >= start })
	if k == len(m.insns) || m.insns[k].offset != start {
		return errors.Errorf("method %s: no instruction at branch offset %d", m.Name, start)
	}

	op := OpCode(m.code[start])
	if op == OP_GOTO {
		m.insertGap(start+3, 2)
		m.code[start] = byte(OP_GOTO_W)
		m.insns[k].op = OP_GOTO_W
		f.at = start + 1
		f.wide = true
		return nil
	}

	neg, ok := negated[op]
	if !ok {
		return errors.Errorf("method %s: cannot widen %s at %d", m.Name, op, start)
	}
	m.insertGap(start+3, 5)
	m.code[start] = byte(neg)
	binary.BigEndian.PutUint16(m.code[start+1:], 8)
	m.code[start+3] = byte(OP_GOTO_W)

	skip := &Label{offset: start + 8, bound: true}
	m.labels = append(m.labels, skip)
	m.insns[k].op = neg
	m.insns[k].target = skip
	m.insns = slices.Insert(m.insns, k+1, insn{offset: start + 3, op: OP_GOTO_W, target: f.label})

	f.insnStart = start + 3
	f.at = start + 4
	f.wide = true
	return nil
}

// insertGap opens n zero bytes at pos and moves every offset at or past pos
func (m *MethodWriter) insertGap(pos, n int) {
	m.code = slices.Insert(m.code, pos, make([]byte, n)...)
	for _, l := range m.labels {
		if l.offset >= pos {
			l.offset += n
		}
	}
	for j := range m.insns {
		if m.insns[j].offset >= pos {
			m.insns[j].offset += n
		}
	}
	for j := range m.fixups {
		if m.fixups[j].insnStart >= pos {
			m.fixups[j].insnStart += n
			m.fixups[j].at += n
		}
	}
}

// computeMaxStack walks the control-flow graph, visiting each instruction
// once with the first depth that reaches it.
func (m *MethodWriter) computeMaxStack() int {
	byOffset := make(map[int]int, len(m.insns))
	for i, in := range m.insns {
		byOffset[in.offset] = i
	}

	visited := make([]bool, len(m.insns))
	type work struct{ index, depth int }
	queue := []work{{0, 0}}
	max := 0

	for len(queue) > 0 {
		w := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if w.index >= len(m.insns) || visited[w.index] {
			continue
		}
		visited[w.index] = true

		in := m.insns[w.index]
		after := w.depth + in.delta
		if after < 0 {
			after = 0
		}
		if after > max {
			max = after
		}

		if in.target != nil {
			if idx, ok := byOffset[in.target.offset]; ok {
				queue = append(queue, work{idx, after})
			}
		}
		if !in.op.isTerminal() {
			queue = append(queue, work{w.index + 1, after})
		}
	}
	return max
}

// bytes serializes the method_info structure with its Code attribute
func (m *MethodWriter) bytes(pool *ConstantPool) []byte {
	out := make([]byte, 0, 32+len(m.code))
	out = append(out, u2(m.Access)...)
	out = append(out, u2(pool.Utf8(m.Name))...)
	out = append(out, u2(pool.Utf8(m.Descriptor))...)
	out = append(out, u2(1)...) // attributes_count

	out = append(out, u2(pool.Utf8("Code"))...)
	out = append(out, u4(uint32(12+len(m.code)))...)
	out = append(out, u2(uint16(m.maxStack))...)
	out = append(out, u2(uint16(m.maxLocals))...)
	out = append(out, u4(uint32(len(m.code)))...)
	out = append(out, m.code...)
	out = append(out, u2(0)...) // exception_table_length
	out = append(out, u2(0)...) // attributes_count
	return out
}
