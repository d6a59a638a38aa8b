package classfile

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Instruction is one decoded instruction
type Instruction struct {
	Offset  int
	Op      OpCode
	Operand string // rendered operand, empty if none
	Target  int    // branch target offset, -1 if not a branch
	Wide    bool
}

// String renders the instruction as "OP operand"
func (in Instruction) String() string {
	if in.Operand == "" {
		return in.Op.String()
	}
	return in.Op.String() + " " + in.Operand
}

// Decode splits a method's code array into instructions
func (c *Class) Decode(m *Method) ([]Instruction, error) {
	var out []Instruction
	code := m.Code
	for pc := 0; pc < len(code); {
		in := Instruction{Offset: pc, Op: OpCode(code[pc]), Target: -1}
		pc++
		if in.Op == OP_WIDE {
			if pc >= len(code) {
				return out, errors.Errorf("truncated WIDE at %d", in.Offset)
			}
			in.Wide = true
			in.Op = OpCode(code[pc])
			pc++
		}
		info, ok := opTable[in.Op]
		if !ok {
			return out, errors.Errorf("unsupported opcode 0x%02x at %d", byte(in.Op), in.Offset)
		}
		width := operandWidth(info.operand, in.Wide)
		if pc+width > len(code) {
			return out, errors.Errorf("truncated %s at %d", info.name, in.Offset)
		}
		operand := code[pc : pc+width]
		pc += width

		switch info.operand {
		case operandByte:
			in.Operand = fmt.Sprintf("%d", int8(operand[0]))
		case operandShort:
			in.Operand = fmt.Sprintf("%d", int16(binary.BigEndian.Uint16(operand)))
		case operandPool1:
			in.Operand = c.ConstantText(uint16(operand[0]))
		case operandPool2:
			in.Operand = c.ConstantText(binary.BigEndian.Uint16(operand))
		case operandLocal:
			in.Operand = fmt.Sprintf("%d", localIndex(operand, in.Wide))
		case operandIinc:
			if in.Wide {
				in.Operand = fmt.Sprintf("%d %d", binary.BigEndian.Uint16(operand), int16(binary.BigEndian.Uint16(operand[2:])))
			} else {
				in.Operand = fmt.Sprintf("%d %d", operand[0], int8(operand[1]))
			}
		case operandBranch:
			in.Target = in.Offset + int(int16(binary.BigEndian.Uint16(operand)))
			in.Operand = fmt.Sprintf("L%d", in.Target)
		case operandBranchWide:
			in.Target = in.Offset + int(int32(binary.BigEndian.Uint32(operand)))
			in.Operand = fmt.Sprintf("L%d", in.Target)
		}
		out = append(out, in)
	}
	return out, nil
}

func operandWidth(kind operandKind, wide bool) int {
	switch kind {
	case operandByte, operandPool1:
		return 1
	case operandShort, operandPool2, operandBranch:
		return 2
	case operandLocal:
		if wide {
			return 2
		}
		return 1
	case operandIinc:
		if wide {
			return 4
		}
		return 2
	case operandBranchWide:
		return 4
	}
	return 0
}

func localIndex(operand []byte, wide bool) int {
	if wide {
		return int(binary.BigEndian.Uint16(operand))
	}
	return int(operand[0])
}

// Disassemble renders a readable listing of the whole class
func Disassemble(c *Class) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "class %s extends %s (version %d.%d)\n", c.Name, c.SuperName, c.Major, c.Minor)
	if c.SourceFile != "" {
		fmt.Fprintf(&b, "  source %s\n", c.SourceFile)
	}
	for _, f := range c.Fields {
		fmt.Fprintf(&b, "  field %s %s [0x%04x]\n", f.Name, f.Descriptor, f.Access)
	}
	for i := range c.Methods {
		m := &c.Methods[i]
		fmt.Fprintf(&b, "  method %s%s [0x%04x] stack=%d locals=%d\n",
			m.Name, m.Descriptor, m.Access, m.MaxStack, m.MaxLocals)
		insns, err := c.Decode(m)
		if err != nil {
			return b.String(), errors.Wrapf(err, "method %s", m.Name)
		}
		targets := make(map[int]bool)
		for _, in := range insns {
			if in.Target >= 0 {
				targets[in.Target] = true
			}
		}
		for _, in := range insns {
			if targets[in.Offset] {
				fmt.Fprintf(&b, "   L%d:\n", in.Offset)
			}
			fmt.Fprintf(&b, "    %4d: %s\n", in.Offset, in)
		}
	}
	return b.String(), nil
}
