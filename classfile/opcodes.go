package classfile

// OpCode is a JVM instruction opcode
type OpCode byte

// Constants and stack manipulation
const (
	OP_NOP         OpCode = 0x00
	OP_ACONST_NULL OpCode = 0x01
	OP_ICONST_M1   OpCode = 0x02
	OP_ICONST_0    OpCode = 0x03
	OP_ICONST_1    OpCode = 0x04
	OP_ICONST_2    OpCode = 0x05
	OP_ICONST_3    OpCode = 0x06
	OP_ICONST_4    OpCode = 0x07
	OP_ICONST_5    OpCode = 0x08
	OP_BIPUSH      OpCode = 0x10 // [byte]
	OP_SIPUSH      OpCode = 0x11 // [short]
	OP_LDC         OpCode = 0x12 // [u1 pool index]
	OP_LDC_W       OpCode = 0x13 // [u2 pool index]
)

// Locals and arrays
const (
	OP_ILOAD   OpCode = 0x15 // [u1 slot]
	OP_ALOAD   OpCode = 0x19 // [u1 slot]
	OP_AALOAD  OpCode = 0x32 // Pop index, array; push array[index]
	OP_ISTORE  OpCode = 0x36 // [u1 slot]
	OP_ASTORE  OpCode = 0x3a // [u1 slot]
	OP_AASTORE OpCode = 0x53 // Pop value, index, array; array[index] = value
	OP_IINC    OpCode = 0x84 // [u1 slot, s1 delta]
	OP_WIDE    OpCode = 0xc4 // Widen the following local-slot instruction
)

// Operand stack
const (
	OP_POP    OpCode = 0x57
	OP_POP2   OpCode = 0x58
	OP_DUP    OpCode = 0x59
	OP_DUP_X1 OpCode = 0x5a
	OP_DUP_X2 OpCode = 0x5b
	OP_DUP2   OpCode = 0x5c
	OP_SWAP   OpCode = 0x5f
)

// Control flow
const (
	OP_IFEQ      OpCode = 0x99 // Pop int; branch if zero [s2 offset]
	OP_IFNE      OpCode = 0x9a // Pop int; branch if non-zero [s2 offset]
	OP_IF_ACMPEQ OpCode = 0xa5 // Pop b, a; branch if a == b [s2 offset]
	OP_IF_ACMPNE OpCode = 0xa6 // Pop b, a; branch if a != b [s2 offset]
	OP_GOTO      OpCode = 0xa7 // [s2 offset]
	OP_IRETURN   OpCode = 0xac
	OP_ARETURN   OpCode = 0xb0
	OP_RETURN    OpCode = 0xb1
	OP_IFNULL    OpCode = 0xc6 // [s2 offset]
	OP_IFNONNULL OpCode = 0xc7 // [s2 offset]
	OP_GOTO_W    OpCode = 0xc8 // [s4 offset]
	OP_ATHROW    OpCode = 0xbf
)

// Members and objects
const (
	OP_GETSTATIC     OpCode = 0xb2 // [u2 Fieldref]
	OP_PUTSTATIC     OpCode = 0xb3 // [u2 Fieldref]
	OP_GETFIELD      OpCode = 0xb4 // [u2 Fieldref]
	OP_PUTFIELD      OpCode = 0xb5 // [u2 Fieldref]
	OP_INVOKEVIRTUAL OpCode = 0xb6 // [u2 Methodref]
	OP_INVOKESPECIAL OpCode = 0xb7 // [u2 Methodref]
	OP_INVOKESTATIC  OpCode = 0xb8 // [u2 Methodref]
	OP_NEW           OpCode = 0xbb // [u2 Class]
	OP_ANEWARRAY     OpCode = 0xbd // [u2 Class]
	OP_ARRAYLENGTH   OpCode = 0xbe
	OP_CHECKCAST     OpCode = 0xc0 // [u2 Class]
	OP_INSTANCEOF    OpCode = 0xc1 // [u2 Class]
)

// operandKind describes the bytes following an opcode in the code array
type operandKind int

const (
	operandNone operandKind = iota
	operandByte
	operandShort
	operandPool1
	operandPool2
	operandLocal
	operandIinc
	operandBranch
	operandBranchWide
)

// opInfo describes an opcode for the disassembler and the stack-depth pass.
// delta is the fixed stack effect; member instructions compute theirs from
// the referenced descriptor.
type opInfo struct {
	name    string
	operand operandKind
	delta   int
}

var opTable = map[OpCode]opInfo{
	OP_NOP:           {"NOP", operandNone, 0},
	OP_ACONST_NULL:   {"ACONST_NULL", operandNone, 1},
	OP_ICONST_M1:     {"ICONST_M1", operandNone, 1},
	OP_ICONST_0:      {"ICONST_0", operandNone, 1},
	OP_ICONST_1:      {"ICONST_1", operandNone, 1},
	OP_ICONST_2:      {"ICONST_2", operandNone, 1},
	OP_ICONST_3:      {"ICONST_3", operandNone, 1},
	OP_ICONST_4:      {"ICONST_4", operandNone, 1},
	OP_ICONST_5:      {"ICONST_5", operandNone, 1},
	OP_BIPUSH:        {"BIPUSH", operandByte, 1},
	OP_SIPUSH:        {"SIPUSH", operandShort, 1},
	OP_LDC:           {"LDC", operandPool1, 1},
	OP_LDC_W:         {"LDC_W", operandPool2, 1},
	OP_ILOAD:         {"ILOAD", operandLocal, 1},
	OP_ALOAD:         {"ALOAD", operandLocal, 1},
	OP_AALOAD:        {"AALOAD", operandNone, -1},
	OP_ISTORE:        {"ISTORE", operandLocal, -1},
	OP_ASTORE:        {"ASTORE", operandLocal, -1},
	OP_AASTORE:       {"AASTORE", operandNone, -3},
	OP_IINC:          {"IINC", operandIinc, 0},
	OP_POP:           {"POP", operandNone, -1},
	OP_POP2:          {"POP2", operandNone, -2},
	OP_DUP:           {"DUP", operandNone, 1},
	OP_DUP_X1:        {"DUP_X1", operandNone, 1},
	OP_DUP_X2:        {"DUP_X2", operandNone, 1},
	OP_DUP2:          {"DUP2", operandNone, 2},
	OP_SWAP:          {"SWAP", operandNone, 0},
	OP_IFEQ:          {"IFEQ", operandBranch, -1},
	OP_IFNE:          {"IFNE", operandBranch, -1},
	OP_IF_ACMPEQ:     {"IF_ACMPEQ", operandBranch, -2},
	OP_IF_ACMPNE:     {"IF_ACMPNE", operandBranch, -2},
	OP_GOTO:          {"GOTO", operandBranch, 0},
	OP_IRETURN:       {"IRETURN", operandNone, -1},
	OP_ARETURN:       {"ARETURN", operandNone, -1},
	OP_RETURN:        {"RETURN", operandNone, 0},
	OP_IFNULL:        {"IFNULL", operandBranch, -1},
	OP_IFNONNULL:     {"IFNONNULL", operandBranch, -1},
	OP_GOTO_W:        {"GOTO_W", operandBranchWide, 0},
	OP_ATHROW:        {"ATHROW", operandNone, -1},
	OP_GETSTATIC:     {"GETSTATIC", operandPool2, 0},
	OP_PUTSTATIC:     {"PUTSTATIC", operandPool2, 0},
	OP_GETFIELD:      {"GETFIELD", operandPool2, 0},
	OP_PUTFIELD:      {"PUTFIELD", operandPool2, 0},
	OP_INVOKEVIRTUAL: {"INVOKEVIRTUAL", operandPool2, 0},
	OP_INVOKESPECIAL: {"INVOKESPECIAL", operandPool2, 0},
	OP_INVOKESTATIC:  {"INVOKESTATIC", operandPool2, 0},
	OP_NEW:           {"NEW", operandPool2, 1},
	OP_ANEWARRAY:     {"ANEWARRAY", operandPool2, 0},
	OP_ARRAYLENGTH:   {"ARRAYLENGTH", operandNone, 0},
	OP_CHECKCAST:     {"CHECKCAST", operandPool2, 0},
	OP_INSTANCEOF:    {"INSTANCEOF", operandPool2, 0},
}

// String returns the mnemonic for an opcode
func (op OpCode) String() string {
	if info, ok := opTable[op]; ok {
		return info.name
	}
	return "OP_UNKNOWN"
}

// isTerminal reports whether control never falls through to the next instruction
func (op OpCode) isTerminal() bool {
	switch op {
	case OP_GOTO, OP_GOTO_W, OP_RETURN, OP_ARETURN, OP_IRETURN, OP_ATHROW:
		return true
	}
	return false
}

// negated maps each conditional branch to the one taken in the opposite case
var negated = map[OpCode]OpCode{
	OP_IFEQ:      OP_IFNE,
	OP_IFNE:      OP_IFEQ,
	OP_IF_ACMPEQ: OP_IF_ACMPNE,
	OP_IF_ACMPNE: OP_IF_ACMPEQ,
	OP_IFNULL:    OP_IFNONNULL,
	OP_IFNONNULL: OP_IFNULL,
}

// Access flags
const (
	ACC_PUBLIC    uint16 = 0x0001
	ACC_PRIVATE   uint16 = 0x0002
	ACC_PROTECTED uint16 = 0x0004
	ACC_STATIC    uint16 = 0x0008
	ACC_FINAL     uint16 = 0x0010
	ACC_SUPER     uint16 = 0x0020
	ACC_SYNTHETIC uint16 = 0x1000
)
