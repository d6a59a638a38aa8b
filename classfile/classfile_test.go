package classfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantPoolDeduplicates(t *testing.T) {
	p := NewConstantPool()
	a := p.String("hello")
	b := p.String("hello")
	assert.Equal(t, a, b)

	// String + its Utf8
	assert.Equal(t, 3, p.Len())

	m1 := p.Methodref("runtime/OtherMethods", "truthValue", "(Ljava/lang/Object;)Z")
	m2 := p.Methodref("runtime/OtherMethods", "truthValue", "(Ljava/lang/Object;)Z")
	assert.Equal(t, m1, m2)
	assert.NotEqual(t, p.Class("java/lang/Object"), p.Class("java/lang/String"))
}

func TestModifiedUTF8(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"a", []byte{'a'}},
		{"\x00", []byte{0xC0, 0x80}},
		{"°", []byte{0xC2, 0xB0}},
		{"⟨", []byte{0xE2, 0x9F, 0xA8}},
		// U+1F600 becomes a surrogate pair, three bytes each
		{"\U0001F600", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
	}
	for _, tt := range tests {
		got := EncodeModifiedUTF8(tt.in)
		assert.Equal(t, tt.want, got, "encode %q", tt.in)
		back, err := DecodeModifiedUTF8(got)
		require.NoError(t, err)
		assert.Equal(t, tt.in, back)
	}
}

func TestDescriptorSlots(t *testing.T) {
	assert.Equal(t, 1, argSlots(MainDesc))
	assert.Equal(t, 0, returnSlots(MainDesc))
	assert.Equal(t, 2, argSlots("(Ljava/math/BigDecimal;Ljava/math/BigDecimal;)Lruntime/math/BigComplex;"))
	assert.Equal(t, 1, returnSlots("(Ljava/lang/Object;)Z"))
	assert.Equal(t, 6, argSlots("(JI[[Ljava/lang/String;D)V"))
	assert.Equal(t, "(Ljava/lang/Object;Ljava/lang/Object;)V", MethodDescriptor("V", ObjectDesc, ObjectDesc))
}

func TestPushPopMaxStack(t *testing.T) {
	cw := NewClassWriter(ACC_PUBLIC, "test/Stack", "java/lang/Object")
	mw := cw.NewMethod(ACC_STATIC, "m", VoidDesc)
	mw.Insn(OP_ACONST_NULL)
	mw.Insn(OP_DUP)
	mw.Insn(OP_DUP)
	mw.Insn(OP_POP)
	mw.Insn(OP_POP)
	mw.Insn(OP_POP)
	mw.Insn(OP_RETURN)
	require.NoError(t, mw.End())
	assert.Equal(t, 3, mw.MaxStack())
	assert.Equal(t, 0, mw.MaxLocals())
}

func TestMethodInsnStackEffect(t *testing.T) {
	cw := NewClassWriter(ACC_PUBLIC, "test/Calls", "java/lang/Object")
	mw := cw.NewMethod(ACC_STATIC, "m", VoidDesc)
	mw.TypeInsn(OP_NEW, "java/math/BigDecimal")
	mw.Insn(OP_DUP)
	mw.LdcString("42")
	mw.MethodInsn(OP_INVOKESPECIAL, "java/math/BigDecimal", "<init>", "(Ljava/lang/String;)V")
	mw.Insn(OP_POP)
	mw.Insn(OP_RETURN)
	require.NoError(t, mw.End())
	assert.Equal(t, 3, mw.MaxStack())
}

func TestLoopBranchesArePatched(t *testing.T) {
	cw := NewClassWriter(ACC_PUBLIC, "test/Loop", "java/lang/Object")
	mw := cw.NewMethod(ACC_PUBLIC|ACC_STATIC, "main", MainDesc)
	start, end := NewLabel(), NewLabel()
	mw.Insn(OP_ICONST_0)
	mw.VarInsn(OP_ISTORE, 1)
	mw.Label(start)
	mw.VarInsn(OP_ILOAD, 1)
	mw.JumpInsn(OP_IFEQ, end)
	mw.IincInsn(1, -1)
	mw.JumpInsn(OP_GOTO, start)
	mw.Label(end)
	mw.Insn(OP_RETURN)
	require.NoError(t, mw.End())
	assert.Equal(t, 1, mw.MaxStack())
	assert.Equal(t, 2, mw.MaxLocals())

	data, err := cw.Bytes()
	require.NoError(t, err)
	class, err := Parse(data)
	require.NoError(t, err)

	insns, err := class.Decode(class.Method("main"))
	require.NoError(t, err)
	var gotoIn, ifeq *Instruction
	for i := range insns {
		switch insns[i].Op {
		case OP_GOTO:
			gotoIn = &insns[i]
		case OP_IFEQ:
			ifeq = &insns[i]
		}
	}
	require.NotNil(t, gotoIn)
	require.NotNil(t, ifeq)
	assert.Equal(t, start.Offset(), gotoIn.Target)
	assert.Less(t, gotoIn.Target, gotoIn.Offset, "back-edge")
	assert.Equal(t, end.Offset(), ifeq.Target)
}

func TestLongBranchesAreWidened(t *testing.T) {
	cw := NewClassWriter(ACC_PUBLIC, "test/Long", "java/lang/Object")
	mw := cw.NewMethod(ACC_PUBLIC|ACC_STATIC, "main", MainDesc)
	start, end := NewLabel(), NewLabel()
	mw.Insn(OP_ICONST_0)
	mw.VarInsn(OP_ISTORE, 1)
	mw.Label(start)
	mw.VarInsn(OP_ILOAD, 1)
	mw.JumpInsn(OP_IFEQ, end)
	for i := 0; i < 40000; i++ {
		mw.Insn(OP_NOP)
	}
	mw.JumpInsn(OP_GOTO, start)
	mw.Label(end)
	mw.Insn(OP_RETURN)
	require.NoError(t, mw.End())
	assert.Equal(t, 1, mw.MaxStack())

	data, err := cw.Bytes()
	require.NoError(t, err)
	class, err := Parse(data)
	require.NoError(t, err)
	insns, err := class.Decode(class.Method("main"))
	require.NoError(t, err)

	var ifne *Instruction
	var wide []Instruction
	for i := range insns {
		switch insns[i].Op {
		case OP_IFEQ, OP_GOTO:
			t.Fatalf("short branch left at %d: %s", insns[i].Offset, insns[i])
		case OP_IFNE:
			ifne = &insns[i]
		case OP_GOTO_W:
			wide = append(wide, insns[i])
		}
	}
	require.NotNil(t, ifne)
	require.Len(t, wide, 2)

	// the negated test skips over the wide jump to the exit
	assert.Equal(t, ifne.Offset+3, wide[0].Offset)
	assert.Equal(t, ifne.Offset+8, ifne.Target)
	assert.Equal(t, end.Offset(), wide[0].Target)

	// back-edge reaches the loop head, exit lands just past it
	assert.Equal(t, start.Offset(), wide[1].Target)
	assert.Equal(t, wide[1].Offset+5, end.Offset())
	assert.Equal(t, OP_RETURN, insns[len(insns)-1].Op)
}

func TestUnboundLabelFails(t *testing.T) {
	cw := NewClassWriter(ACC_PUBLIC, "test/Bad", "java/lang/Object")
	mw := cw.NewMethod(ACC_STATIC, "m", VoidDesc)
	mw.JumpInsn(OP_GOTO, NewLabel())
	assert.Error(t, mw.End())
}

func TestBytesRequiresEndedMethods(t *testing.T) {
	cw := NewClassWriter(ACC_PUBLIC, "test/Open", "java/lang/Object")
	cw.NewMethod(ACC_STATIC, "m", VoidDesc)
	_, err := cw.Bytes()
	assert.Error(t, err)
}

func TestDuplicateField(t *testing.T) {
	cw := NewClassWriter(ACC_PUBLIC, "test/Fields", "java/lang/Object")
	require.NoError(t, cw.AddField(ACC_PRIVATE|ACC_STATIC, "x", ObjectDesc))
	assert.Error(t, cw.AddField(ACC_PRIVATE|ACC_STATIC, "x", ObjectDesc))
	assert.True(t, cw.HasField("x"))
}

func TestWideLocals(t *testing.T) {
	cw := NewClassWriter(ACC_PUBLIC, "test/Wide", "java/lang/Object")
	mw := cw.NewMethod(ACC_STATIC, "m", VoidDesc)
	mw.Insn(OP_ICONST_0)
	mw.VarInsn(OP_ISTORE, 300)
	mw.IincInsn(300, 1000)
	mw.Insn(OP_RETURN)
	require.NoError(t, mw.End())
	assert.Equal(t, 301, mw.MaxLocals())

	data, err := cw.Bytes()
	require.NoError(t, err)
	class, err := Parse(data)
	require.NoError(t, err)
	insns, err := class.Decode(class.Method("m"))
	require.NoError(t, err)
	require.Len(t, insns, 4)
	assert.True(t, insns[1].Wide)
	assert.Equal(t, "300", insns[1].Operand)
	assert.Equal(t, "300 1000", insns[2].Operand)
}

func TestRoundTripAndDisassemble(t *testing.T) {
	cw := NewClassWriter(ACC_PUBLIC|ACC_FINAL|ACC_SUPER, "jyxal/Main", "java/lang/Object")
	cw.SourceFile = "prog.vy"
	require.NoError(t, cw.AddField(ACC_PRIVATE|ACC_STATIC, "x", ObjectDesc))

	mw := cw.NewMethod(ACC_PUBLIC|ACC_STATIC, "main", MainDesc)
	mw.FieldInsn(OP_GETSTATIC, "java/lang/System", "out", "Ljava/io/PrintStream;")
	mw.LdcString("héllo ⟨⟩")
	mw.MethodInsn(OP_INVOKEVIRTUAL, "java/io/PrintStream", "println", "(Ljava/lang/Object;)V")
	mw.Insn(OP_RETURN)
	require.NoError(t, mw.End())

	data, err := cw.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xCA, 0xFE, 0xBA, 0xBE}, data[:4])

	class, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "jyxal/Main", class.Name)
	assert.Equal(t, "java/lang/Object", class.SuperName)
	assert.Equal(t, "prog.vy", class.SourceFile)
	assert.Equal(t, MajorVersion, class.Major)
	require.NotNil(t, class.Field("x"))
	main := class.Method("main")
	require.NotNil(t, main)
	assert.Equal(t, 2, main.MaxStack)
	assert.Equal(t, 1, main.MaxLocals)

	listing, err := Disassemble(class)
	require.NoError(t, err)
	assert.Contains(t, listing, `LDC "héllo ⟨⟩"`)
	assert.Contains(t, listing, "GETSTATIC java/lang/System.out:Ljava/io/PrintStream;")
	assert.Contains(t, listing, "INVOKEVIRTUAL java/io/PrintStream.println(Ljava/lang/Object;)V")
	assert.True(t, strings.HasPrefix(listing, "class jyxal/Main extends java/lang/Object"))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte{0xCA, 0xFE})
	assert.Error(t, err)
	_, err = Parse([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	assert.Error(t, err)
}
