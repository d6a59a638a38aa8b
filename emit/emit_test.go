package emit

import (
	"testing"

	"jyxal/classfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listing ends every method, serializes the class and returns the decoded
// instructions of the named method
func listing(t *testing.T, cw *classfile.ClassWriter, name string) []string {
	t.Helper()
	for _, mw := range cw.Methods() {
		require.NoError(t, mw.End())
	}
	data, err := cw.Bytes()
	require.NoError(t, err)
	c, err := classfile.Parse(data)
	require.NoError(t, err)
	m := c.Method(name)
	require.NotNil(t, m)
	insns, err := c.Decode(m)
	require.NoError(t, err)
	out := make([]string, len(insns))
	for i, in := range insns {
		out[i] = in.String()
	}
	return out
}

func newTestClass() *classfile.ClassWriter {
	return classfile.NewClassWriter(classfile.ACC_PUBLIC|classfile.ACC_SUPER, "test/Emit", ObjectClass)
}

func TestPushNumberSelectsShortestForm(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{-1, "ICONST_M1"},
		{0, "ICONST_0"},
		{5, "ICONST_5"},
		{6, "BIPUSH 6"},
		{-128, "BIPUSH -128"},
		{127, "BIPUSH 127"},
		{128, "SIPUSH 128"},
		{-32768, "SIPUSH -32768"},
		{32768, "LDC 32768"},
	}
	for _, tt := range tests {
		cw := newTestClass()
		mw := cw.NewMethod(classfile.ACC_STATIC, "m", classfile.VoidDesc)
		PushNumber(mw, tt.n)
		mw.Insn(classfile.OP_POP)
		mw.Insn(classfile.OP_RETURN)
		got := listing(t, cw, "m")
		assert.Equal(t, tt.want, got[0], "PushNumber(%d)", tt.n)
	}
}

func TestAddBigComplex(t *testing.T) {
	cw := newTestClass()
	mw := cw.NewMethod(classfile.ACC_STATIC, "m", classfile.VoidDesc)
	AddBigComplex(mw, "42")
	mw.Insn(classfile.OP_POP)
	mw.Insn(classfile.OP_RETURN)

	assert.Equal(t, []string{
		"NEW java/math/BigDecimal",
		"DUP",
		`LDC "42"`,
		"INVOKESPECIAL java/math/BigDecimal.<init>(Ljava/lang/String;)V",
		"INVOKESTATIC runtime/math/BigComplex.valueOf(Ljava/math/BigDecimal;)Lruntime/math/BigComplex;",
		"POP",
		"RETURN",
	}, listing(t, cw, "m"))
	assert.Equal(t, 3, mw.MaxStack())
}

func TestAddComplex(t *testing.T) {
	cw := newTestClass()
	mw := cw.NewMethod(classfile.ACC_STATIC, "m", classfile.VoidDesc)
	AddComplex(mw, "3", "4")
	mw.Insn(classfile.OP_POP)
	mw.Insn(classfile.OP_RETURN)

	got := listing(t, cw, "m")
	assert.Equal(t, `LDC "3"`, got[2])
	assert.Equal(t, `LDC "4"`, got[6])
	assert.Equal(t, "INVOKESTATIC runtime/math/BigComplex.valueOf(Ljava/math/BigDecimal;Ljava/math/BigDecimal;)Lruntime/math/BigComplex;", got[8])
	// first decimal stays on the stack while the second is built
	assert.Equal(t, 4, mw.MaxStack())
}

func TestLoadIndexed(t *testing.T) {
	cw := newTestClass()
	mw := cw.NewMethod(classfile.ACC_PUBLIC|classfile.ACC_STATIC, "main", classfile.MainDesc)
	LoadIndexed(mw, ArgsSlot, 1)
	mw.Insn(classfile.OP_POP)
	mw.Insn(classfile.OP_RETURN)

	assert.Equal(t, []string{"ALOAD 0", "ICONST_1", "AALOAD", "POP", "RETURN"}, listing(t, cw, "main"))
}

func TestPrintTop(t *testing.T) {
	cw := newTestClass()
	mw := cw.NewMethod(classfile.ACC_STATIC, "m", classfile.VoidDesc)
	Placeholder(mw)
	PrintTop(mw)
	mw.Insn(classfile.OP_RETURN)

	assert.Equal(t, []string{
		"ACONST_NULL",
		"GETSTATIC java/lang/System.out:Ljava/io/PrintStream;",
		"SWAP",
		"INVOKEVIRTUAL java/io/PrintStream.println(Ljava/lang/Object;)V",
		"RETURN",
	}, listing(t, cw, "m"))
}

func TestMethodContextCounter(t *testing.T) {
	cw := newTestClass()
	mc := NewMethodContext(cw.NewMethod(classfile.ACC_STATIC, "m", classfile.VoidDesc), false)
	assert.False(t, mc.IsEntry())
	assert.Equal(t, StackSlot, mc.StackVar())

	Placeholder(mc.MethodWriter)
	mc.MarkProduced()
	assert.Equal(t, 1, mc.Depth())
	mc.Insn(classfile.OP_POP)
	require.NoError(t, mc.MarkConsumed())
	assert.Equal(t, 0, mc.Depth())
	mc.Insn(classfile.OP_RETURN)

	assert.Equal(t, []string{
		"ICONST_0",
		"ISTORE 1",
		"ACONST_NULL",
		"IINC 1 1",
		"POP",
		"IINC 1 -1",
		"RETURN",
	}, listing(t, cw, "m"))
	assert.Equal(t, 2, mc.MaxLocals())
}

func TestMarkConsumedWithoutProduced(t *testing.T) {
	cw := newTestClass()
	mc := NewMethodContext(cw.NewMethod(classfile.ACC_STATIC, "m", classfile.VoidDesc), false)
	err := mc.MarkConsumed()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScopeImbalance)
	assert.Equal(t, 0, mc.Depth())

	mc.MarkProduced()
	assert.ErrorIs(t, mc.MarkConsumedN(2), ErrScopeImbalance)
}

func TestContextStackIsLIFO(t *testing.T) {
	cw := newTestClass()
	var s ContextStack
	assert.Nil(t, s.Peek())
	assert.Nil(t, s.Pop())

	outer := NewMethodContext(cw.NewMethod(classfile.ACC_STATIC, "outer", classfile.VoidDesc), true)
	inner := NewMethodContext(cw.NewMethod(classfile.ACC_STATIC, "inner", classfile.VoidDesc), false)
	s.Push(outer)
	s.Push(inner)
	assert.Equal(t, 2, s.Len())
	assert.Same(t, inner, s.Peek())
	assert.Same(t, inner, s.Pop())
	assert.Same(t, outer, s.Peek())
	assert.Same(t, outer, s.Pop())
	assert.Equal(t, 0, s.Len())
}
