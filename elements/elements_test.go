package elements

import (
	"testing"

	"jyxal/classfile"
	"jyxal/emit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T, entry bool) (*classfile.ClassWriter, *emit.MethodContext) {
	t.Helper()
	cw := classfile.NewClassWriter(classfile.ACC_PUBLIC|classfile.ACC_SUPER, "test/Elements", emit.ObjectClass)
	desc := classfile.VoidDesc
	if entry {
		desc = classfile.MainDesc
	}
	return cw, emit.NewMethodContext(cw.NewMethod(classfile.ACC_STATIC, "m", desc), entry)
}

// push puts n counted nulls on the stack
func push(mc *emit.MethodContext, n int) {
	for i := 0; i < n; i++ {
		emit.Placeholder(mc.MethodWriter)
		mc.MarkProduced()
	}
}

// body returns the decoded instructions after the counter setup and the
// n pushes made by push
func body(t *testing.T, cw *classfile.ClassWriter, pushed int) []string {
	t.Helper()
	mw := cw.Methods()[0]
	mw.Insn(classfile.OP_RETURN)
	require.NoError(t, mw.End())
	data, err := cw.Bytes()
	require.NoError(t, err)
	c, err := classfile.Parse(data)
	require.NoError(t, err)
	insns, err := c.Decode(c.Method("m"))
	require.NoError(t, err)
	var out []string
	for _, in := range insns[2+2*pushed:] {
		out = append(out, in.String())
	}
	return out
}

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	for _, key := range []string{"+", ":", "_", "$", ",", "₀", "₁", "ð", "¤", "⁰", "¹", "v+", "∆s", "kA"} {
		assert.True(t, c.Has(key), "missing %q", key)
	}
	assert.False(t, c.Has("v"))
	assert.False(t, c.Has("+v"))

	again, err := Default()
	require.NoError(t, err)
	assert.NotSame(t, c, again)
	assert.Equal(t, c.Keys(), again.Keys())
	assert.Equal(t, c.Len(), len(c.Keys()))
}

func TestDefaultCatalogIsolation(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	c.Register("Q", Print{})
	require.NoError(t, c.LoadYAML([]byte("elements:\n  - {key: \"Z\", method: zed, pops: 0, pushes: 1}\n")))
	assert.True(t, c.Has("Q"))
	assert.True(t, c.Has("Z"))

	fresh, err := Default()
	require.NoError(t, err)
	assert.False(t, fresh.Has("Q"))
	assert.False(t, fresh.Has("Z"))
	assert.Equal(t, c.Len()-2, fresh.Len())
}

func TestCallElement(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	add, ok := c.Lookup("+")
	require.True(t, ok)

	cw, mc := newContext(t, false)
	push(mc, 2)
	require.NoError(t, add.Compile(mc))
	assert.Equal(t, 1, mc.Depth())

	assert.Equal(t, []string{
		"INVOKESTATIC runtime/RuntimeMethods.add(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;",
		"IINC 1 -1",
		"IINC 1 -1",
		"IINC 1 1",
		"RETURN",
	}, body(t, cw, 2))
}

func TestCallElementOwnerOverride(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	e, ok := c.Lookup("∆s")
	require.True(t, ok)
	call := e.(*Call)
	assert.Equal(t, "runtime/math/MathMethods", call.Owner)
	assert.Equal(t, "(Ljava/lang/Object;)Ljava/lang/Object;", call.Descriptor())
}

func TestCallWithoutResult(t *testing.T) {
	call := &Call{Owner: DefaultOwner, Method: "printNoNewline", Pops: 1}
	assert.Equal(t, "(Ljava/lang/Object;)V", call.Descriptor())

	_, mc := newContext(t, false)
	push(mc, 1)
	require.NoError(t, call.Compile(mc))
	assert.Equal(t, 0, mc.Depth())
}

func TestCallNeedsArguments(t *testing.T) {
	_, mc := newContext(t, false)
	push(mc, 1)
	err := (&Call{Owner: DefaultOwner, Method: "add", Pops: 2, Pushes: 1}).Compile(mc)
	assert.ErrorIs(t, err, emit.ErrScopeImbalance)
}

func TestStackOps(t *testing.T) {
	tests := []struct {
		op    StackOp
		need  int
		depth int
		insn  string
	}{
		{Dup, 1, 2, "DUP"},
		{Pop, 1, 0, "POP"},
		{Swap, 2, 2, "SWAP"},
	}
	for _, tt := range tests {
		t.Run(tt.insn, func(t *testing.T) {
			cw, mc := newContext(t, false)
			push(mc, tt.need)
			require.NoError(t, tt.op.Compile(mc))
			assert.Equal(t, tt.depth, mc.Depth())
			assert.Equal(t, tt.insn, body(t, cw, tt.need)[0])

			_, empty := newContext(t, false)
			assert.ErrorIs(t, tt.op.Compile(empty), emit.ErrScopeImbalance)
		})
	}
}

func TestPrintElement(t *testing.T) {
	cw, mc := newContext(t, false)
	push(mc, 1)
	require.NoError(t, Print{}.Compile(mc))
	assert.Equal(t, 0, mc.Depth())
	assert.Equal(t, []string{
		"GETSTATIC java/lang/System.out:Ljava/io/PrintStream;",
		"SWAP",
		"INVOKEVIRTUAL java/io/PrintStream.println(Ljava/lang/Object;)V",
		"IINC 1 -1",
		"RETURN",
	}, body(t, cw, 1))
}

func TestConstants(t *testing.T) {
	cw, mc := newContext(t, false)
	require.NoError(t, NumberConstant("10").Compile(mc))
	require.NoError(t, StringConstant(" ").Compile(mc))
	assert.Equal(t, 2, mc.Depth())

	got := body(t, cw, 0)
	assert.Equal(t, `LDC "10"`, got[2])
	assert.Equal(t, `LDC " "`, got[6])
}

func TestInput(t *testing.T) {
	cw, mc := newContext(t, true)
	require.NoError(t, Input{Index: 1}.Compile(mc))
	assert.Equal(t, []string{"ALOAD 0", "ICONST_1", "AALOAD", "IINC 1 1", "RETURN"}, body(t, cw, 0))

	cw, mc = newContext(t, false)
	require.NoError(t, Input{Index: 0}.Compile(mc))
	assert.Equal(t, []string{"ACONST_NULL", "IINC 1 1", "RETURN"}, body(t, cw, 0))
}

func TestLoadYAMLValidation(t *testing.T) {
	c := NewCatalog()
	c.Register(":", Dup)
	err := c.LoadYAML([]byte(`
elements:
  - {key: "", method: a, pops: 1, pushes: 1}
  - {key: "x", method: "", pops: 1, pushes: 1}
  - {key: "y", method: y, pops: -1, pushes: 1}
  - {key: "z", method: z, pops: 1, pushes: 2}
  - {key: ":", method: dup, pops: 1, pushes: 1}
  - {key: "w", method: w, pops: 1, pushes: 1}
  - {key: "w", method: w2, pops: 1, pushes: 1}
`))
	require.Error(t, err)
	for _, frag := range []string{"missing key", "missing method", "negative pops", "pushes must be 0 or 1", "already registered", "duplicate key"} {
		assert.Contains(t, err.Error(), frag)
	}
	// nothing from a rejected table is registered
	assert.False(t, c.Has("w"))
	assert.Equal(t, 1, c.Len())
}

func TestLoadYAMLDefaultOwner(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.LoadYAML([]byte(`
elements:
  - {key: "+", method: add, pops: 2, pushes: 1}
`)))
	e, ok := c.Lookup("+")
	require.True(t, ok)
	assert.Equal(t, DefaultOwner, e.(*Call).Owner)
}

func TestFuncAdapter(t *testing.T) {
	called := false
	var e Element = Func(func(mc *emit.MethodContext) error {
		called = true
		return nil
	})
	_, mc := newContext(t, false)
	require.NoError(t, e.Compile(mc))
	assert.True(t, called)
}
