package emit

import (
	"math"

	"jyxal/classfile"
)

// PushNumber pushes an int constant with the shortest instruction form
func PushNumber(mw *classfile.MethodWriter, n int) {
	switch {
	case n >= -1 && n <= 5:
		mw.Insn(classfile.OP_ICONST_0 + classfile.OpCode(n))
	case n >= math.MinInt8 && n <= math.MaxInt8:
		mw.IntInsn(classfile.OP_BIPUSH, n)
	case n >= math.MinInt16 && n <= math.MaxInt16:
		mw.IntInsn(classfile.OP_SIPUSH, n)
	default:
		mw.LdcInt(int32(n))
	}
}

// AddBigDecimal pushes new BigDecimal(text)
func AddBigDecimal(mw *classfile.MethodWriter, text string) {
	mw.TypeInsn(classfile.OP_NEW, DecimalClass)
	mw.Insn(classfile.OP_DUP)
	mw.LdcString(text)
	mw.MethodInsn(classfile.OP_INVOKESPECIAL, DecimalClass, "<init>", DecimalCtorDesc)
}

// AddBigComplex pushes the runtime number for the decimal text
func AddBigComplex(mw *classfile.MethodWriter, text string) {
	AddBigDecimal(mw, text)
	mw.MethodInsn(classfile.OP_INVOKESTATIC, ComplexClass, ComplexFactory, NumberFactoryDesc)
}

// AddComplex pushes the runtime complex number re + im*i
func AddComplex(mw *classfile.MethodWriter, re, im string) {
	AddBigDecimal(mw, re)
	AddBigDecimal(mw, im)
	mw.MethodInsn(classfile.OP_INVOKESTATIC, ComplexClass, ComplexFactory, ComplexFactoryDesc)
}

// LoadIndexed pushes array[index] where the array is in a local slot
func LoadIndexed(mw *classfile.MethodWriter, arraySlot, index int) {
	mw.VarInsn(classfile.OP_ALOAD, arraySlot)
	PushNumber(mw, index)
	mw.Insn(classfile.OP_AALOAD)
}

// PrintTop pops the top value and prints it on standard output
func PrintTop(mw *classfile.MethodWriter) {
	mw.FieldInsn(classfile.OP_GETSTATIC, SystemClass, StdoutField, PrintStreamDesc)
	mw.Insn(classfile.OP_SWAP)
	mw.MethodInsn(classfile.OP_INVOKEVIRTUAL, PrintStream, PrintlnName, PrintlnDesc)
}

// TruthValue replaces the top value with its language truth value
func TruthValue(mw *classfile.MethodWriter) {
	mw.MethodInsn(classfile.OP_INVOKESTATIC, TruthClass, TruthName, TruthDesc)
}

// Placeholder pushes the "no result yet" value
func Placeholder(mw *classfile.MethodWriter) {
	mw.Insn(classfile.OP_ACONST_NULL)
}
