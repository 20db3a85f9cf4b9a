package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-asmgo/asmgo/classfile"
)

func TestScenarioOneConstantReturnMaxStack(t *testing.T) {
	pool := classfile.NewConstantPool()
	mw := NewMethodWriter(pool, nil, classfile.ComputeMaxs, nil)

	mw.VisitInsn(classfile.ICONST_1)
	mw.VisitInsn(classfile.IRETURN)

	code, maxStack, maxLocals, smt, err := mw.Finish(0)
	require.NoError(t, err)
	require.Equal(t, 2, len(code))
	require.Equal(t, 1, maxStack)
	require.Equal(t, 0, maxLocals)
	require.Nil(t, smt)
}

// TestScenarioTwoConstructorReplacesUninitializedThis exercises the
// UNINITIALIZED_THIS -> OBJECT substitution a successful <init> call
// performs (spec.md §8 scenario 2). A single-block constructor body never
// gets its own StackMapTable entry (the entry frame is implicit), so the
// assertion is made directly against resolveLocals' output rather than the
// encoded StackMapTable bytes.
func TestScenarioTwoConstructorReplacesUninitializedThis(t *testing.T) {
	pool := classfile.NewConstantPool()
	mw := NewMethodWriter(pool, nil, classfile.ComputeFrames, []frameType{ftUninitializedThis})

	mw.VisitVarInsn(classfile.ALOAD, 0)
	mw.VisitMethodInsn(classfile.INVOKESPECIAL, "java/lang/Object", "<init>", "()V", false)
	mw.VisitInsn(classfile.RETURN)

	_, _, _, _, err := mw.Finish(1)
	require.NoError(t, err)

	require.Equal(t, []frameType{ftUninitializedThis}, mw.entry.inputLocals)
	resolved := resolveLocals(mw.entry)
	require.Len(t, resolved, 1)
	require.NotEqual(t, ftUninitializedThis, resolved[0], "local 0 must no longer read as UNINITIALIZED_THIS after <init> returns")
	require.True(t, isReference(resolved[0]))
	require.False(t, isUninitialized(resolved[0]))
}

func TestScenarioSixJSRRejectedUnderComputeFrames(t *testing.T) {
	pool := classfile.NewConstantPool()
	mw := NewMethodWriter(pool, nil, classfile.ComputeFrames, nil)

	target := NewLabel()
	mw.VisitJumpInsn(classfile.JSR, target)
	mw.VisitLabel(target)
	mw.VisitInsn(classfile.RETURN)

	_, _, _, _, err := mw.Finish(0)
	require.ErrorIs(t, err, classfile.ErrUnsupportedConstruct)
}
