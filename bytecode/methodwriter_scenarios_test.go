package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-asmgo/asmgo/classfile"
)

// TestScenarioFourTableSwitchPaddingAligns exercises spec.md §8 scenario 4:
// tableswitch's 0-3 padding bytes must always leave its first 4-byte
// operand (the default offset) aligned on a 4-byte boundary measured from
// the start of the method body, whatever the opcode's own offset happens
// to be mod 4.
func TestScenarioFourTableSwitchPaddingAligns(t *testing.T) {
	for leadingNops := 0; leadingNops < 4; leadingNops++ {
		pool := classfile.NewConstantPool()
		mw := NewMethodWriter(pool, nil, classfile.ComputeMaxs, nil)

		for i := 0; i < leadingNops; i++ {
			mw.VisitInsn(classfile.NOP)
		}
		mw.VisitInsn(classfile.ICONST_0)
		opcodePos := mw.code.Len()

		dflt := NewLabel()
		case0 := NewLabel()
		mw.VisitTableSwitchInsn(0, 0, dflt, []*Label{case0})
		require.NoError(t, mw.VisitLabel(dflt))
		require.NoError(t, mw.VisitLabel(case0))
		mw.VisitInsn(classfile.RETURN)

		code, _, _, _, err := mw.Finish(0)
		require.NoError(t, err)

		pad := (4 - ((opcodePos + 1) & 3)) & 3
		operandStart := opcodePos + 1 + pad
		require.Zero(t, operandStart%4, "leadingNops=%d: the default-offset word must land on a 4-byte boundary", leadingNops)

		defaultOffset := beI32(code, operandStart)
		require.Equal(t, int32(dflt.Position-opcodePos), defaultOffset)

		require.Equal(t, int32(0), beI32(code, operandStart+4), "min")
		require.Equal(t, int32(0), beI32(code, operandStart+8), "max")

		caseOffset := beI32(code, operandStart+12)
		require.Equal(t, int32(case0.Position-opcodePos), caseOffset)
	}
}

// TestScenarioFiveTwoNewSitesCarryDistinctUninitializedTags exercises
// spec.md §8 scenario 5: two NEW instructions targeting the same class at
// different code offsets must produce distinct UNINITIALIZED tags, and
// each INVOKESPECIAL <init> only resolves the allocation site it actually
// consumed.
func TestScenarioFiveTwoNewSitesCarryDistinctUninitializedTags(t *testing.T) {
	pool := classfile.NewConstantPool()
	mw := NewMethodWriter(pool, nil, classfile.ComputeMaxs, []frameType{})

	pos1 := mw.code.Len()
	mw.VisitTypeInsn(classfile.NEW, "Foo")
	mw.VisitInsn(classfile.DUP)
	mw.VisitMethodInsn(classfile.INVOKESPECIAL, "Foo", "<init>", "()V", false)
	mw.VisitVarInsn(classfile.ASTORE, 0)

	pos2 := mw.code.Len()
	mw.VisitTypeInsn(classfile.NEW, "Foo")
	mw.VisitInsn(classfile.DUP)
	mw.VisitMethodInsn(classfile.INVOKESPECIAL, "Foo", "<init>", "()V", false)
	mw.VisitVarInsn(classfile.ASTORE, 1)
	mw.VisitInsn(classfile.RETURN)

	first := uninitializedType(mw.pendingNew[pos1])
	second := uninitializedType(mw.pendingNew[pos2])

	require.NotEqual(t, first, second, "two NEW sites for the same class must carry distinct UNINITIALIZED tags")
	require.True(t, isUninitialized(first))
	require.True(t, isUninitialized(second))

	require.Len(t, mw.entry.initializations, 4)
	require.Equal(t, first, mw.entry.initializations[0])
	require.Equal(t, second, mw.entry.initializations[2])
	require.NotEqual(t, mw.entry.initializations[1], mw.entry.initializations[0])
}
