package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-asmgo/asmgo/classfile"
)

// TestScenarioThreeForwardBranchOverflowResizesToWideForm exercises
// spec.md §8 scenario 3: a forward GOTO targeting a label far enough away
// that the short (i16) offset overflows must end up as a real GOTO_W, with
// every pseudo-opcode resolved away by the time Finish returns.
func TestScenarioThreeForwardBranchOverflowResizesToWideForm(t *testing.T) {
	pool := classfile.NewConstantPool()
	mw := NewMethodWriter(pool, nil, classfile.ComputeMaxs, nil)

	target := NewLabel()
	mw.VisitJumpInsn(classfile.GOTO, target)

	const filler = 40000
	for i := 0; i < filler; i++ {
		mw.VisitInsn(classfile.NOP)
	}
	require.NoError(t, mw.VisitLabel(target))
	mw.VisitInsn(classfile.RETURN)

	require.True(t, mw.resizeNeeded, "a branch this far forward must overflow the i16 offset and mark a resize")

	code, _, _, _, err := mw.Finish(0)
	require.NoError(t, err)

	require.Equal(t, byte(classfile.GOTO_W), code[0], "the overflowed GOTO must widen to GOTO_W")
	require.Equal(t, 1+4+filler+1, len(code), "GOTO_W's 4-byte operand replaces GOTO's 2-byte one, growing the method by 2 bytes")

	offset := int32(beI32(code, 1))
	require.Equal(t, int32(1+4+filler), offset, "the widened branch must still land exactly on RETURN")

	for pos := 0; pos < len(code); {
		op := classfile.Opcode(code[pos])
		require.Falsef(t, op >= classfile.PseudoOpcodeLow && op <= classfile.PseudoOpcodeHigh, "pseudo-opcode left unresolved at %d", pos)
		pos += instructionLength(code, pos)
	}
}

func TestFindPseudoOpcodeSkipsOperandBytes(t *testing.T) {
	// A pseudo-opcode's numeric value must never be misread out of a
	// preceding instruction's operand bytes.
	code := []byte{byte(classfile.SIPUSH), byte(classfile.PseudoOpcodeLow), 0, byte(classfile.PseudoOpcodeLow), 0, 0}
	pos, found := findPseudoOpcode(code)
	require.True(t, found)
	require.Equal(t, 3, pos)
}
