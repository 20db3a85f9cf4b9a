package bytecode

import "github.com/go-asmgo/asmgo/classfile"

// runResizePass rewrites every pseudo-opcode left behind by overflowed
// short branches into its real wide form, growing the code buffer in
// place and shifting every label position and branch-site offset that
// falls after each insertion point. It iterates until no pseudo-opcode
// remains, since widening one branch can itself push another branch's
// offset past the i16 boundary (spec.md §4.2).
func (mw *MethodWriter) runResizePass() error {
	for {
		pos, found := findPseudoOpcode(mw.code.Bytes())
		if !found {
			// Re-check every short branch against the new positions.
			mw.repatchAllBranchSites()
			for _, b := range mw.branchSites {
				if off := b.target.Position - b.source; b.width == 2 && (off < -1<<15 || off > 1<<15-1) {
					pseudo, _ := classfile.ToPseudo(classfile.Opcode(mw.code.byteAt(b.source)))
					mw.code.putByteAt(b.source, byte(pseudo))
					pos, found = b.source, true
				}
			}
			if !found {
				return nil
			}
		}
		if err := mw.widenAt(pos); err != nil {
			return err
		}
	}
}

// findPseudoOpcode scans the instruction stream for the first byte offset
// holding an opcode in the reserved pseudo band, skipping correctly over
// variable-length instructions so operand bytes are never misread as
// opcodes.
func findPseudoOpcode(code []byte) (int, bool) {
	pos := 0
	for pos < len(code) {
		op := classfile.Opcode(code[pos])
		if op >= classfile.PseudoOpcodeLow && op <= classfile.PseudoOpcodeHigh {
			return pos, true
		}
		pos += instructionLength(code, pos)
	}
	return 0, false
}

// instructionLength returns the byte length of the instruction starting
// at pos, including its opcode byte.
func instructionLength(code []byte, pos int) int {
	op := classfile.Opcode(code[pos])
	switch op {
	case classfile.TABLESWITCH:
		pad := (4 - ((pos + 1) & 3)) & 3
		base := pos + 1 + pad
		low := int32(beI32(code, base+4))
		high := int32(beI32(code, base+8))
		return 1 + pad + 4 + 4 + 4 + int(high-low+1)*4
	case classfile.LOOKUPSWITCH:
		pad := (4 - ((pos + 1) & 3)) & 3
		base := pos + 1 + pad
		npairs := int(beI32(code, base+4))
		return 1 + pad + 4 + 4 + npairs*8
	case classfile.WIDE:
		inner := classfile.Opcode(code[pos+1])
		if inner == classfile.IINC {
			return 6
		}
		return 4
	}
	if op >= classfile.PseudoOpcodeLow && op <= classfile.PseudoOpcodeHigh {
		return 3
	}
	return int(classfile.InsnLength[op])
}

func beI32(code []byte, pos int) int32 {
	return int32(code[pos])<<24 | int32(code[pos+1])<<16 | int32(code[pos+2])<<8 | int32(code[pos+3])
}

// widenAt rewrites the pseudo-opcode instruction at pos into its real
// wide form, inserting the extra bytes right after the original 3-byte
// placeholder and shifting every label/branch-site position at or past
// that insertion point.
func (mw *MethodWriter) widenAt(pos int) error {
	pseudo := classfile.Opcode(mw.code.byteAt(pos))
	real, ok := classfile.FromPseudo(pseudo)
	if !ok {
		return illegalState("unrecognized pseudo-opcode during resize")
	}

	target := mw.branchSiteTargetAt(pos + 1)
	insertPoint := pos + 3

	if real == classfile.GOTO || real == classfile.JSR {
		growth := 2
		mw.code.insertAt(insertPoint, growth)
		mw.code.putByteAt(pos, byte(widenedForm(real)))
		mw.shiftFrom(insertPoint, growth)
		mw.updateBranchSite(pos+1, pos+1, 4, target)
		mw.code.putIntAt(pos+1, 0) // re-patched in repatchAllBranchSites
		return nil
	}

	negated, ok := classfile.NegatedCondition(real)
	if !ok {
		return illegalState("conditional pseudo-opcode has no negation")
	}
	growth := 5
	mw.code.insertAt(insertPoint, growth)
	mw.code.putByteAt(pos, byte(negated))
	mw.code.putShortAt(pos+1, 8) // skip over the GOTO_W below when the negated test holds
	mw.code.putByteAt(pos+3, byte(classfile.GOTO_W))
	mw.shiftFrom(insertPoint, growth)
	mw.updateBranchSite(pos+1, pos+4, 4, target)
	mw.code.putIntAt(pos+4, 0)
	return nil
}

func widenedForm(real classfile.Opcode) classfile.Opcode {
	if real == classfile.JSR {
		return classfile.JSR_W
	}
	return classfile.GOTO_W
}

// branchSiteTargetAt finds the recorded target label for the branch
// whose patch slot begins at patchPos, so widening can preserve it.
func (mw *MethodWriter) branchSiteTargetAt(patchPos int) *Label {
	for i := range mw.branchSites {
		if mw.branchSites[i].patchPos == patchPos {
			return mw.branchSites[i].target
		}
	}
	return nil
}

// updateBranchSite replaces the branch site previously keyed by oldPatchPos
// with its new source/patchPos/width, preserving target.
func (mw *MethodWriter) updateBranchSite(oldPatchPos, newPatchPos, width int, target *Label) {
	for i := range mw.branchSites {
		if mw.branchSites[i].patchPos == oldPatchPos && mw.branchSites[i].target == target {
			mw.branchSites[i] = branchSite{source: newPatchPos - 1, patchPos: newPatchPos, width: width, target: target}
			return
		}
	}
}

// shiftFrom adds growth to every label position and branch-site
// source/patchPos at or beyond insertPoint, and to every NEW-site offset
// key recorded in pendingNew.
func (mw *MethodWriter) shiftFrom(insertPoint, growth int) {
	for _, l := range mw.allLabels {
		l = l.canonical()
		if l.Position >= insertPoint {
			l.Position += growth
		}
	}
	for i := range mw.branchSites {
		if mw.branchSites[i].source >= insertPoint {
			mw.branchSites[i].source += growth
		}
		if mw.branchSites[i].patchPos >= insertPoint {
			mw.branchSites[i].patchPos += growth
		}
	}
	shifted := make(map[int]uint16, len(mw.pendingNew))
	for offset, idx := range mw.pendingNew {
		if offset >= insertPoint {
			offset += growth
		}
		shifted[offset] = idx
	}
	mw.pendingNew = shifted
}

// repatchAllBranchSites recomputes every recorded branch's offset from
// its (now final) source position and target label, overwriting whatever
// stale value insertions left behind.
func (mw *MethodWriter) repatchAllBranchSites() {
	for _, b := range mw.branchSites {
		if b.target == nil {
			continue
		}
		offset := b.target.Position - b.source
		if b.width == 2 {
			mw.code.putShortAt(b.patchPos, int16(offset))
		} else {
			mw.code.putIntAt(b.patchPos, int32(offset))
		}
	}
}
