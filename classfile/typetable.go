package classfile

// TypeTableEntry is one row of the per-class type table that the frame
// engine's OBJECT and UNINITIALIZED frame-type tags index into (spec.md
// §3, §6). Object rows carry an internal class name; uninitialized rows
// additionally carry the byte offset of the NEW instruction that produced
// them, so two `new Foo` sites in the same method stay distinguishable.
type TypeTableEntry struct {
	InternalName string
	NewOffset    int // -1 for plain OBJECT rows, the NEW instruction's offset otherwise
}

// ClassHierarchy resolves the nearest common supertype of two classes,
// the oracle getMergedType's lattice join ultimately calls out to (spec.md
// §4.3). A typical implementation walks a ClassLoader-style search path;
// asmgo only specifies the contract, per spec.md §1's scope cut.
type ClassHierarchy interface {
	// CommonSuperclass returns the internal name of the most specific
	// common ancestor of a and b (both internal names of class or
	// interface types). Implementations usually fall back to
	// "java/lang/Object" rather than failing.
	CommonSuperclass(a, b string) (string, error)
}

// AddType interns a reference type by internal name into the type table
// and returns its index, used by CHECKCAST/ANEWARRAY/MULTIANEWARRAY and
// by merge_type's reference-lattice join.
func (p *ConstantPool) AddType(internalName string) uint16 {
	for i, t := range p.typeTable {
		if t.NewOffset < 0 && t.InternalName == internalName {
			return uint16(i)
		}
	}
	p.typeTable = append(p.typeTable, TypeTableEntry{InternalName: internalName, NewOffset: -1})
	return uint16(len(p.typeTable) - 1)
}

// AddUninitializedType interns a NEW-site-specific uninitialized type.
// Each call allocates a fresh row even if internalName repeats, because
// two `new Foo` sites must remain distinguishable (spec.md §8 scenario 5).
func (p *ConstantPool) AddUninitializedType(internalName string, newOffset int) uint16 {
	p.typeTable = append(p.typeTable, TypeTableEntry{InternalName: internalName, NewOffset: newOffset})
	return uint16(len(p.typeTable) - 1)
}

// TypeTableEntryAt returns the type table row at idx.
func (p *ConstantPool) TypeTableEntryAt(idx uint16) TypeTableEntry {
	return p.typeTable[idx]
}

// GetMergedType returns the type-table index of the common supertype of
// the two indexed reference rows, memoizing the result so repeated merges
// of the same pair across fix-point iterations cost one hierarchy lookup.
func (p *ConstantPool) GetMergedType(hierarchy ClassHierarchy, a, b uint16) (uint16, error) {
	key := mergeKey{a, b}
	if a > b {
		key = mergeKey{b, a}
	}
	if idx, ok := p.mergedCache[key]; ok {
		return idx, nil
	}
	ta, tb := p.typeTable[a].InternalName, p.typeTable[b].InternalName
	super, err := hierarchy.CommonSuperclass(ta, tb)
	if err != nil {
		return 0, err
	}
	idx := p.AddType(super)
	if p.mergedCache == nil {
		p.mergedCache = map[mergeKey]uint16{}
	}
	p.mergedCache[key] = idx
	return idx, nil
}

type mergeKey struct{ a, b uint16 }
