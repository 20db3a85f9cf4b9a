package bytecode

// ByteVector is an append-only byte sink with primitive writers and
// patch-by-offset access (spec.md §2). Growth is by doubling, matching
// the teacher's append-heavy encoder style and the §5 resource model's
// growth-by-doubling requirement.
type ByteVector struct {
	data []byte
}

// NewByteVector returns an empty vector with the given initial capacity hint.
func NewByteVector(capacityHint int) *ByteVector {
	if capacityHint <= 0 {
		capacityHint = 64
	}
	return &ByteVector{data: make([]byte, 0, capacityHint)}
}

// Len returns the number of bytes written so far.
func (v *ByteVector) Len() int { return len(v.data) }

// Bytes returns the backing slice. Callers must not retain it across
// further writes to v, since growth may reallocate.
func (v *ByteVector) Bytes() []byte { return v.data }

// PutByte appends a single byte.
func (v *ByteVector) PutByte(b byte) *ByteVector {
	v.data = append(v.data, b)
	return v
}

// PutShort appends a big-endian u16.
func (v *ByteVector) PutShort(s int) *ByteVector {
	v.data = append(v.data, byte(s>>8), byte(s))
	return v
}

// PutInt appends a big-endian u32.
func (v *ByteVector) PutInt(i int) *ByteVector {
	v.data = append(v.data, byte(i>>24), byte(i>>16), byte(i>>8), byte(i))
	return v
}

// PutLong appends a big-endian u64.
func (v *ByteVector) PutLong(l int64) *ByteVector {
	v.data = append(v.data,
		byte(l>>56), byte(l>>48), byte(l>>40), byte(l>>32),
		byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
	return v
}

// PutBytes appends raw bytes verbatim.
func (v *ByteVector) PutBytes(b []byte) *ByteVector {
	v.data = append(v.data, b...)
	return v
}

// putShortAt overwrites the 2 bytes at pos in place, used by the label
// resolve protocol to back-patch a forward reference.
func (v *ByteVector) putShortAt(pos int, s int16) {
	v.data[pos] = byte(s >> 8)
	v.data[pos+1] = byte(s)
}

// putByteAt overwrites a single byte at pos in place, used by the label
// resolve protocol to rewrite an opcode into its pseudo-opcode form.
func (v *ByteVector) putByteAt(pos int, b byte) { v.data[pos] = b }

// putIntAt overwrites the 4 bytes at pos in place.
func (v *ByteVector) putIntAt(pos int, i int32) {
	v.data[pos] = byte(i >> 24)
	v.data[pos+1] = byte(i >> 16)
	v.data[pos+2] = byte(i >> 8)
	v.data[pos+3] = byte(i)
}

// byteAt and shortAt read back already-written bytes, used by the resize
// pass to inspect an instruction it is about to rewrite.
func (v *ByteVector) byteAt(pos int) byte { return v.data[pos] }

func (v *ByteVector) shortAt(pos int) uint16 {
	return uint16(v.data[pos])<<8 | uint16(v.data[pos+1])
}

// insertAt grows the vector by inserting n zero bytes at pos, shifting
// everything after pos forward. Used by the resize pass to widen a
// branch instruction in place.
func (v *ByteVector) insertAt(pos, n int) {
	v.data = append(v.data, make([]byte, n)...)
	copy(v.data[pos+n:], v.data[pos:len(v.data)-n])
	for i := 0; i < n; i++ {
		v.data[pos+i] = 0
	}
}
