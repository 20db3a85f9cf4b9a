package classfile

import "math"

// AppendTo serializes the pool as a constant_pool_count-prefixed table
// (JVMS 4.4) onto buf and returns the result. Placeholder slots left by
// two-slot (long/double) entries are skipped, matching the reader's
// slot-advance-by-2 behavior.
func (p *ConstantPool) AppendTo(buf []byte) []byte {
	count := len(p.entries)
	buf = append(buf, byte(count>>8), byte(count))
	for i := 1; i < len(p.entries); i++ {
		e := p.entries[i]
		if e.Tag == 0 {
			continue // placeholder left by a preceding long/double
		}
		buf = append(buf, byte(e.Tag))
		switch e.Tag {
		case TagUtf8:
			buf = encodeModifiedUTF8(buf, e.Utf8)
		case TagInteger:
			buf = appendU32(buf, uint32(e.Int32))
		case TagFloat:
			buf = appendU32(buf, math.Float32bits(e.Float32))
		case TagLong:
			buf = appendU64(buf, uint64(e.Int64))
		case TagDouble:
			buf = appendU64(buf, math.Float64bits(e.Float64))
		case TagClass, TagModule, TagPackage:
			buf = appendU16(buf, e.NameIndex)
		case TagString:
			buf = appendU16(buf, e.StringIndex)
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			buf = appendU16(buf, e.ClassIndex)
			buf = appendU16(buf, e.NameAndTypeIdx)
		case TagNameAndType:
			buf = appendU16(buf, e.NameIndex)
			buf = appendU16(buf, e.DescriptorIndex)
		case TagMethodHandle:
			buf = append(buf, e.ReferenceKind)
			buf = appendU16(buf, e.ReferenceIndex)
		case TagMethodType:
			buf = appendU16(buf, e.DescriptorIndex)
		case TagDynamic, TagInvokeDynamic:
			buf = appendU16(buf, e.BootstrapMethod)
			buf = appendU16(buf, e.NameAndTypeIdx)
		}
	}
	return buf
}

func appendU16(buf []byte, v uint16) []byte { return append(buf, byte(v>>8), byte(v)) }

func appendU32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendU64(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
