package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstantPoolInterningDeduplicates(t *testing.T) {
	p := NewConstantPool()
	a := p.AddUtf8("Code")
	b := p.AddUtf8("Code")
	require.Equal(t, a, b, "repeated AddUtf8 of the same string must return the same index")

	c1 := p.AddClass("java/lang/Object")
	c2 := p.AddClass("java/lang/Object")
	require.Equal(t, c1, c2)
}

func TestConstantPoolLongDoubleTakeTwoSlots(t *testing.T) {
	p := NewConstantPool()
	_, err := p.AddConst(int32(1))
	require.NoError(t, err)
	longIdx, err := p.AddConst(int64(2))
	require.NoError(t, err)
	nextIdx, err := p.AddConst(int32(3))
	require.NoError(t, err)

	require.Equal(t, longIdx+2, nextIdx, "a long/double entry must occupy index N and leave N+1 as an unusable placeholder")
}

func TestConstantPoolEncodeDecodeRoundtrip(t *testing.T) {
	p := NewConstantPool()
	classIdx := p.AddClass("Hello")
	p.AddMethodref("Hello", "<init>", "()V")
	intIdx, err := p.AddConst(int32(42))
	require.NoError(t, err)

	buf := p.AppendTo(nil)

	decoded, next, err := Decode(buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(buf), next)
	require.Equal(t, p.Len(), decoded.Len())

	name, err := decoded.Utf8(decoded.Entries()[classIdx].NameIndex)
	require.NoError(t, err)
	require.Equal(t, "Hello", name)

	e, err := decoded.Get(intIdx)
	require.NoError(t, err)
	require.Equal(t, int32(42), e.Int32)
}

func TestGetMergedTypeMemoizesAndCallsHierarchy(t *testing.T) {
	p := NewConstantPool()
	a := p.AddType("java/lang/Integer")
	b := p.AddType("java/lang/String")

	calls := 0
	h := fakeHierarchy{fn: func(x, y string) (string, error) {
		calls++
		return "java/lang/Object", nil
	}}

	idx1, err := p.GetMergedType(h, a, b)
	require.NoError(t, err)
	idx2, err := p.GetMergedType(h, b, a) // order-independent cache key
	require.NoError(t, err)

	require.Equal(t, idx1, idx2)
	require.Equal(t, 1, calls, "a second merge of the same unordered pair must hit the cache")
	require.Equal(t, "java/lang/Object", p.TypeTableEntryAt(idx1).InternalName)
}

type fakeHierarchy struct {
	fn func(a, b string) (string, error)
}

func (f fakeHierarchy) CommonSuperclass(a, b string) (string, error) { return f.fn(a, b) }
