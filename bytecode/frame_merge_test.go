package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-asmgo/asmgo/classfile"
)

type fakeHierarchy struct{ super string }

func (f fakeHierarchy) CommonSuperclass(a, b string) (string, error) { return f.super, nil }

func TestMergeTypeWidensSubIntegerTypes(t *testing.T) {
	pool := classfile.NewConstantPool()
	h := fakeHierarchy{super: "java/lang/Object"}

	for _, sub := range []frameType{ftBoolean, ftByte, ftChar, ftShort} {
		merged, err := mergeType(pool, h, sub, ftInteger)
		require.NoError(t, err)
		require.Equal(t, ftInteger, merged)
	}
}

func TestMergeTypeIsCommutative(t *testing.T) {
	pool := classfile.NewConstantPool()
	h := fakeHierarchy{super: "java/lang/Object"}
	a := objectType(pool.AddType("java/lang/Integer"))
	b := objectType(pool.AddType("java/lang/String"))

	ab, err := mergeType(pool, h, a, b)
	require.NoError(t, err)
	ba, err := mergeType(pool, h, b, a)
	require.NoError(t, err)
	require.Equal(t, ab, ba)
}

func TestMergeTypeNullJoinsToTheOtherReference(t *testing.T) {
	pool := classfile.NewConstantPool()
	h := fakeHierarchy{super: "java/lang/Object"}
	obj := objectType(pool.AddType("java/lang/String"))

	merged, err := mergeType(pool, h, ftNull, obj)
	require.NoError(t, err)
	require.Equal(t, obj, merged)

	merged, err = mergeType(pool, h, obj, ftNull)
	require.NoError(t, err)
	require.Equal(t, obj, merged)
}

func TestMergeTypePrimitiveReferenceMismatchCollapsesToTop(t *testing.T) {
	pool := classfile.NewConstantPool()
	h := fakeHierarchy{super: "java/lang/Object"}
	obj := objectType(pool.AddType("java/lang/String"))

	merged, err := mergeType(pool, h, ftInteger, obj)
	require.NoError(t, err)
	require.Equal(t, ftTop, merged)
}

func TestMergeTypeDimensionMismatchCollapsesToTop(t *testing.T) {
	pool := classfile.NewConstantPool()
	h := fakeHierarchy{super: "java/lang/Object"}
	idx := pool.AddType("java/lang/String")
	scalar := objectType(idx)
	array := objectType(idx).withDim(1)

	merged, err := mergeType(pool, h, scalar, array)
	require.NoError(t, err)
	require.Equal(t, ftTop, merged)
}

func TestMergeTypeUninitializedMismatchCollapsesToTop(t *testing.T) {
	pool := classfile.NewConstantPool()
	h := fakeHierarchy{super: "java/lang/Object"}
	idx := pool.AddUninitializedType("Foo", 3)

	merged, err := mergeType(pool, h, uninitializedType(idx), ftUninitializedThis)
	require.NoError(t, err)
	require.Equal(t, ftTop, merged)
}

func TestMergeTypeZeroActsAsIdentity(t *testing.T) {
	pool := classfile.NewConstantPool()
	h := fakeHierarchy{super: "java/lang/Object"}

	merged, err := mergeType(pool, h, 0, ftInteger)
	require.NoError(t, err)
	require.Equal(t, ftInteger, merged)

	merged, err = mergeType(pool, h, ftInteger, 0)
	require.NoError(t, err)
	require.Equal(t, ftInteger, merged)
}
