package classfile

// ReferenceKind is a CONSTANT_MethodHandle reference_kind value (JVMS 4.4.8),
// used by Handle and invokedynamic bootstrap arguments.
type ReferenceKind uint8

const (
	RefGetField ReferenceKind = iota + 1
	RefGetStatic
	RefPutField
	RefPutStatic
	RefInvokeVirtual
	RefInvokeStatic
	RefInvokeSpecial
	RefNewInvokeSpecial
	RefInvokeInterface
)

// Handle is the value form of a CONSTANT_MethodHandle entry, passed to
// visitLdcInsn (for a handle constant) or as an invokedynamic bootstrap
// method/argument.
type Handle struct {
	Kind            ReferenceKind
	Owner           string
	Name            string
	Descriptor      string
	IsInterface     bool
}

// ConstantDynamicValue is the value form of a CONSTANT_Dynamic entry.
type ConstantDynamicValue struct {
	Name              string
	Descriptor        string
	BootstrapMethod   Handle
	BootstrapArguments []interface{}
}
