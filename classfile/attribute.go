package classfile

// Attribute is a class/field/method/code attribute surfaced through
// VisitAttribute. ClassReader decodes Code (unless SkipCode is set),
// SourceFile, EnclosingMethod, InnerClasses, LineNumberTable and
// LocalVariableTable itself; every other attribute, including
// ConstantValue, Exceptions, StackMapTable and LocalVariableTypeTable,
// reaches VisitAttribute in this form. Type is the
// attribute_name_index's decoded UTF-8 text; Content is the raw info[]
// payload. Value holds the decoded form a registered AttributePrototype
// produced, or nil if no prototype claimed this attribute's Type.
type Attribute struct {
	Type    string
	Content []byte
	Value   interface{}
}

// AttributePrototype lets a caller register a reader for an attribute
// kind it understands so a ClassReader can decode it into a structured
// form instead of leaving it opaque. Mirrors the original ClassReader's
// `attrs []Attribute` prototype-list constructor argument.
type AttributePrototype interface {
	// Type is the attribute_name_index's UTF-8 text this prototype claims.
	Type() string

	// Read decodes content (the attribute's raw info[] payload) into the
	// value that will be attached to the surfaced Attribute's Value
	// field. pool resolves any constant-pool indices the payload carries.
	Read(content []byte, pool *ConstantPool) (interface{}, error)
}

// AttributePrototypeRegistry resolves attribute type names to prototypes.
type AttributePrototypeRegistry struct {
	byType map[string]AttributePrototype
}

// NewAttributePrototypeRegistry returns an empty registry; every
// attribute will be surfaced as an opaque Attribute until prototypes are
// registered.
func NewAttributePrototypeRegistry() *AttributePrototypeRegistry {
	return &AttributePrototypeRegistry{byType: map[string]AttributePrototype{}}
}

// Register adds a prototype, overwriting any previous registration for
// the same attribute type name.
func (r *AttributePrototypeRegistry) Register(p AttributePrototype) {
	r.byType[p.Type()] = p
}

// Resolve decodes content as attrType if a prototype is registered,
// returning (value, true, nil) on success or (nil, false, nil) when
// attrType is unrecognized — the caller should fall back to an opaque
// Attribute in that case.
func (r *AttributePrototypeRegistry) Resolve(attrType string, content []byte, pool *ConstantPool) (interface{}, bool, error) {
	p, ok := r.byType[attrType]
	if !ok {
		return nil, false, nil
	}
	v, err := p.Read(content, pool)
	if err != nil {
		return nil, true, err
	}
	return v, true, nil
}
