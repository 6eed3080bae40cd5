package entity

// Schema is a named namespace for tables and functions. It has no
// dependencies of its own; schema-scoped entities fall back to depending on
// it when nothing else binds them.
type Schema struct {
	base
}

// NewSchema builds a Schema entity.
func NewSchema(ctx Context, name string) (*Bundle, error) {
	return NewBundle(&Schema{
		base: newBase(ctx, refName(KindSchema, name), name, nil),
	}), nil
}

// Kind returns KindSchema.
func (s *Schema) Kind() Kind { return KindSchema }

// DependencyRefs returns nil: schemas depend on nothing.
func (s *Schema) DependencyRefs() []string { return nil }

// Dict returns the serialised form.
func (s *Schema) Dict() map[string]any {
	return s.coreDict(KindSchema, nil)
}

// SchemaFromDict rebuilds a Schema from its serialised form.
func SchemaFromDict(ctx Context, data map[string]any) (*Bundle, error) {
	ref, err := dictString(KindSchema, data, "ref")
	if err != nil {
		return nil, err
	}
	name, err := dictString(KindSchema, data, "name")
	if err != nil {
		return nil, err
	}
	return NewBundle(&Schema{base: newBase(ctx, ref, name, nil)}), nil
}
