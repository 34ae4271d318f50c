// Package schema declares the mutable fields of the user resource. The
// declaration order is significant: validation errors and UPDATE assignments
// are both produced in this order.
package schema

import "math"

// Kind is the value type of a field.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Field describes a single mutable column.
type Field struct {
	// Name is both the JSON key and the column name.
	Name string

	Kind Kind

	// RequiredOnCreate marks fields that must be supplied when creating a record.
	RequiredOnCreate bool

	// Min is the inclusive lower bound for integer fields, nil when unbounded.
	Min *int64

	// Max is the inclusive upper bound for integer fields, nil when unbounded.
	Max *int64
}

// Schema is an ordered, immutable set of fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a schema from fields. It panics on duplicate names since schemas
// are declared statically.
func New(fields ...Field) *Schema {
	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			panic("schema: duplicate field " + f.Name)
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s
}

// Fields returns the descriptors in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// IsKnownField reports whether name is declared in the schema.
func (s *Schema) IsKnownField(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Lookup returns the descriptor for name.
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

func bound(v int64) *int64 { return &v }

// Users is the schema of the users table.
var Users = New(
	Field{Name: "first_name", Kind: KindString, RequiredOnCreate: true},
	Field{Name: "last_name", Kind: KindString, RequiredOnCreate: true},
	// age is stored in a 32-bit INTEGER column.
	Field{Name: "age", Kind: KindInteger, Min: bound(0), Max: bound(math.MaxInt32)},
	Field{Name: "active", Kind: KindBoolean},
)
