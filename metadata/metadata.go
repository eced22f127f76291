package metadata

import (
	"fmt"
	"strings"
)

// Cardinality of a property. Scalars have no cardinality.
type Cardinality uint8

// Property cardinalities.
const (
	None Cardinality = iota
	OneToOne
	ManyToOne
	OneToMany
	ManyToMany
)

var cardinalityNames = [...]string{
	None:       "none",
	OneToOne:   "one_to_one",
	ManyToOne:  "many_to_one",
	OneToMany:  "one_to_many",
	ManyToMany: "many_to_many",
}

// String returns the snake_case name of the cardinality.
func (c Cardinality) String() string {
	if int(c) < len(cardinalityNames) {
		return cardinalityNames[c]
	}
	return fmt.Sprintf("cardinality(%d)", c)
}

// IsMany reports whether the property holds a collection.
func (c Cardinality) IsMany() bool { return c == OneToMany || c == ManyToMany }

// ParseCardinality parses a cardinality name. Both snake_case and the
// short forms (o2o, m2o, o2m, m2m) are accepted; the empty string is None.
func ParseCardinality(s string) (Cardinality, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", "none":
		return None, nil
	case "one_to_one", "o2o":
		return OneToOne, nil
	case "many_to_one", "m2o":
		return ManyToOne, nil
	case "one_to_many", "o2m":
		return OneToMany, nil
	case "many_to_many", "m2m":
		return ManyToMany, nil
	}
	return None, fmt.Errorf("veloxext: unknown cardinality %q", s)
}

// Kind classifies a property by what it holds.
type Kind uint8

// Property kinds.
const (
	Scalar Kind = iota
	ToOne
	ToMany
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case ToOne:
		return "to_one"
	case ToMany:
		return "to_many"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsAssociation reports whether the kind refers to another entity.
func (k Kind) IsAssociation() bool { return k == ToOne || k == ToMany }

// KindOf derives the property kind from its cardinality.
func KindOf(c Cardinality) Kind {
	switch c {
	case OneToOne, ManyToOne:
		return ToOne
	case OneToMany, ManyToMany:
		return ToMany
	}
	return Scalar
}

// Property describes one attribute of an entity.
type Property struct {
	// Name of the property on the entity.
	Name string
	// Cardinality is None for scalars.
	Cardinality Cardinality
	// Target entity name for associations.
	Target string
	// Nullable reports whether the property may be unset.
	Nullable bool
	// Column is the explicitly mapped column. Empty means the property
	// carries no column mapping and the implicit name is used for SQL.
	Column string
	// DeletedDate marks the soft-deletion timestamp of the entity.
	DeletedDate bool
	// ReferenceID names the scalar holding the identifier of a
	// cross-store to-one reference.
	ReferenceID string

	owner  *Entity
	target *Entity
}

// Kind returns the property kind.
func (p *Property) Kind() Kind { return KindOf(p.Cardinality) }

// IsAssociation reports whether the property refers to another entity.
func (p *Property) IsAssociation() bool { return p.Kind().IsAssociation() }

// Owner returns the entity declaring the property.
func (p *Property) Owner() *Entity { return p.owner }

// TargetEntity returns the referenced entity of an association, or nil.
func (p *Property) TargetEntity() *Entity { return p.target }

// PhysicalColumn returns the column used for SQL: the mapped column if
// present, the implicit name otherwise.
func (p *Property) PhysicalColumn() string {
	if p.Column != "" {
		return p.Column
	}
	if p.Kind() == ToOne {
		return ImplicitJoinColumn(p.Name)
	}
	return ImplicitColumn(p.Name)
}

// Entity describes a persistent type.
type Entity struct {
	// Name of the entity.
	Name string
	// Store is the logical data store holding the entity. Subclasses
	// default to their parent's store; roots default to the main store.
	Store string
	// Table is the mapped table. Empty means the implicit name.
	Table string
	// Parent is the superclass entity name, empty for roots.
	Parent string
	// ID is the identifier property name, "id" by default.
	ID string
	// Declared holds the properties the entity itself declares.
	Declared []*Property

	parent *Entity
	all    []*Property
	byName map[string]*Property
}

// ParentEntity returns the superclass entity or nil for roots.
func (e *Entity) ParentEntity() *Entity { return e.parent }

// IsRoot reports whether the entity has no superclass.
func (e *Entity) IsRoot() bool { return e.parent == nil }

// Root returns the top of the entity's inheritance chain.
func (e *Entity) Root() *Entity {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// PhysicalTable returns the table used for SQL.
func (e *Entity) PhysicalTable() string {
	if e.Table != "" {
		return e.Table
	}
	return ImplicitTable(e.Name)
}

// Properties returns all properties, inherited first.
func (e *Entity) Properties() []*Property {
	props := make([]*Property, len(e.all))
	copy(props, e.all)
	return props
}

// OwnProperties returns the properties declared by the entity itself.
func (e *Entity) OwnProperties() []*Property {
	props := make([]*Property, len(e.Declared))
	copy(props, e.Declared)
	return props
}

// Property returns the named property, searching inherited ones too.
func (e *Entity) Property(name string) *Property {
	return e.byName[name]
}

// Declares reports whether the entity itself declares the named property.
func (e *Entity) Declares(name string) bool {
	p := e.byName[name]
	return p != nil && p.owner == e
}
