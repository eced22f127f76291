// Package mapping holds the mapping bootstrap model: the per-entity load
// filters and association mappings that enhancers adjust before the model
// is frozen.
//
// A Model has a single owner for its whole mutable life. Bootstrap hands
// it to each enhancer in turn and then freezes it into a Compiled form
// that is safe for concurrent use.
package mapping

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ErrModelFrozen is returned when a bootstrapped model is modified or
// bootstrapped again.
var ErrModelFrozen = errors.New("mapping: model is frozen")

// CollectionKind is the mapped collection semantics.
type CollectionKind string

// Collection kinds.
const (
	Bag  CollectionKind = "bag"
	Set  CollectionKind = "set"
	List CollectionKind = "list"
)

// Value is the mapping of a property: *SimpleValue, *ManyToOne,
// *OneToMany or *Collection.
type Value interface {
	value()
}

// SimpleValue maps a scalar to a column.
type SimpleValue struct {
	Column string
}

// ManyToOne maps a reference through a foreign-key column.
type ManyToOne struct {
	Target string
	Column string
	// IgnoreNotFound treats a dangling foreign key as a null reference.
	IgnoreNotFound bool
}

// OneToMany is the element of a one-to-many collection.
type OneToMany struct {
	Target string
}

// Collection maps a to-many association.
type Collection struct {
	Kind   CollectionKind
	Target string
	// Table is the link table of a many-to-many collection.
	Table string
	// Where filters the target rows.
	Where string
	// ManyToManyWhere filters the link-table rows.
	ManyToManyWhere string
	// Element is a *ManyToOne for many-to-many collections and a
	// *OneToMany otherwise.
	Element Value
}

func (*SimpleValue) value() {}
func (*ManyToOne) value()   {}
func (*OneToMany) value()   {}
func (*Collection) value()  {}

// IsManyToMany reports whether the collection goes through a link table.
func (c *Collection) IsManyToMany() bool {
	_, ok := c.Element.(*ManyToOne)
	return ok
}

// PropertyBinding binds a property name to its mapping.
type PropertyBinding struct {
	Name  string
	Value Value
}

// EntityBinding is the mapping of one entity.
type EntityBinding struct {
	Entity string
	Table  string
	// Superclass is nil for root bindings.
	Superclass *EntityBinding
	// Where is the load filter of the entity.
	Where string

	properties []*PropertyBinding
}

// IsRoot reports whether the binding has no superclass.
func (b *EntityBinding) IsRoot() bool { return b.Superclass == nil }

// Root returns the top of the binding's superclass chain.
func (b *EntityBinding) Root() *EntityBinding {
	r := b
	for r.Superclass != nil {
		r = r.Superclass
	}
	return r
}

// AddProperty declares a property on this binding.
func (b *EntityBinding) AddProperty(name string, v Value) *PropertyBinding {
	pb := &PropertyBinding{Name: name, Value: v}
	b.properties = append(b.properties, pb)
	return pb
}

// Properties returns the property bindings declared on this binding.
// Superclass properties are not included.
func (b *EntityBinding) Properties() []*PropertyBinding {
	return slices.Clone(b.properties)
}

// Property returns the named property declared on this binding, or nil.
func (b *EntityBinding) Property(name string) *PropertyBinding {
	for _, p := range b.properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Model is the mutable bootstrap model.
type Model struct {
	bindings []*EntityBinding
	byName   map[string]*EntityBinding
	frozen   bool
	log      *slog.Logger
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithLogger sets the logger used during bootstrap.
func WithLogger(l *slog.Logger) ModelOption {
	return func(m *Model) {
		m.log = l
	}
}

// NewModel returns an empty model.
func NewModel(opts ...ModelOption) *Model {
	m := &Model{byName: make(map[string]*EntityBinding)}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	return m
}

// Add registers entity bindings. A superclass must be added before its
// subclasses.
func (m *Model) Add(bindings ...*EntityBinding) error {
	if m.frozen {
		return ErrModelFrozen
	}
	for _, b := range bindings {
		if _, ok := m.byName[b.Entity]; ok {
			return fmt.Errorf("mapping: duplicate binding for entity %s", b.Entity)
		}
		if b.Superclass != nil && m.byName[b.Superclass.Entity] != b.Superclass {
			return fmt.Errorf("mapping: superclass %s of %s is not registered", b.Superclass.Entity, b.Entity)
		}
		m.byName[b.Entity] = b
		m.bindings = append(m.bindings, b)
	}
	return nil
}

// Entity returns the binding of the named entity, or nil.
func (m *Model) Entity(name string) *EntityBinding {
	return m.byName[name]
}

// Entities returns the bindings in registration order.
func (m *Model) Entities() []*EntityBinding {
	return slices.Clone(m.bindings)
}

// Frozen reports whether the model has been bootstrapped.
func (m *Model) Frozen() bool { return m.frozen }
