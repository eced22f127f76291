package mapping

import (
	"github.com/go-openapi/inflect"

	"github.com/syssam/veloxext/metadata"
)

// FromGraph derives the default model of the graph: one binding per
// entity, superclasses first, each declaring the entity's own properties.
// To-many associations map to bags.
func FromGraph(g *metadata.Graph, opts ...ModelOption) (*Model, error) {
	m := NewModel(opts...)
	bindings := make(map[*metadata.Entity]*EntityBinding)
	var bind func(e *metadata.Entity) error
	bind = func(e *metadata.Entity) error {
		if _, ok := bindings[e]; ok {
			return nil
		}
		b := &EntityBinding{Entity: e.Name, Table: e.PhysicalTable()}
		if parent := e.ParentEntity(); parent != nil {
			if err := bind(parent); err != nil {
				return err
			}
			b.Superclass = bindings[parent]
		}
		for _, p := range e.OwnProperties() {
			b.AddProperty(p.Name, valueOf(e, p))
		}
		bindings[e] = b
		return m.Add(b)
	}
	for _, e := range g.Entities() {
		if err := bind(e); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func valueOf(e *metadata.Entity, p *metadata.Property) Value {
	switch p.Cardinality {
	case metadata.OneToOne, metadata.ManyToOne:
		return &ManyToOne{Target: p.Target, Column: p.PhysicalColumn()}
	case metadata.OneToMany:
		return &Collection{
			Kind:    Bag,
			Target:  p.Target,
			Element: &OneToMany{Target: p.Target},
		}
	case metadata.ManyToMany:
		return &Collection{
			Kind:    Bag,
			Target:  p.Target,
			Table:   e.PhysicalTable() + "_" + inflect.Underscore(p.Name),
			Element: &ManyToOne{Target: p.Target, Column: metadata.ImplicitJoinColumn(p.Target)},
		}
	}
	return &SimpleValue{Column: p.PhysicalColumn()}
}
