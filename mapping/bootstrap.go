package mapping

import (
	"fmt"
	"maps"
	"slices"
)

// Enhancer adjusts a model during bootstrap.
type Enhancer interface {
	Enhance(m *Model) error
}

// The EnhancerFunc type is an adapter to allow the use of ordinary
// functions as Enhancer.
type EnhancerFunc func(*Model) error

// Enhance calls f(m).
func (f EnhancerFunc) Enhance(m *Model) error {
	return f(m)
}

// Bootstrap runs the enhancers over the model in order, stopping at the
// first error, and freezes the model into its compiled form.
func Bootstrap(m *Model, enhancers ...Enhancer) (*Compiled, error) {
	if m.frozen {
		return nil, ErrModelFrozen
	}
	for i, e := range enhancers {
		name := enhancerName(e)
		m.log.Debug("mapping: enhancer pass", "index", i, "enhancer", name)
		if err := e.Enhance(m); err != nil {
			m.log.Error("mapping: enhancer failed", "enhancer", name, "error", err)
			return nil, fmt.Errorf("mapping: %s: %w", name, err)
		}
	}
	m.frozen = true
	c := compile(m)
	m.log.Debug("mapping: model frozen", "entities", len(c.entities))
	return c, nil
}

func enhancerName(e Enhancer) string {
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", e)
}

func compile(m *Model) *Compiled {
	c := &Compiled{entities: make(map[string]*CompiledEntity, len(m.bindings))}
	for _, b := range m.bindings {
		ce := &CompiledEntity{
			Name:  b.Entity,
			Table: b.Table,
			Where: b.Where,
		}
		if b.Superclass != nil {
			ce.Superclass = b.Superclass.Entity
		}
		for _, p := range b.properties {
			switch v := p.Value.(type) {
			case *SimpleValue:
				setColumn(ce, p.Name, v.Column)
			case *ManyToOne:
				setColumn(ce, p.Name, v.Column)
			case *Collection:
				if ce.Collections == nil {
					ce.Collections = make(map[string]CompiledCollection)
				}
				cc := CompiledCollection{
					Kind:            v.Kind,
					Target:          v.Target,
					Table:           v.Table,
					Where:           v.Where,
					ManyToManyWhere: v.ManyToManyWhere,
				}
				if el, ok := v.Element.(*ManyToOne); ok {
					cc.IgnoreNotFound = el.IgnoreNotFound
				}
				ce.Collections[p.Name] = cc
			}
		}
		c.entities[b.Entity] = ce
	}
	return c
}

func setColumn(ce *CompiledEntity, property, column string) {
	if column == "" {
		return
	}
	if ce.Columns == nil {
		ce.Columns = make(map[string]string)
	}
	ce.Columns[property] = column
}

// Compiled is the frozen form of a model.
type Compiled struct {
	entities map[string]*CompiledEntity
}

// CompiledEntity is the frozen binding of one entity. Columns and
// Collections hold the properties declared on the binding itself.
type CompiledEntity struct {
	Name        string                        `msgpack:"name"`
	Table       string                        `msgpack:"table"`
	Superclass  string                        `msgpack:"superclass,omitempty"`
	Where       string                        `msgpack:"where,omitempty"`
	Columns     map[string]string             `msgpack:"columns,omitempty"`
	Collections map[string]CompiledCollection `msgpack:"collections,omitempty"`
}

// CompiledCollection is the frozen mapping of a to-many association.
type CompiledCollection struct {
	Kind            CollectionKind `msgpack:"kind"`
	Target          string         `msgpack:"target"`
	Table           string         `msgpack:"table,omitempty"`
	Where           string         `msgpack:"where,omitempty"`
	ManyToManyWhere string         `msgpack:"many_to_many_where,omitempty"`
	IgnoreNotFound  bool           `msgpack:"ignore_not_found,omitempty"`
}

// Names returns the compiled entity names, sorted.
func (c *Compiled) Names() []string {
	return slices.Sorted(maps.Keys(c.entities))
}

// Entity returns a copy of the compiled binding of the named entity.
func (c *Compiled) Entity(name string) (CompiledEntity, bool) {
	ce, ok := c.entities[name]
	if !ok {
		return CompiledEntity{}, false
	}
	cp := *ce
	cp.Columns = maps.Clone(ce.Columns)
	cp.Collections = maps.Clone(ce.Collections)
	return cp, true
}

// chain returns the binding of name followed by its superclasses.
func (c *Compiled) chain(name string) []*CompiledEntity {
	var chain []*CompiledEntity
	for ce := c.entities[name]; ce != nil; ce = c.entities[ce.Superclass] {
		chain = append(chain, ce)
		if ce.Superclass == "" {
			break
		}
	}
	return chain
}

// Filter returns the effective load filter of the entity. Subclasses are
// loaded through their root binding, whose filter applies to them.
func (c *Compiled) Filter(entity string) string {
	chain := c.chain(entity)
	if len(chain) == 0 {
		return ""
	}
	return chain[len(chain)-1].Where
}

// Collection returns the mapping of a to-many association, looking at
// superclass bindings too.
func (c *Compiled) Collection(entity, property string) (CompiledCollection, bool) {
	for _, ce := range c.chain(entity) {
		if cc, ok := ce.Collections[property]; ok {
			return cc, true
		}
	}
	return CompiledCollection{}, false
}

// Column returns the column of a scalar or to-one property, looking at
// superclass bindings too.
func (c *Compiled) Column(entity, property string) (string, bool) {
	for _, ce := range c.chain(entity) {
		if col, ok := ce.Columns[property]; ok {
			return col, true
		}
	}
	return "", false
}

// Filters returns the effective load filter of every entity that has one.
func (c *Compiled) Filters() map[string]string {
	filters := make(map[string]string)
	for name := range c.entities {
		if f := c.Filter(name); f != "" {
			filters[name] = f
		}
	}
	return filters
}
