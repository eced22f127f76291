package metadata

import (
	"fmt"
	"slices"
	"sort"

	"github.com/syssam/veloxext"
)

// Graph is an immutable, fully resolved set of entities. All lookups the
// condition compiler and the soft-deletion enhancer need are computed
// when the graph is built.
type Graph struct {
	entities map[string]*Entity
	order    []*Entity
	stores   []string
	deleted  map[*Entity]*Property
	refIDs   map[refKey]string
}

type refKey struct {
	store string
	prop  *Property
}

// New links and resolves the given entities. The entities are owned by
// the graph afterwards and must not be mutated.
func New(entities ...*Entity) (*Graph, error) {
	g := &Graph{
		entities: make(map[string]*Entity, len(entities)),
		deleted:  make(map[*Entity]*Property),
		refIDs:   make(map[refKey]string),
	}
	for _, e := range entities {
		if err := g.register(e); err != nil {
			return nil, err
		}
	}
	for _, e := range g.order {
		if err := g.linkParent(e); err != nil {
			return nil, err
		}
	}
	for _, e := range g.order {
		if err := g.checkCycle(e); err != nil {
			return nil, err
		}
	}
	resolved := make(map[*Entity]bool, len(g.order))
	for _, e := range g.order {
		g.resolve(e, resolved)
	}
	for _, e := range g.order {
		if err := g.linkTargets(e); err != nil {
			return nil, err
		}
	}
	for _, e := range g.order {
		if err := g.checkReferenceIDs(e); err != nil {
			return nil, err
		}
		for _, p := range e.all {
			if p.DeletedDate {
				g.deleted[e] = p
				break
			}
		}
	}
	g.precomputeReferenceIDs()
	return g, nil
}

// MustNew is like New but panics on error.
func MustNew(entities ...*Entity) *Graph {
	g, err := New(entities...)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Graph) register(e *Entity) error {
	if e == nil {
		return NewSchemaError("", "", "nil entity")
	}
	if e.Name == "" {
		return NewSchemaError("", "", "entity name is required")
	}
	if _, ok := g.entities[e.Name]; ok {
		return NewSchemaError(e.Name, "", "duplicate entity")
	}
	if e.ID == "" {
		e.ID = "id"
	}
	seen := make(map[string]bool, len(e.Declared))
	for _, p := range e.Declared {
		if p == nil || p.Name == "" {
			return NewSchemaError(e.Name, "", "property name is required")
		}
		if seen[p.Name] {
			return NewSchemaError(e.Name, p.Name, "duplicate property")
		}
		seen[p.Name] = true
		switch {
		case p.IsAssociation() && p.Target == "":
			return NewSchemaError(e.Name, p.Name, fmt.Sprintf("%s association requires a target entity", p.Cardinality))
		case !p.IsAssociation() && p.Target != "":
			return NewSchemaError(e.Name, p.Name, "scalar property cannot have a target entity")
		case p.ReferenceID != "" && p.Kind() != ToOne:
			return NewSchemaError(e.Name, p.Name, "reference id is only allowed on to-one associations")
		case p.DeletedDate && p.IsAssociation():
			return NewSchemaError(e.Name, p.Name, "deleted date must be a scalar property")
		}
		p.owner = e
	}
	g.entities[e.Name] = e
	g.order = append(g.order, e)
	return nil
}

func (g *Graph) linkParent(e *Entity) error {
	if e.Parent == "" {
		return nil
	}
	parent, ok := g.entities[e.Parent]
	if !ok {
		return NewSchemaError(e.Name, "", fmt.Sprintf("unknown parent entity %q", e.Parent))
	}
	e.parent = parent
	return nil
}

func (g *Graph) checkCycle(e *Entity) error {
	visited := map[*Entity]bool{e: true}
	for p := e.parent; p != nil; p = p.parent {
		if visited[p] {
			return NewSchemaError(e.Name, "", "inheritance cycle")
		}
		visited[p] = true
	}
	return nil
}

// resolve computes the full property list of e after its parent's.
func (g *Graph) resolve(e *Entity, resolved map[*Entity]bool) {
	if resolved[e] {
		return
	}
	if e.parent != nil {
		g.resolve(e.parent, resolved)
	}
	if e.Store == "" {
		if e.parent != nil {
			e.Store = e.parent.Store
		} else {
			e.Store = veloxext.MainStore
		}
	}
	e.byName = make(map[string]*Property)
	e.all = nil
	if e.parent != nil {
		for _, p := range e.parent.all {
			e.byName[p.Name] = p
			e.all = append(e.all, p)
		}
	}
	for _, p := range e.Declared {
		if prev, ok := e.byName[p.Name]; ok {
			// Redeclaration replaces the inherited property in place.
			e.all[slices.Index(e.all, prev)] = p
		} else {
			e.all = append(e.all, p)
		}
		e.byName[p.Name] = p
	}
	resolved[e] = true
}

func (g *Graph) linkTargets(e *Entity) error {
	for _, p := range e.Declared {
		if !p.IsAssociation() {
			continue
		}
		target, ok := g.entities[p.Target]
		if !ok {
			return NewSchemaError(e.Name, p.Name, fmt.Sprintf("unknown target entity %q", p.Target))
		}
		p.target = target
	}
	return nil
}

func (g *Graph) checkReferenceIDs(e *Entity) error {
	for _, p := range e.Declared {
		if p.ReferenceID == "" {
			continue
		}
		ref := e.Property(p.ReferenceID)
		if ref == nil || ref.IsAssociation() {
			return NewSchemaError(e.Name, p.Name, fmt.Sprintf("reference id %q is not a scalar property of the entity", p.ReferenceID))
		}
	}
	return nil
}

func (g *Graph) precomputeReferenceIDs() {
	set := make(map[string]bool)
	for _, e := range g.order {
		set[e.Store] = true
	}
	g.stores = make([]string, 0, len(set))
	for s := range set {
		g.stores = append(g.stores, s)
	}
	sort.Strings(g.stores)
	for _, store := range g.stores {
		for _, e := range g.order {
			for _, p := range e.Declared {
				if id := referenceID(store, p); id != "" {
					g.refIDs[refKey{store: store, prop: p}] = id
				}
			}
		}
	}
}

// referenceID returns the scalar standing in for p when p is read from
// the given store, or "" when p is local to that store.
func referenceID(store string, p *Property) string {
	if p.Kind() != ToOne || p.target == nil || p.target.Store == store {
		return ""
	}
	if p.ReferenceID != "" {
		return p.ReferenceID
	}
	derived := DerivedReferenceID(p.Name)
	if ref := p.owner.Property(derived); ref != nil && !ref.IsAssociation() {
		return derived
	}
	return ""
}

// Entity returns the named entity or nil.
func (g *Graph) Entity(name string) *Entity {
	return g.entities[name]
}

// Lookup returns the named entity or an *veloxext.UnknownEntityError.
func (g *Graph) Lookup(name string) (*Entity, error) {
	e, ok := g.entities[name]
	if !ok {
		return nil, veloxext.NewUnknownEntityError(name)
	}
	return e, nil
}

// Entities returns all entities in registration order.
func (g *Graph) Entities() []*Entity {
	return slices.Clone(g.order)
}

// Stores returns the distinct store names, sorted.
func (g *Graph) Stores() []string {
	return slices.Clone(g.stores)
}

// IsSoftDeletable reports whether the entity, or one of its ancestors,
// declares a deleted-date property.
func (g *Graph) IsSoftDeletable(e *Entity) bool {
	_, ok := g.deleted[e]
	return ok
}

// DeletedDateProperty returns the deleted-date property of the entity,
// inherited or own, or nil.
func (g *Graph) DeletedDateProperty(e *Entity) *Property {
	return g.deleted[e]
}

// DeletedDateColumn returns the mapped column of the deleted-date
// property. It reports false when the entity is not soft-deletable or the
// property carries no column mapping.
func (g *Graph) DeletedDateColumn(e *Entity) (string, bool) {
	p := g.deleted[e]
	if p == nil || p.Column == "" {
		return "", false
	}
	return p.Column, true
}

// CrossStoreReferenceID returns the name of the scalar that holds the
// identifier of p when p is read from store, or "" when p is not a
// cross-store reference for that store.
func (g *Graph) CrossStoreReferenceID(store string, p *Property) string {
	if p == nil {
		return ""
	}
	if id, ok := g.refIDs[refKey{store: store, prop: p}]; ok {
		return id
	}
	// Stores without entities are not precomputed.
	if !slices.Contains(g.stores, store) {
		return referenceID(store, p)
	}
	return ""
}

// IsCrossStoreReference reports whether p crosses a store boundary when
// read from store.
func (g *Graph) IsCrossStoreReference(store string, p *Property) bool {
	return g.CrossStoreReferenceID(store, p) != ""
}
