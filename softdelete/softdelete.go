// Package softdelete injects not-deleted filters into the mapping model,
// so that soft-deleted rows of an entity are excluded from every load of
// the entity and of collections referring to it.
package softdelete

import (
	"fmt"
	"log/slog"

	"github.com/syssam/veloxext"
	"github.com/syssam/veloxext/mapping"
	"github.com/syssam/veloxext/metadata"
)

// Enhancer is a mapping.Enhancer adding soft-deletion filters.
type Enhancer struct {
	graph   *metadata.Graph
	enabled bool
	log     *slog.Logger
}

// Option configures the Enhancer.
type Option func(*Enhancer)

// WithEnabled switches soft-deletion support. It is enabled by default.
func WithEnabled(enabled bool) Option {
	return func(e *Enhancer) {
		e.enabled = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Enhancer) {
		e.log = l
	}
}

// NewEnhancer returns an enhancer reading soft-deletion metadata from g.
func NewEnhancer(g *metadata.Graph, opts ...Option) *Enhancer {
	e := &Enhancer{graph: g, enabled: true}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// String implements fmt.Stringer.
func (*Enhancer) String() string { return "softdelete" }

// NotDeleted returns the filter matching rows whose deleted-date column
// is null, AND-combined with an existing filter.
func NotDeleted(existing, column string) string {
	if existing != "" {
		return fmt.Sprintf("%s AND %s is null", existing, column)
	}
	return fmt.Sprintf("%s is null", column)
}

// Enhance implements mapping.Enhancer.
//
// A soft-deletable root binding gets a not-deleted load filter. A
// subclass declaring its own deleted-date property is a fatal
// configuration error. Every collection declared on a binding whose
// target is soft-deletable gets a not-deleted filter: on the link table
// for many-to-many collections, which also ignore dangling references,
// and on the target rows otherwise. Deleted-date properties without a
// mapped column are skipped.
func (e *Enhancer) Enhance(m *mapping.Model) error {
	if !e.enabled {
		e.log.Debug("softdelete: disabled")
		return nil
	}
	for _, b := range m.Entities() {
		entity := e.graph.Entity(b.Entity)
		if entity == nil {
			continue
		}
		if e.graph.IsSoftDeletable(entity) {
			if b.IsRoot() {
				e.addEntityFilter(b, entity)
			} else if p := ownDeletedDate(entity); p != nil {
				return veloxext.NewConfigurationError(entity.Name, p.Name,
					fmt.Sprintf("soft deletion property %q is not supported on inherited entities", p.Name))
			}
		}
		e.addCollectionFilters(b, entity)
	}
	return nil
}

// ownDeletedDate returns the first deleted-date property the entity
// declares itself, whatever its ancestors declare.
func ownDeletedDate(entity *metadata.Entity) *metadata.Property {
	for _, p := range entity.OwnProperties() {
		if p.DeletedDate {
			return p
		}
	}
	return nil
}

func (e *Enhancer) addEntityFilter(b *mapping.EntityBinding, entity *metadata.Entity) {
	column, ok := e.graph.DeletedDateColumn(entity)
	if !ok {
		return
	}
	b.Where = NotDeleted(b.Where, column)
	e.log.Debug("softdelete: entity filter", "entity", b.Entity, "where", b.Where)
}

func (e *Enhancer) addCollectionFilters(b *mapping.EntityBinding, entity *metadata.Entity) {
	for _, p := range entity.Properties() {
		target := p.TargetEntity()
		if target == nil || !e.graph.IsSoftDeletable(target) {
			continue
		}
		pb := b.Property(p.Name)
		if pb == nil {
			continue
		}
		column, ok := e.graph.DeletedDateColumn(target)
		if !ok {
			continue
		}
		c, ok := pb.Value.(*mapping.Collection)
		if !ok {
			continue
		}
		if p.Cardinality == metadata.ManyToMany {
			if el, ok := c.Element.(*mapping.ManyToOne); ok {
				el.IgnoreNotFound = true
			}
			c.ManyToManyWhere = NotDeleted(c.ManyToManyWhere, column)
		} else {
			c.Where = NotDeleted(c.Where, column)
		}
		e.log.Debug("softdelete: collection filter", "entity", b.Entity, "property", p.Name)
	}
}

var _ mapping.Enhancer = (*Enhancer)(nil)
