package jpql

import (
	"fmt"
	"strings"

	"github.com/syssam/veloxext"
	"github.com/syssam/veloxext/condition"
	"github.com/syssam/veloxext/metadata"
)

// DefaultAlias is the root alias used when none is configured.
const DefaultAlias = "e"

// Default returns the standard chain: logical groups, raw fragments and
// the property condition fallback.
func Default(g *metadata.Graph) *Generators {
	chain := NewGenerators()
	chain.Register(
		NewLogicalConditionGenerator(chain),
		NewJPQLConditionGenerator(),
		NewPropertyConditionGenerator(g),
	)
	return chain
}

// Query is a compiled query over one root entity.
type Query struct {
	Entity     string
	Alias      string
	Join       string
	Where      string
	Text       string
	Parameters map[string]any
}

// QueryBuilder builds queries from conditions.
type QueryBuilder struct {
	graph *metadata.Graph
	chain *Generators
	alias string
}

// Option configures a QueryBuilder.
type Option func(*QueryBuilder)

// WithAlias sets the root alias.
func WithAlias(alias string) Option {
	return func(b *QueryBuilder) {
		b.alias = alias
	}
}

// WithGenerators replaces the default generator chain.
func WithGenerators(chain *Generators) Option {
	return func(b *QueryBuilder) {
		b.chain = chain
	}
}

// NewQueryBuilder returns a builder over the graph.
func NewQueryBuilder(g *metadata.Graph, opts ...Option) *QueryBuilder {
	b := &QueryBuilder{graph: g, alias: DefaultAlias}
	for _, opt := range opts {
		opt(b)
	}
	if b.chain == nil {
		b.chain = Default(g)
	}
	return b
}

// Build compiles the condition into a query selecting entity. A nil
// condition selects everything.
func (b *QueryBuilder) Build(entity string, c condition.Condition) (*Query, error) {
	if _, err := b.graph.Lookup(entity); err != nil {
		return nil, err
	}
	q := &Query{
		Entity:     entity,
		Alias:      b.alias,
		Parameters: make(map[string]any),
	}
	if c != nil {
		ctx := &GenerationContext{Condition: c, EntityName: entity, EntityAlias: b.alias}
		gen := b.chain.Resolve(ctx)
		if gen == nil {
			return nil, fmt.Errorf("%w: no generator for condition %T", veloxext.ErrUnsupported, c)
		}
		q.Join = b.expand(gen.GenerateJoin(ctx))
		q.Where = b.expand(gen.GenerateWhere(ctx))
		b.bind(q, c)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "select %s from %s %s", b.alias, entity, b.alias)
	if q.Join != "" {
		sb.WriteString(" ")
		sb.WriteString(q.Join)
	}
	if q.Where != "" {
		sb.WriteString(" where ")
		sb.WriteString(q.Where)
	}
	q.Text = sb.String()
	return q, nil
}

func (b *QueryBuilder) expand(s string) string {
	return strings.ReplaceAll(s, condition.EntityPlaceholder, b.alias)
}

// bind collects the parameters of every binary property condition and
// raw fragment, transformed by the chain.
func (b *QueryBuilder) bind(q *Query, c condition.Condition) {
	condition.Walk(c, func(c condition.Condition) bool {
		switch c := c.(type) {
		case *condition.PropertyCondition:
			if c.Operation.IsBinary() {
				q.Parameters[c.ParameterName] = b.chain.GenerateParameterValue(c, c.ParameterValue, q.Entity)
			}
		case *condition.JPQLCondition:
			for name, v := range c.Parameters {
				q.Parameters[name] = b.chain.GenerateParameterValue(c, v, q.Entity)
			}
		}
		return true
	})
}
