// Package jpql compiles filter conditions into query-language fragments.
//
// Conditions are dispatched through an ordered chain of generators. The
// first generator whose Supports method accepts the condition produces
// its join and where fragments and transforms its parameter values.
package jpql

import (
	"math"
	"slices"

	"github.com/syssam/veloxext/condition"
)

// Precedence bounds for generator ordering. Lower values run first.
const (
	HighestPrecedence = math.MinInt32
	LowestPrecedence  = math.MaxInt32
)

// GenerationContext is the input of a generator.
type GenerationContext struct {
	Condition   condition.Condition
	EntityName  string
	EntityAlias string
}

// Child returns a context for a nested condition of the same query.
func (ctx *GenerationContext) Child(c condition.Condition) *GenerationContext {
	return &GenerationContext{
		Condition:   c,
		EntityName:  ctx.EntityName,
		EntityAlias: ctx.EntityAlias,
	}
}

// Generator compiles the conditions it supports.
type Generator interface {
	Supports(ctx *GenerationContext) bool
	GenerateJoin(ctx *GenerationContext) string
	GenerateWhere(ctx *GenerationContext) string
	GenerateParameterValue(c condition.Condition, value any, entityName string) any
}

// Ordered is implemented by generators that declare a precedence.
// Generators without one have precedence 0.
type Ordered interface {
	Order() int
}

func orderOf(g Generator) int {
	if o, ok := g.(Ordered); ok {
		return o.Order()
	}
	return 0
}

// Generators is an ordered generator chain. It must not be modified once
// it is used to compile conditions.
type Generators struct {
	gens []Generator
}

// NewGenerators returns a chain of the given generators.
func NewGenerators(gens ...Generator) *Generators {
	chain := &Generators{}
	chain.Register(gens...)
	return chain
}

// Register adds generators to the chain, keeping it sorted by precedence.
// Generators with equal precedence keep their registration order.
func (c *Generators) Register(gens ...Generator) {
	c.gens = append(c.gens, gens...)
	slices.SortStableFunc(c.gens, func(a, b Generator) int {
		oa, ob := orderOf(a), orderOf(b)
		switch {
		case oa < ob:
			return -1
		case oa > ob:
			return 1
		}
		return 0
	})
}

// Generators returns the chain in dispatch order.
func (c *Generators) Generators() []Generator {
	return slices.Clone(c.gens)
}

// Resolve returns the first generator supporting the context, or nil.
func (c *Generators) Resolve(ctx *GenerationContext) Generator {
	for _, g := range c.gens {
		if g.Supports(ctx) {
			return g
		}
	}
	return nil
}

// GenerateJoin dispatches to the supporting generator.
func (c *Generators) GenerateJoin(ctx *GenerationContext) string {
	if g := c.Resolve(ctx); g != nil {
		return g.GenerateJoin(ctx)
	}
	return ""
}

// GenerateWhere dispatches to the supporting generator.
func (c *Generators) GenerateWhere(ctx *GenerationContext) string {
	if g := c.Resolve(ctx); g != nil {
		return g.GenerateWhere(ctx)
	}
	return ""
}

// GenerateParameterValue dispatches to the generator supporting the
// condition. Values of unsupported conditions pass through.
func (c *Generators) GenerateParameterValue(cond condition.Condition, value any, entityName string) any {
	if g := c.Resolve(&GenerationContext{Condition: cond, EntityName: entityName}); g != nil {
		return g.GenerateParameterValue(cond, value, entityName)
	}
	return value
}
