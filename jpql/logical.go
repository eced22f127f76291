package jpql

import (
	"strings"

	"github.com/syssam/veloxext/condition"
)

// LogicalConditionGenerator compiles and/or groups by dispatching each
// child back through the chain.
type LogicalConditionGenerator struct {
	chain *Generators
}

// NewLogicalConditionGenerator returns a generator dispatching children
// through chain.
func NewLogicalConditionGenerator(chain *Generators) *LogicalConditionGenerator {
	return &LogicalConditionGenerator{chain: chain}
}

// Order implements Ordered.
func (*LogicalConditionGenerator) Order() int { return 100 }

// Supports implements Generator.
func (*LogicalConditionGenerator) Supports(ctx *GenerationContext) bool {
	_, ok := ctx.Condition.(*condition.LogicalCondition)
	return ok
}

// GenerateJoin implements Generator.
func (g *LogicalConditionGenerator) GenerateJoin(ctx *GenerationContext) string {
	lc, _ := ctx.Condition.(*condition.LogicalCondition)
	if lc == nil {
		return ""
	}
	var joins []string
	for _, child := range lc.Conditions {
		if j := g.chain.GenerateJoin(ctx.Child(child)); j != "" {
			joins = append(joins, j)
		}
	}
	return strings.Join(joins, " ")
}

// GenerateWhere implements Generator. Empty child fragments are skipped;
// two or more fragments are parenthesized.
func (g *LogicalConditionGenerator) GenerateWhere(ctx *GenerationContext) string {
	lc, _ := ctx.Condition.(*condition.LogicalCondition)
	if lc == nil {
		return ""
	}
	var parts []string
	for _, child := range lc.Conditions {
		if w := g.chain.GenerateWhere(ctx.Child(child)); w != "" {
			parts = append(parts, w)
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	op := " and "
	if lc.Type == condition.Or {
		op = " or "
	}
	return "(" + strings.Join(parts, op) + ")"
}

// GenerateParameterValue implements Generator. Groups carry no
// parameters of their own.
func (*LogicalConditionGenerator) GenerateParameterValue(_ condition.Condition, value any, _ string) any {
	return value
}

// JPQLConditionGenerator emits raw join/where fragments as written.
type JPQLConditionGenerator struct{}

// NewJPQLConditionGenerator returns a raw fragment generator.
func NewJPQLConditionGenerator() *JPQLConditionGenerator {
	return &JPQLConditionGenerator{}
}

// Order implements Ordered.
func (*JPQLConditionGenerator) Order() int { return 200 }

// Supports implements Generator.
func (*JPQLConditionGenerator) Supports(ctx *GenerationContext) bool {
	_, ok := ctx.Condition.(*condition.JPQLCondition)
	return ok
}

// GenerateJoin implements Generator.
func (*JPQLConditionGenerator) GenerateJoin(ctx *GenerationContext) string {
	if jc, _ := ctx.Condition.(*condition.JPQLCondition); jc != nil {
		return jc.Join
	}
	return ""
}

// GenerateWhere implements Generator.
func (*JPQLConditionGenerator) GenerateWhere(ctx *GenerationContext) string {
	if jc, _ := ctx.Condition.(*condition.JPQLCondition); jc != nil {
		return jc.Where
	}
	return ""
}

// GenerateParameterValue implements Generator.
func (*JPQLConditionGenerator) GenerateParameterValue(_ condition.Condition, value any, _ string) any {
	return value
}
