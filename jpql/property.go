package jpql

import (
	"fmt"
	"strings"

	"github.com/syssam/veloxext"
	"github.com/syssam/veloxext/condition"
	"github.com/syssam/veloxext/metadata"
)

// PropertyConditionGenerator compiles property conditions. It is the
// fallback of the chain.
//
// A condition on a to-one association whose target lives in another
// store is rewritten to the association's reference-id property, and an
// entity-valued parameter is replaced by its identifier. Paths that do
// not resolve pass through untouched.
type PropertyConditionGenerator struct {
	graph *metadata.Graph
}

// NewPropertyConditionGenerator returns a generator resolving paths
// against the graph.
func NewPropertyConditionGenerator(g *metadata.Graph) *PropertyConditionGenerator {
	return &PropertyConditionGenerator{graph: g}
}

// Order implements Ordered.
func (*PropertyConditionGenerator) Order() int { return LowestPrecedence }

// Supports implements Generator.
func (*PropertyConditionGenerator) Supports(ctx *GenerationContext) bool {
	_, ok := ctx.Condition.(*condition.PropertyCondition)
	return ok
}

// GenerateJoin implements Generator. Property conditions never join.
func (*PropertyConditionGenerator) GenerateJoin(*GenerationContext) string {
	return ""
}

// GenerateWhere implements Generator.
func (g *PropertyConditionGenerator) GenerateWhere(ctx *GenerationContext) string {
	pc, _ := ctx.Condition.(*condition.PropertyCondition)
	if pc == nil {
		return ""
	}
	return where(pc, ctx.EntityAlias, g.property(pc, ctx.EntityName))
}

func where(pc *condition.PropertyCondition, alias, property string) string {
	switch {
	case pc.Operation.IsUnary():
		return fmt.Sprintf("%s.%s %s", alias, property, pc.Operator())
	case pc.Operation.IsInInterval():
		return pc.Operator()
	default:
		return fmt.Sprintf("%s.%s %s :%s", alias, property, pc.Operator(), pc.ParameterName)
	}
}

// GenerateParameterValue implements Generator.
func (g *PropertyConditionGenerator) GenerateParameterValue(c condition.Condition, value any, entityName string) any {
	pc, _ := c.(*condition.PropertyCondition)
	if pc == nil || value == nil {
		return nil
	}
	if s, ok := value.(string); ok {
		switch pc.Operation {
		case condition.OpContains, condition.OpNotContains:
			return veloxext.CaseInsensitiveMarker + "%" + s + "%"
		case condition.OpStartsWith:
			return veloxext.CaseInsensitiveMarker + s + "%"
		case condition.OpEndsWith:
			return veloxext.CaseInsensitiveMarker + "%" + s
		}
	} else if metadata.IsRecord(value) && g.referenceID(pc.Property, entityName) != "" {
		return metadata.RecordID(value)
	}
	return value
}

// property returns the path to compare, with a cross-store terminal
// segment replaced by its reference-id property.
func (g *PropertyConditionGenerator) property(pc *condition.PropertyCondition, entityName string) string {
	ref := g.referenceID(pc.Property, entityName)
	if ref == "" {
		return pc.Property
	}
	if i := strings.LastIndex(pc.Property, "."); i > 0 {
		return pc.Property[:i+1] + ref
	}
	return ref
}

// referenceID resolves the reference-id property of the path's terminal
// segment as seen from the root entity's store.
func (g *PropertyConditionGenerator) referenceID(property, entityName string) string {
	if entityName == "" || g.graph == nil {
		return ""
	}
	e := g.graph.Entity(entityName)
	if e == nil {
		return ""
	}
	pp := e.PropertyPath(property)
	if pp == nil {
		return ""
	}
	return g.graph.CrossStoreReferenceID(e.Store, pp.Terminal())
}
