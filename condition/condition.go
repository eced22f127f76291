// Package condition defines the filter conditions compiled by the jpql
// package: comparisons on a property, logical groups and raw query
// fragments.
package condition

import (
	"strings"

	"github.com/google/uuid"
)

// Condition is one of *PropertyCondition, *LogicalCondition or
// *JPQLCondition.
type Condition interface {
	condition()
}

// PropertyCondition compares a property path of the root entity.
type PropertyCondition struct {
	Property       string
	Operation      Operation
	ParameterName  string
	ParameterValue any
}

// LogicalType combines the children of a LogicalCondition.
type LogicalType string

// Logical types.
const (
	And LogicalType = "and"
	Or  LogicalType = "or"
)

// LogicalCondition groups conditions.
type LogicalCondition struct {
	Type       LogicalType
	Conditions []Condition
}

// JPQLCondition is a raw join/where fragment with its own parameters. The
// fragments may use the {E} placeholder for the root alias.
type JPQLCondition struct {
	Join       string
	Where      string
	Parameters map[string]any
}

func (*PropertyCondition) condition() {}
func (*LogicalCondition) condition()  {}
func (*JPQLCondition) condition()     {}

// ParameterName returns a fresh parameter name for the property: dots
// become underscores and a random suffix keeps names unique within a
// query.
func ParameterName(property string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return strings.ReplaceAll(property, ".", "_") + "_" + suffix
}

// New returns a property condition with a generated parameter name.
func New(property string, op Operation, value any) *PropertyCondition {
	return &PropertyCondition{
		Property:       property,
		Operation:      op,
		ParameterName:  ParameterName(property),
		ParameterValue: value,
	}
}

// Equal matches values equal to value.
func Equal(property string, value any) *PropertyCondition {
	return New(property, OpEqual, value)
}

// NotEqual matches values different from value.
func NotEqual(property string, value any) *PropertyCondition {
	return New(property, OpNotEqual, value)
}

// Greater matches values greater than value.
func Greater(property string, value any) *PropertyCondition {
	return New(property, OpGreater, value)
}

// GreaterOrEqual matches values greater than or equal to value.
func GreaterOrEqual(property string, value any) *PropertyCondition {
	return New(property, OpGreaterOrEqual, value)
}

// Less matches values less than value.
func Less(property string, value any) *PropertyCondition {
	return New(property, OpLess, value)
}

// LessOrEqual matches values less than or equal to value.
func LessOrEqual(property string, value any) *PropertyCondition {
	return New(property, OpLessOrEqual, value)
}

// Contains matches strings containing value, ignoring case.
func Contains(property string, value any) *PropertyCondition {
	return New(property, OpContains, value)
}

// NotContains matches strings not containing value, ignoring case.
func NotContains(property string, value any) *PropertyCondition {
	return New(property, OpNotContains, value)
}

// StartsWith matches strings starting with value, ignoring case.
func StartsWith(property string, value any) *PropertyCondition {
	return New(property, OpStartsWith, value)
}

// EndsWith matches strings ending with value, ignoring case.
func EndsWith(property string, value any) *PropertyCondition {
	return New(property, OpEndsWith, value)
}

// InList matches any of the values. The value is typically a slice.
func InList(property string, values any) *PropertyCondition {
	return New(property, OpInList, values)
}

// NotInList matches none of the values.
func NotInList(property string, values any) *PropertyCondition {
	return New(property, OpNotInList, values)
}

// IsSet matches non-null values.
func IsSet(property string) *PropertyCondition {
	return New(property, OpIsSet, true)
}

// IsNotSet matches null values.
func IsNotSet(property string) *PropertyCondition {
	return New(property, OpIsNotSet, true)
}

// IsCollectionEmpty matches empty to-many associations.
func IsCollectionEmpty(property string) *PropertyCondition {
	return New(property, OpIsCollectionEmpty, true)
}

// InInterval matches dates in the interval. The interval is a
// *DateInterval or its string form.
func InInterval(property string, interval any) *PropertyCondition {
	return New(property, OpInInterval, interval)
}

// Operator returns the query-language operator of the condition. For
// in_interval it is the whole interval expression, or "" when the value
// is not a valid interval.
func (c *PropertyCondition) Operator() string {
	if !c.Operation.IsInInterval() {
		return c.Operation.Token(c.ParameterValue)
	}
	var interval *DateInterval
	switch v := c.ParameterValue.(type) {
	case *DateInterval:
		interval = v
	case DateInterval:
		interval = &v
	case string:
		d, err := ParseInterval(v)
		if err != nil {
			return ""
		}
		interval = d
	}
	if interval == nil {
		return ""
	}
	return interval.Expression(c.Property)
}

// NewAnd returns an "and" group of the conditions.
func NewAnd(conditions ...Condition) *LogicalCondition {
	return &LogicalCondition{Type: And, Conditions: conditions}
}

// NewOr returns an "or" group of the conditions.
func NewOr(conditions ...Condition) *LogicalCondition {
	return &LogicalCondition{Type: Or, Conditions: conditions}
}

// Add appends conditions to the group and returns it.
func (c *LogicalCondition) Add(conditions ...Condition) *LogicalCondition {
	c.Conditions = append(c.Conditions, conditions...)
	return c
}

// Walk calls fn for c and, depth first, for every nested condition. It
// stops descending into a group when fn returns false.
func Walk(c Condition, fn func(Condition) bool) {
	if c == nil || !fn(c) {
		return
	}
	if lc, ok := c.(*LogicalCondition); ok {
		for _, child := range lc.Conditions {
			Walk(child, fn)
		}
	}
}

// Properties returns the property conditions nested in c, in order.
func Properties(c Condition) []*PropertyCondition {
	var props []*PropertyCondition
	Walk(c, func(c Condition) bool {
		if pc, ok := c.(*PropertyCondition); ok {
			props = append(props, pc)
		}
		return true
	})
	return props
}
