package condition

import "fmt"

// Operation is the comparison applied by a PropertyCondition.
type Operation string

// Property condition operations.
const (
	OpEqual             Operation = "equal"
	OpNotEqual          Operation = "not_equal"
	OpGreater           Operation = "greater"
	OpGreaterOrEqual    Operation = "greater_or_equal"
	OpLess              Operation = "less"
	OpLessOrEqual       Operation = "less_or_equal"
	OpContains          Operation = "contains"
	OpNotContains       Operation = "not_contains"
	OpStartsWith        Operation = "starts_with"
	OpEndsWith          Operation = "ends_with"
	OpInList            Operation = "in_list"
	OpNotInList         Operation = "not_in_list"
	OpIsSet             Operation = "is_set"
	OpIsNotSet          Operation = "is_not_set"
	OpIsCollectionEmpty Operation = "is_collection_empty"
	OpInInterval        Operation = "in_interval"
)

var binaryTokens = map[Operation]string{
	OpEqual:          "=",
	OpNotEqual:       "<>",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpContains:       "like",
	OpNotContains:    "not like",
	OpStartsWith:     "like",
	OpEndsWith:       "like",
	OpInList:         "in",
	OpNotInList:      "not in",
}

// Operations returns every operation in declaration order.
func Operations() []Operation {
	return []Operation{
		OpEqual, OpNotEqual, OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual,
		OpContains, OpNotContains, OpStartsWith, OpEndsWith, OpInList, OpNotInList,
		OpIsSet, OpIsNotSet, OpIsCollectionEmpty, OpInInterval,
	}
}

// ParseOperation returns the operation with the given name.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !op.IsValid() {
		return "", fmt.Errorf("condition: unknown operation %q", s)
	}
	return op, nil
}

// IsValid reports whether o is a known operation.
func (o Operation) IsValid() bool {
	if _, ok := binaryTokens[o]; ok {
		return true
	}
	return o.IsUnary() || o.IsInInterval()
}

// IsUnary reports whether the operation takes no parameter.
func (o Operation) IsUnary() bool {
	switch o {
	case OpIsSet, OpIsNotSet, OpIsCollectionEmpty:
		return true
	}
	return false
}

// IsInInterval reports whether the operation renders a date interval
// expression.
func (o Operation) IsInInterval() bool { return o == OpInInterval }

// IsBinary reports whether the operation compares against one parameter.
func (o Operation) IsBinary() bool {
	_, ok := binaryTokens[o]
	return ok
}

// IsLike reports whether the operation is a pattern match.
func (o Operation) IsLike() bool {
	switch o {
	case OpContains, OpNotContains, OpStartsWith, OpEndsWith:
		return true
	}
	return false
}

// Token returns the query-language operator. Unary operations depend on
// the condition value: a false value negates is_set and
// is_collection_empty. Interval operations have no token; see
// PropertyCondition.Operator.
func (o Operation) Token(value any) string {
	switch o {
	case OpIsSet:
		if b, ok := value.(bool); ok && !b {
			return "is null"
		}
		return "is not null"
	case OpIsNotSet:
		return "is null"
	case OpIsCollectionEmpty:
		if b, ok := value.(bool); ok && !b {
			return "is not empty"
		}
		return "is empty"
	}
	return binaryTokens[o]
}
