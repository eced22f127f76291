package metadata

import "github.com/go-openapi/inflect"

// ImplicitTable returns the table name used for an entity without an
// explicit table mapping: "OrderLine" becomes "order_lines".
func ImplicitTable(entity string) string {
	return inflect.Underscore(inflect.Pluralize(entity))
}

// ImplicitColumn returns the column name used for a scalar property
// without an explicit column mapping.
func ImplicitColumn(property string) string {
	return inflect.Underscore(property)
}

// ImplicitJoinColumn returns the foreign-key column of an unmapped to-one
// association: "customer" becomes "customer_id".
func ImplicitJoinColumn(property string) string {
	return inflect.Underscore(property) + "_id"
}

// DerivedReferenceID returns the conventional name of the scalar holding
// the identifier of a cross-store reference: "customer" becomes
// "customerId".
func DerivedReferenceID(property string) string {
	return inflect.CamelizeDownFirst(inflect.Underscore(property) + "_id")
}
