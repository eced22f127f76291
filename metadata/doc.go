// Package metadata holds the entity metadata graph shared by the
// condition compiler and the soft-deletion enhancer.
//
// A Graph is built once from entity definitions and is immutable
// afterwards. Everything the consumers look up per query or per binding
// is resolved at construction time:
//
//	g, err := metadata.New(
//		&metadata.Entity{Name: "Customer", Store: "crm"},
//		&metadata.Entity{Name: "Order", Declared: []*metadata.Property{
//			{Name: "customer", Cardinality: metadata.ManyToOne, Target: "Customer"},
//			{Name: "customerId"},
//			{Name: "deletedAt", DeletedDate: true, Column: "deleted_at"},
//		}},
//	)
//	order := g.Entity("Order")
//	g.IsSoftDeletable(order)                                        // true
//	g.CrossStoreReferenceID("main", order.Property("customer"))     // "customerId"
package metadata
