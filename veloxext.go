// Package veloxext layers multi-datastore ORM conventions on top of a
// relational mapping engine: soft deletion, cross-store references and
// dynamic query-condition generation.
//
// The root package only holds what every sub-package shares. The work is
// done in:
//
//   - metadata: the entity metadata graph and its pre-resolved lookups
//   - condition: filter condition variants and operations
//   - jpql: the condition compiler (generator chain and query builder)
//   - mapping: the mapping bootstrap model and its enhancer pipeline
//   - softdelete: the soft-deletion filter injector
//   - dialect/sql/render and store: rendering and executing compiled queries
package veloxext

// CaseInsensitiveMarker prefixes a parameter value that must be matched
// case-insensitively. It is not part of the pattern; the query executor
// strips it and folds both sides of the comparison.
const CaseInsensitiveMarker = "(?i)"

// MainStore is the name of the default logical data store.
const MainStore = "main"
