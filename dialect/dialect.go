package dialect

import (
	"context"
	"fmt"
	"slices"
)

// Dialect names. They double as the database/sql driver names the store
// registry opens connections with.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Supported returns the dialects a store can be configured with.
func Supported() []string {
	return []string{Postgres, MySQL, SQLite}
}

// Validate returns an error for unknown dialect names.
func Validate(name string) error {
	if !slices.Contains(Supported(), name) {
		return fmt.Errorf("dialect: unsupported dialect %q", name)
	}
	return nil
}

// Querier runs read statements.
type Querier interface {
	// Query executes a query that returns rows, typically a SELECT in
	// SQL. It scans the result into the pointer v.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for a
// store connection.
type Driver interface {
	Querier
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}
