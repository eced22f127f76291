package render_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloxext"
	"github.com/syssam/veloxext/condition"
	"github.com/syssam/veloxext/dialect"
	"github.com/syssam/veloxext/dialect/sql/render"
	"github.com/syssam/veloxext/jpql"
	"github.com/syssam/veloxext/metadata"
)

type filters map[string]string

func (f filters) Filter(entity string) string { return f[entity] }

func graph(t *testing.T) *metadata.Graph {
	t.Helper()
	return metadata.MustNew(
		&metadata.Entity{Name: "Customer", Store: "crm", Declared: []*metadata.Property{
			{Name: "email"},
		}},
		&metadata.Entity{Name: "Line"},
		&metadata.Entity{Name: "Order", Declared: []*metadata.Property{
			{Name: "number"},
			{Name: "createdAt", Column: "created_at"},
			{Name: "customer", Cardinality: metadata.ManyToOne, Target: "Customer"},
			{Name: "customerId", Column: "customer_ref"},
			{Name: "lines", Cardinality: metadata.OneToMany, Target: "Line"},
			{Name: "deletedDate", Column: "deleted_date", DeletedDate: true},
		}},
	)
}

func build(t *testing.T, g *metadata.Graph, c condition.Condition) *jpql.Query {
	t.Helper()
	q, err := jpql.NewQueryBuilder(g).Build("Order", c)
	require.NoError(t, err)
	return q
}

func TestRender(t *testing.T) {
	g := graph(t)
	tests := []struct {
		name    string
		dialect string
		cond    condition.Condition
		filters render.FilterSource
		sql     string
		args    []any
	}{
		{
			name:    "no_condition",
			dialect: dialect.SQLite,
			sql:     "SELECT e.* FROM orders e",
		},
		{
			name:    "filter_only",
			dialect: dialect.SQLite,
			filters: filters{"Order": "deleted_date is null"},
			sql:     "SELECT e.* FROM orders e WHERE (e.deleted_date is null)",
		},
		{
			name:    "equal_postgres",
			dialect: dialect.Postgres,
			cond:    condition.Equal("number", 7),
			sql:     "SELECT e.* FROM orders e WHERE (e.number = $1)",
			args:    []any{7},
		},
		{
			name:    "equal_mysql_with_filter",
			dialect: dialect.MySQL,
			cond:    condition.Equal("number", 7),
			filters: filters{"Order": "deleted_date is null"},
			sql:     "SELECT e.* FROM orders e WHERE (e.number = ?) AND (e.deleted_date is null)",
			args:    []any{7},
		},
		{
			name:    "filter_literal_with_colon",
			dialect: dialect.Postgres,
			cond:    condition.Equal("number", 7),
			filters: filters{"Order": "kind = 'a:b' AND \"note\" <> ':x' AND deleted_date is null"},
			sql:     "SELECT e.* FROM orders e WHERE (e.number = $1) AND (e.kind = 'a:b' AND \"note\" <> ':x' AND e.deleted_date is null)",
			args:    []any{7},
		},
		{
			name:    "cross_store_reference",
			dialect: dialect.Postgres,
			cond:    condition.Equal("customer", &metadata.Instance{Entity: "Customer", ID: "c-1"}),
			sql:     "SELECT e.* FROM orders e WHERE (e.customer_ref = $1)",
			args:    []any{"c-1"},
		},
		{
			name:    "in_list",
			dialect: dialect.Postgres,
			cond:    condition.InList("number", []int{1, 2, 3}),
			sql:     "SELECT e.* FROM orders e WHERE (e.number in ($1, $2, $3))",
			args:    []any{1, 2, 3},
		},
		{
			name:    "empty_list",
			dialect: dialect.SQLite,
			cond:    condition.InList("number", []int{}),
			sql:     "SELECT e.* FROM orders e WHERE (e.number in (NULL))",
		},
		{
			name:    "contains_folds_case",
			dialect: dialect.SQLite,
			cond:    condition.Contains("number", "AbC"),
			sql:     "SELECT e.* FROM orders e WHERE (lower(e.number) like ?)",
			args:    []any{"%abc%"},
		},
		{
			name:    "unary",
			dialect: dialect.SQLite,
			cond:    condition.IsNotSet("createdAt"),
			sql:     "SELECT e.* FROM orders e WHERE (e.created_at is null)",
		},
		{
			name:    "logical",
			dialect: dialect.Postgres,
			cond:    condition.NewOr(condition.Equal("number", 1), condition.Greater("number", 5)),
			sql:     "SELECT e.* FROM orders e WHERE ((e.number = $1 or e.number > $2))",
			args:    []any{1, 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &render.Renderer{Dialect: tt.dialect, Graph: g, Filters: tt.filters}
			stmt, err := r.Render(build(t, g, tt.cond))
			require.NoError(t, err)
			assert.Equal(t, tt.sql, stmt.SQL)
			assert.Equal(t, tt.args, stmt.Args)
		})
	}
}

func TestRenderInterval(t *testing.T) {
	g := graph(t)
	now := time.Date(2026, 3, 15, 13, 45, 10, 0, time.UTC)
	r := &render.Renderer{Dialect: dialect.Postgres, Graph: g, Now: func() time.Time { return now }}

	tests := []struct {
		interval string
		from, to time.Time
	}{
		{"predefined today", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)},
		{"predefined yesterday", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"last 2 month", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"next 1 year including_current", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"last 3 hour including_current", time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC), time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			stmt, err := r.Render(build(t, g, condition.InInterval("createdAt", tt.interval)))
			require.NoError(t, err)
			assert.Equal(t, "SELECT e.* FROM orders e WHERE (e.created_at >= $1 AND e.created_at < $2)", stmt.SQL)
			assert.Equal(t, []any{tt.from, tt.to}, stmt.Args)
		})
	}
}

func TestRenderIntervalReadsClockOnce(t *testing.T) {
	g := graph(t)
	calls := 0
	start := time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC)
	r := &render.Renderer{Dialect: dialect.Postgres, Graph: g, Now: func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * time.Hour)
	}}

	stmt, err := r.Render(build(t, g, condition.InInterval("createdAt", "predefined today")))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []any{
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
	}, stmt.Args)
}

func TestRenderErrors(t *testing.T) {
	g := graph(t)
	r := &render.Renderer{Dialect: dialect.SQLite, Graph: g}

	t.Run("join", func(t *testing.T) {
		_, err := r.Render(&jpql.Query{Entity: "Order", Alias: "e", Join: "join e.lines l"})
		assert.ErrorIs(t, err, veloxext.ErrUnsupported)
	})
	t.Run("unknown_entity", func(t *testing.T) {
		_, err := r.Render(&jpql.Query{Entity: "Invoice", Alias: "e"})
		assert.ErrorIs(t, err, veloxext.ErrUnknownEntity)
	})
	t.Run("property_path", func(t *testing.T) {
		_, err := r.Render(&jpql.Query{Entity: "Order", Alias: "e", Where: "e.customer.email = :p", Parameters: map[string]any{"p": "x"}})
		assert.ErrorIs(t, err, veloxext.ErrUnsupported)
	})
	t.Run("collection", func(t *testing.T) {
		_, err := r.Render(build(t, g, condition.IsCollectionEmpty("lines")))
		assert.ErrorIs(t, err, veloxext.ErrUnsupported)
	})
	t.Run("unknown_property", func(t *testing.T) {
		_, err := r.Render(&jpql.Query{Entity: "Order", Alias: "e", Where: "e.total > 1"})
		assert.ErrorContains(t, err, "unknown property total")
	})
	t.Run("missing_parameter", func(t *testing.T) {
		_, err := r.Render(&jpql.Query{Entity: "Order", Alias: "e", Where: "e.number = :n"})
		assert.ErrorContains(t, err, "missing parameter n")
	})
}

func TestRenderLogs(t *testing.T) {
	var buf bytes.Buffer
	g := graph(t)
	r := &render.Renderer{
		Dialect: dialect.SQLite,
		Graph:   g,
		Log:     slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
	_, err := r.Render(build(t, g, nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `sql="SELECT e.* FROM orders e"`)
}

func TestQualify(t *testing.T) {
	tests := []struct {
		filter, want string
	}{
		{"", ""},
		{"deleted_date is null", "e.deleted_date is null"},
		{"tenant = 'a' AND deleted_date is null", "e.tenant = 'a' AND e.deleted_date is null"},
		{"x.status = 'it''s' or lower(name) like 'a%'", "x.status = 'it''s' or lower(e.name) like 'a%'"},
		{"version > 2", "e.version > 2"},
		{`"kind" = 'a' and status is null`, `"kind" = 'a' and e.status is null`},
		{`"Order Status" = 'x:y'`, `"Order Status" = 'x:y'`},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assert.Equal(t, tt.want, render.Qualify(tt.filter, "e"))
		})
	}
}
