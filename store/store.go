// Package store routes compiled queries to the data store owning their
// entity.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/veloxext"
	"github.com/syssam/veloxext/condition"
	"github.com/syssam/veloxext/config"
	"github.com/syssam/veloxext/dialect"
	"github.com/syssam/veloxext/dialect/sql"
	"github.com/syssam/veloxext/dialect/sql/render"
	"github.com/syssam/veloxext/jpql"
	"github.com/syssam/veloxext/metadata"
)

// ErrNoStore is returned when an entity's store has no registered driver.
var ErrNoStore = errors.New("store: no driver registered")

// Registry maps logical store names to drivers.
type Registry struct {
	graph   *metadata.Graph
	builder *jpql.QueryBuilder
	filters render.FilterSource
	now     func() time.Time
	log     *slog.Logger

	mu      sync.RWMutex
	drivers map[string]dialect.Driver
}

// Option configures a Registry.
type Option func(*Registry)

// WithFilters sets the source of entity load filters, usually the
// *mapping.Compiled produced by bootstrapping.
func WithFilters(f render.FilterSource) Option {
	return func(r *Registry) {
		r.filters = f
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// WithClock sets the clock used for date interval conditions.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithQueryBuilder replaces the default query builder.
func WithQueryBuilder(b *jpql.QueryBuilder) Option {
	return func(r *Registry) {
		r.builder = b
	}
}

// NewRegistry returns an empty registry over the graph.
func NewRegistry(g *metadata.Graph, opts ...Option) *Registry {
	r := &Registry{
		graph:   g,
		now:     time.Now,
		log:     slog.Default(),
		drivers: make(map[string]dialect.Driver),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.builder == nil {
		r.builder = jpql.NewQueryBuilder(g)
	}
	return r
}

// Open connects every configured store. Connections that were opened
// are closed again when a later one fails.
func Open(ctx context.Context, cfg *config.Config, g *metadata.Graph, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := NewRegistry(g, opts...)
	for _, name := range cfg.StoreNames() {
		s := cfg.Stores[name]
		drv, err := sql.Open(s.Dialect, s.DSN)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("store: open %s: %w", name, err), r.Close())
		}
		if err := drv.DB().PingContext(ctx); err != nil {
			return nil, errors.Join(fmt.Errorf("store: ping %s: %w", name, err), drv.Close(), r.Close())
		}
		r.Register(name, r.wrap(cfg, drv))
		r.log.Debug("store: opened", "store", name, "dialect", s.Dialect)
	}
	return r, nil
}

func (r *Registry) wrap(cfg *config.Config, drv dialect.Driver) dialect.Driver {
	if cfg.Debug {
		drv = sql.NewDebugDriver(drv, r.log)
	}
	if cfg.SlowThreshold > 0 {
		drv = sql.NewStatsDriver(drv, sql.WithSlowThreshold(cfg.SlowThreshold), sql.WithSlowQueryLog(r.log))
	}
	return drv
}

// Register adds or replaces the driver of a store.
func (r *Registry) Register(name string, drv dialect.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[name] = drv
}

// Driver returns the driver of a store.
func (r *Registry) Driver(name string) (dialect.Driver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	drv, ok := r.drivers[name]
	return drv, ok
}

// Stores returns the registered store names, sorted.
func (r *Registry) Stores() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Renderer returns the renderer for a store's dialect.
func (r *Registry) Renderer(drv dialect.Driver) *render.Renderer {
	return &render.Renderer{
		Dialect: drv.Dialect(),
		Graph:   r.graph,
		Filters: r.filters,
		Now:     r.now,
		Log:     r.log,
	}
}

// Select compiles the condition against the entity and loads the
// matching rows.
func (r *Registry) Select(ctx context.Context, entity string, c condition.Condition) ([]map[string]any, error) {
	q, err := r.builder.Build(entity, c)
	if err != nil {
		return nil, err
	}
	return r.Load(ctx, q)
}

// Load renders the query for the store of its entity and returns the
// rows keyed by column name.
func (r *Registry) Load(ctx context.Context, q *jpql.Query) ([]map[string]any, error) {
	e, err := r.graph.Lookup(q.Entity)
	if err != nil {
		return nil, err
	}
	drv, ok := r.Driver(e.Store)
	if !ok {
		return nil, veloxext.NewQueryError(e.Name, e.Store, ErrNoStore)
	}
	stmt, err := r.Renderer(drv).Render(q)
	if err != nil {
		return nil, veloxext.NewQueryError(e.Name, e.Store, err)
	}
	rows := &sql.Rows{}
	if err := drv.Query(ctx, stmt.SQL, stmt.Args, rows); err != nil {
		return nil, veloxext.NewQueryError(e.Name, e.Store, err)
	}
	result, err := sql.ScanMaps(rows)
	if err != nil {
		return nil, veloxext.NewQueryError(e.Name, e.Store, err)
	}
	return result, nil
}

// Close closes every driver.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for name, drv := range r.drivers {
		if err := drv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: close %s: %w", name, err))
		}
	}
	clear(r.drivers)
	return errors.Join(errs...)
}
