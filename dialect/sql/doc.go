// Package sql implements dialect.Driver over database/sql.
//
// Opening a store connection:
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
// Drivers compose: NewStatsDriver counts statements and reports slow ones,
// NewDebugDriver logs every statement through slog.
//
//	drv := sql.NewStatsDriver(sql.NewDebugDriver(base, logger),
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(logger),
//	)
//
// Query results land in a *Rows, which ScanMaps turns into maps keyed by
// column name.
package sql
