// Package postgres реализует адаптер PostgreSQL поверх pgx/v5.
//
// Единственный диалект с нативным протоколом массовой загрузки (COPY)
// и геопространственными расширениями (postgis, earthdistance), поэтому
// именно он объявляет BulkCopy и GeoExtensions в Capabilities.
package postgres

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rodgg/geonames-db/pkg/adapters"
)

// Компилируемая проверка соответствия интерфейсу
var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	adapters.Register("postgres", func() adapters.Adapter {
		return New()
	})
}

// Adapter - адаптер PostgreSQL на пуле подключений pgxpool
type Adapter struct {
	pool *pgxpool.Pool
	cfg  adapters.Config
}

// New создает новый неподключенный адаптер PostgreSQL
func New() *Adapter {
	return &Adapter{}
}

// ========== Lifecycle ==========

// Connect устанавливает подключение к PostgreSQL
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to parse postgres DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.Schema != "" {
		poolCfg.ConnConfig.RuntimeParams["search_path"] = cfg.Schema
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.pool = pool
	a.cfg = cfg
	return nil
}

// Close закрывает пул подключений
func (a *Adapter) Close(ctx context.Context) error {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return nil
}

// Ping проверяет доступность БД
func (a *Adapter) Ping(ctx context.Context) error {
	if a.pool == nil {
		return fmt.Errorf("not connected")
	}
	return a.pool.Ping(ctx)
}

// ========== Metadata ==========

// Dialect возвращает "postgres"
func (a *Adapter) Dialect() string {
	return "postgres"
}

// Capabilities возвращает возможности PostgreSQL
func (a *Adapter) Capabilities() adapters.Capabilities {
	return adapters.Capabilities{
		AlterPrimaryKey: true,
		ForeignKeys:     true,
		CascadeDrop:     true,
		BulkCopy:        true,
		GeoExtensions:   true,
		MaxBindParams:   65535,
	}
}

// DatabaseVersion возвращает версию PostgreSQL
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := a.pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

// ========== SQL ==========

// Exec выполняет DDL/DML-оператор
func (a *Adapter) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := a.pool.Exec(ctx, sql, args...)
	return err
}

// Query выполняет SELECT и возвращает курсор
func (a *Adapter) Query(ctx context.Context, sql string, args ...any) (adapters.Rows, error) {
	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

// QueryCount выполняет запрос, возвращающий одно целое значение
func (a *Adapter) QueryCount(ctx context.Context, sql string, args ...any) (int64, error) {
	var count int64
	if err := a.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// BeginTx начинает транзакцию
func (a *Adapter) BeginTx(ctx context.Context) (adapters.Tx, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgxTx{tx: tx}, nil
}

// ========== Schema ==========

// TableExists проверяет существование таблицы в текущей схеме
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	count, err := a.QueryCount(ctx,
		`SELECT count(*) FROM information_schema.tables
		 WHERE table_name = $1 AND table_schema = current_schema()`,
		tableName)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return count > 0, nil
}

// ========== Bulk load ==========

// BulkCopy загружает строки через протокол COPY
func (a *Adapter) BulkCopy(ctx context.Context, table string, columns []string, src adapters.RowSource) (int64, error) {
	n, err := a.pool.CopyFrom(ctx,
		pgx.Identifier{table},
		columns,
		&copySource{src: src},
	)
	if err != nil {
		return n, fmt.Errorf("COPY into %s failed: %w", table, err)
	}
	return n, nil
}

// copySource адаптирует adapters.RowSource к протоколу pgx.CopyFromSource
type copySource struct {
	src  adapters.RowSource
	row  []any
	err  error
	done bool
}

func (c *copySource) Next() bool {
	if c.done {
		return false
	}
	row, err := c.src.Next()
	if err == io.EOF {
		c.done = true
		return false
	}
	if err != nil {
		c.err = err
		c.done = true
		return false
	}
	c.row = row
	return true
}

func (c *copySource) Values() ([]any, error) {
	return c.row, nil
}

func (c *copySource) Err() error {
	return c.err
}

// ========== Capability probes ==========

// HasExtension проверяет наличие расширения в pg_extension
func (a *Adapter) HasExtension(ctx context.Context, name string) (bool, error) {
	count, err := a.QueryCount(ctx,
		"SELECT count(*) FROM pg_extension WHERE extname = $1", name)
	if err != nil {
		return false, fmt.Errorf("failed to probe extension %s: %w", name, err)
	}
	return count > 0, nil
}

// HasType проверяет фактическую регистрацию типа в pg_type.
// Облачные форки PostgreSQL (например, PolarDB с ganos_spatialref)
// могут отчитываться об установленном расширении, не регистрируя
// сам тип geography.
func (a *Adapter) HasType(ctx context.Context, name string) (bool, error) {
	count, err := a.QueryCount(ctx,
		"SELECT count(*) FROM pg_type WHERE typname = $1", name)
	if err != nil {
		return false, fmt.Errorf("failed to probe type %s: %w", name, err)
	}
	return count > 0, nil
}

// CreateExtension выполняет CREATE EXTENSION IF NOT EXISTS
func (a *Adapter) CreateExtension(ctx context.Context, name string) error {
	return a.Exec(ctx, fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS "%s"`, name))
}

// ========== Wrappers ==========

// pgxRows оборачивает pgx.Rows в adapters.Rows
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Err() error { return r.rows.Err() }
func (r *pgxRows) Close() { r.rows.Close() }

// pgxTx оборачивает pgx.Tx в adapters.Tx
type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := t.tx.Exec(ctx, sql, args...)
	return err
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
