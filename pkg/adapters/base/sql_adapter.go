package base

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rodgg/geonames-db/pkg/adapters"
)

// SQLConn - общее ядро адаптеров на database/sql (MySQL, SQLite, MS SQL).
// Реализует SQL-часть интерфейса adapters.Adapter и дефолты для
// возможностей, которых у этих диалектов нет: BulkCopy и механизм
// расширений остаются за PostgreSQL.
//
// Диалект-специфичные адаптеры встраивают SQLConn и добавляют
// Connect, Dialect, Capabilities, DatabaseVersion и TableExists.
type SQLConn struct {
	DB *sql.DB
}

// Close закрывает подключение
func (c *SQLConn) Close(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	err := c.DB.Close()
	c.DB = nil
	return err
}

// Ping проверяет доступность БД
func (c *SQLConn) Ping(ctx context.Context) error {
	if c.DB == nil {
		return fmt.Errorf("not connected")
	}
	return c.DB.PingContext(ctx)
}

// Exec выполняет DDL/DML-оператор
func (c *SQLConn) Exec(ctx context.Context, query string, args ...any) error {
	_, err := c.DB.ExecContext(ctx, query, args...)
	return err
}

// Query выполняет SELECT и возвращает курсор
func (c *SQLConn) Query(ctx context.Context, query string, args ...any) (adapters.Rows, error) {
	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

// QueryCount выполняет запрос, возвращающий одно целое значение
func (c *SQLConn) QueryCount(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	if err := c.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// BeginTx начинает транзакцию
func (c *SQLConn) BeginTx(ctx context.Context) (adapters.Tx, error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqlTx{tx: tx}, nil
}

// BulkCopy: нативного протокола массовой загрузки нет,
// вызывающий код переключается на ChunkedInserter
func (c *SQLConn) BulkCopy(ctx context.Context, table string, columns []string, src adapters.RowSource) (int64, error) {
	return 0, adapters.ErrBulkCopyUnsupported
}

// HasExtension: механизма расширений нет
func (c *SQLConn) HasExtension(ctx context.Context, name string) (bool, error) {
	return false, nil
}

// HasType: каталога пользовательских типов нет
func (c *SQLConn) HasType(ctx context.Context, name string) (bool, error) {
	return false, nil
}

// CreateExtension: no-op, фактический результат виден через HasExtension
func (c *SQLConn) CreateExtension(ctx context.Context, name string) error {
	return nil
}

// ========== Wrappers ==========

// sqlRows оборачивает *sql.Rows в adapters.Rows
type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *sqlRows) Err() error { return r.rows.Err() }
func (r *sqlRows) Close() { r.rows.Close() }

// sqlTx оборачивает *sql.Tx в adapters.Tx
type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *sqlTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}
