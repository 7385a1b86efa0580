// Package mssql реализует адаптер Microsoft SQL Server на go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/rodgg/geonames-db/pkg/adapters"
	"github.com/rodgg/geonames-db/pkg/adapters/base"
)

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	adapters.Register("mssql", func() adapters.Adapter {
		return New()
	})
}

// Adapter - адаптер MS SQL Server
type Adapter struct {
	base.SQLConn
}

// New создает новый неподключенный адаптер MS SQL
func New() *Adapter {
	return &Adapter{}
}

// Connect устанавливает подключение к SQL Server
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open mssql connection: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping mssql: %w", err)
	}

	a.DB = db
	return nil
}

// Dialect возвращает "mssql"
func (a *Adapter) Dialect() string {
	return "mssql"
}

// Capabilities возвращает возможности SQL Server
func (a *Adapter) Capabilities() adapters.Capabilities {
	return adapters.Capabilities{
		AlterPrimaryKey: true,
		ForeignKeys:     true,
		CascadeDrop:     false,
		BulkCopy:        false,
		GeoExtensions:   false,
		// Жесткий серверный лимит 2100 параметров на запрос
		MaxBindParams:   2100,
	}
}

// DatabaseVersion возвращает версию SQL Server
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := a.DB.QueryRowContext(ctx, "SELECT @@VERSION").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

// TableExists проверяет существование таблицы
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	count, err := a.QueryCount(ctx,
		`SELECT count(*) FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_NAME = @p1 AND TABLE_TYPE = 'BASE TABLE'`,
		tableName)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return count > 0, nil
}
