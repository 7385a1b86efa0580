// Package mysql реализует адаптер MySQL/MariaDB на go-sql-driver/mysql.
//
// Массовая загрузка идет через chunked INSERT: LOAD DATA INFILE требует
// файловых привилегий сервера и недоступен на managed-инсталляциях.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rodgg/geonames-db/pkg/adapters"
	"github.com/rodgg/geonames-db/pkg/adapters/base"
)

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	adapters.Register("mysql", func() adapters.Adapter {
		return New()
	})
}

// Adapter - адаптер MySQL
type Adapter struct {
	base.SQLConn
}

// New создает новый неподключенный адаптер MySQL
func New() *Adapter {
	return &Adapter{}
}

// Connect устанавливает подключение к MySQL
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	a.DB = db
	return nil
}

// Dialect возвращает "mysql"
func (a *Adapter) Dialect() string {
	return "mysql"
}

// Capabilities возвращает возможности MySQL
func (a *Adapter) Capabilities() adapters.Capabilities {
	return adapters.Capabilities{
		AlterPrimaryKey: true,
		ForeignKeys:     true,
		CascadeDrop:     false,
		BulkCopy:        false,
		GeoExtensions:   false,
		MaxBindParams:   65535,
	}
}

// DatabaseVersion возвращает версию MySQL
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := a.DB.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

// TableExists проверяет существование таблицы в текущей базе
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	count, err := a.QueryCount(ctx,
		`SELECT count(*) FROM information_schema.tables
		 WHERE table_name = ? AND table_schema = DATABASE()`,
		tableName)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return count > 0, nil
}
