package schema

import (
	"fmt"
	"strings"
)

// Builder генерирует DDL для конкретного диалекта СУБД.
// Поддерживаемые диалекты: postgres, mysql, sqlite, mssql.
type Builder struct {
	dialect string
}

// NewBuilder создает DDL-генератор для диалекта
func NewBuilder(dialect string) *Builder {
	return &Builder{dialect: dialect}
}

// Dialect возвращает диалект генератора
func (b *Builder) Dialect() string {
	return b.dialect
}

// QuoteIdentifier экранирует идентификатор согласно диалекту
func (b *Builder) QuoteIdentifier(name string) string {
	switch b.dialect {
	case "mysql":
		return "`" + name + "`"
	case "mssql":
		return "[" + name + "]"
	default:
		return `"` + name + `"`
	}
}

// CreateTableSQL строит CREATE TABLE IF NOT EXISTS для таблицы.
// Первичные ключи намеренно не объявляются: ими владеет IndexBuilder,
// который добавляет constraint-ы после bulk-загрузки.
func (b *Builder) CreateTableSQL(t TableDef) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = fmt.Sprintf("%s %s", b.QuoteIdentifier(c.Name), b.ColumnType(c))
	}

	// MS SQL не поддерживает CREATE TABLE IF NOT EXISTS
	if b.dialect == "mssql" {
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (\n  %s\n)",
			t.Name, b.QuoteIdentifier(t.Name), strings.Join(cols, ",\n  "),
		)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		b.QuoteIdentifier(t.Name), strings.Join(cols, ",\n  "),
	)
}

// DropTableSQL строит DROP TABLE IF EXISTS.
// cascade добавляет CASCADE на диалектах, которые его понимают (PostgreSQL);
// на остальных зависимые таблицы должны удаляться явно в правильном порядке.
func (b *Builder) DropTableSQL(name string, cascade bool) string {
	switch b.dialect {
	case "postgres":
		if cascade {
			return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", b.QuoteIdentifier(name))
		}
		return fmt.Sprintf("DROP TABLE IF EXISTS %s", b.QuoteIdentifier(name))
	case "mssql":
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s", name, b.QuoteIdentifier(name))
	default:
		return fmt.Sprintf("DROP TABLE IF EXISTS %s", b.QuoteIdentifier(name))
	}
}

// CreateIndexSQL строит CREATE INDEX для вторичного индекса
func (b *Builder) CreateIndexSQL(idx IndexDef, s *Geonames) string {
	cols := make([]string, len(idx.Columns))
	for i, col := range idx.Columns {
		cols[i] = b.indexColumn(idx.Table, col, s)
	}
	return fmt.Sprintf(
		"CREATE INDEX %s ON %s (%s)",
		b.QuoteIdentifier(idx.Name), b.QuoteIdentifier(idx.Table), strings.Join(cols, ", "),
	)
}

// indexColumn возвращает выражение колонки внутри CREATE INDEX.
// MySQL требует префиксную длину для индексов по TEXT-колонкам.
func (b *Builder) indexColumn(table, col string, s *Geonames) string {
	quoted := b.QuoteIdentifier(col)
	if b.dialect != "mysql" || s == nil {
		return quoted
	}
	t := s.Table(table)
	if t == nil {
		return quoted
	}
	if c := t.Column(col); c != nil && c.Type == TypeText {
		return quoted + "(191)"
	}
	return quoted
}

// AddPrimaryKeySQL строит ALTER TABLE ... ADD CONSTRAINT ... PRIMARY KEY.
// SQLite такой синтаксис не поддерживает — вызывающий код обязан
// проверить возможности диалекта до генерации.
func (b *Builder) AddPrimaryKeySQL(pk PrimaryKeyDef) string {
	only := ""
	if b.dialect == "postgres" {
		only = "ONLY "
	}
	return fmt.Sprintf(
		"ALTER TABLE %s%s ADD CONSTRAINT %s PRIMARY KEY (%s)",
		only, b.QuoteIdentifier(pk.Table), b.QuoteIdentifier(pk.Name), b.QuoteIdentifier(pk.Column),
	)
}

// AddForeignKeySQL строит ALTER TABLE ... ADD CONSTRAINT ... FOREIGN KEY
func (b *Builder) AddForeignKeySQL(fk ForeignKeyDef) string {
	only := ""
	if b.dialect == "postgres" {
		only = "ONLY "
	}
	return fmt.Sprintf(
		"ALTER TABLE %s%s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		only, b.QuoteIdentifier(fk.Table), b.QuoteIdentifier(fk.Name),
		b.QuoteIdentifier(fk.Column), b.QuoteIdentifier(fk.RefTable), b.QuoteIdentifier(fk.RefColumn),
	)
}

// ColumnType возвращает тип колонки в синтаксисе диалекта
func (b *Builder) ColumnType(c ColumnDef) string {
	switch b.dialect {
	case "postgres":
		return b.postgresType(c)
	case "mysql":
		return b.mysqlType(c)
	case "mssql":
		return b.mssqlType(c)
	default:
		return b.sqliteType(c)
	}
}

func (b *Builder) postgresType(c ColumnDef) string {
	switch c.Type {
	case TypeInteger:
		return "INTEGER"
	case TypeBigInt:
		return "BIGINT"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeReal:
		return "DOUBLE PRECISION"
	case TypeNumeric:
		return fmt.Sprintf("NUMERIC(%d,%d)", c.Precision, c.Scale)
	case TypeVarchar:
		return fmt.Sprintf("VARCHAR(%d)", c.Length)
	case TypeChar:
		return fmt.Sprintf("CHAR(%d)", c.Length)
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	case TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (b *Builder) mysqlType(c ColumnDef) string {
	switch c.Type {
	case TypeInteger:
		return "INT"
	case TypeBigInt:
		return "BIGINT"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeReal:
		return "DOUBLE"
	case TypeNumeric:
		return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale)
	case TypeVarchar:
		return fmt.Sprintf("VARCHAR(%d)", c.Length)
	case TypeChar:
		return fmt.Sprintf("CHAR(%d)", c.Length)
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	case TypeTimestamp:
		// DATETIME: без ограничений диапазона TIMESTAMP и без auto-update
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func (b *Builder) mssqlType(c ColumnDef) string {
	switch c.Type {
	case TypeInteger:
		return "INT"
	case TypeBigInt:
		return "BIGINT"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeReal:
		return "FLOAT"
	case TypeNumeric:
		return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale)
	case TypeVarchar:
		return fmt.Sprintf("NVARCHAR(%d)", c.Length)
	case TypeChar:
		return fmt.Sprintf("NCHAR(%d)", c.Length)
	case TypeBoolean:
		return "BIT"
	case TypeDate:
		return "DATE"
	case TypeTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// sqliteType: SQLite использует type affinity, поэтому достаточно
// базовых классов хранения
func (b *Builder) sqliteType(c ColumnDef) string {
	switch c.Type {
	case TypeInteger, TypeBigInt, TypeSmallInt:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	case TypeNumeric:
		return "NUMERIC"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	case TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
