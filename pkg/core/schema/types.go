package schema

// DataType представляет тип данных колонки
type DataType string

// Поддерживаемые типы данных (подмножество, достаточное для справочника GeoNames)
const (
	TypeInteger   DataType = "INTEGER"
	TypeBigInt    DataType = "BIGINT"
	TypeSmallInt  DataType = "SMALLINT"
	TypeReal      DataType = "REAL"
	TypeNumeric   DataType = "NUMERIC"
	TypeText      DataType = "TEXT"
	TypeVarchar   DataType = "VARCHAR"
	TypeChar      DataType = "CHAR"
	TypeBoolean   DataType = "BOOLEAN"
	TypeDate      DataType = "DATE"
	TypeTimestamp DataType = "TIMESTAMP"
)

// ColumnDef определение колонки таблицы
type ColumnDef struct {
	Name      string
	Type      DataType
	Length    int // для VARCHAR/CHAR
	Precision int // для NUMERIC
	Scale     int // для NUMERIC

	// Derived отмечает колонку, которая заполняется этапом обогащения,
	// а не bulk-загрузчиком. Такие колонки исключаются из списка загрузки.
	Derived bool
}

// IndexDef определение вторичного индекса
type IndexDef struct {
	Name    string
	Table   string
	Columns []string
}

// PrimaryKeyDef определение первичного ключа, добавляемого после загрузки
type PrimaryKeyDef struct {
	Name   string
	Table  string
	Column string
}

// ForeignKeyDef определение внешнего ключа, добавляемого после загрузки
type ForeignKeyDef struct {
	Name      string
	Table     string
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef определение таблицы справочника
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// Column возвращает определение колонки по имени (nil если не найдена)
func (t TableDef) Column(name string) *ColumnDef {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// LoadColumns возвращает имена колонок, заполняемых bulk-загрузчиком,
// в порядке соответствия полям исходного TSV-файла.
// Derived-колонки исключаются: ими владеет этап обогащения.
func (t TableDef) LoadColumns() []string {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.Derived {
			continue
		}
		cols = append(cols, c.Name)
	}
	return cols
}
