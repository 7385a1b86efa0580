package base

import (
	"strconv"
	"strings"
	"time"

	"github.com/rodgg/geonames-db/pkg/core/schema"
)

// TypeConverter преобразует строковые поля TSV в Go-типы, которые
// драйверы (включая бинарный протокол COPY) кодируют без ошибок.
//
// Ошибка преобразования отдельного поля не прерывает загрузку:
// поле становится NULL. Дампы GeoNames содержат единичные мусорные
// значения (например, дата "0000-00-00"), и ронять из-за них
// многочасовую загрузку недопустимо.
type TypeConverter struct{}

// NewTypeConverter создает конвертер типов
func NewTypeConverter() *TypeConverter {
	return &TypeConverter{}
}

// Convert преобразует сырое поле в значение для колонки.
// Пустая строка всегда означает NULL.
func (c *TypeConverter) Convert(raw string, col schema.ColumnDef) any {
	if raw == "" {
		return nil
	}

	switch col.Type {
	case schema.TypeInteger, schema.TypeBigInt, schema.TypeSmallInt:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil
		}
		return v

	case schema.TypeReal, schema.TypeNumeric:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil
		}
		return v

	case schema.TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		default:
			return nil
		}

	case schema.TypeDate:
		v, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
		if err != nil {
			return nil
		}
		return v

	case schema.TypeTimestamp:
		s := strings.TrimSpace(raw)
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
			if v, err := time.Parse(layout, s); err == nil {
				return v
			}
		}
		return nil

	default:
		return raw
	}
}
