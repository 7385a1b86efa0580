package adapters

import (
	"fmt"
	"strings"
)

// SQL-хелперы для генерации диалектно-зависимых фрагментов.
// Запросы в остальных пакетах пишутся с '?' в качестве плейсхолдера
// и при необходимости перепривязываются под диалект через Rebind.

// Rebind переписывает '?'-плейсхолдеры в стиль диалекта:
// PostgreSQL — $1..$n, MS SQL — @p1..@pn, MySQL/SQLite — без изменений.
// Строковые литералы в запросах не поддерживаются: запросы пакета
// не содержат '?' внутри литералов.
func Rebind(dialect, query string) string {
	switch dialect {
	case "postgres", "mssql":
	default:
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 10)

	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		if dialect == "postgres" {
			fmt.Fprintf(&b, "$%d", n)
		} else {
			fmt.Fprintf(&b, "@p%d", n)
		}
	}
	return b.String()
}

// ConcatExpr возвращает выражение конкатенации строковых аргументов.
// PostgreSQL/SQLite — оператор ||, MySQL/MS SQL — CONCAT().
func ConcatExpr(dialect string, parts ...string) string {
	switch dialect {
	case "mysql", "mssql":
		return "CONCAT(" + strings.Join(parts, ", ") + ")"
	default:
		return strings.Join(parts, " || ")
	}
}

// SubstrExpr возвращает выражение подстроки (from — с единицы).
// MS SQL использует SUBSTRING, остальные — SUBSTR.
func SubstrExpr(dialect, expr string, from, length int) string {
	if dialect == "mssql" {
		return fmt.Sprintf("SUBSTRING(%s, %d, %d)", expr, from, length)
	}
	return fmt.Sprintf("SUBSTR(%s, %d, %d)", expr, from, length)
}

// LimitClause возвращает завершающую конструкцию ограничения выборки.
// Ставится после ORDER BY. MS SQL не знает LIMIT — используется
// OFFSET ... FETCH.
func LimitClause(dialect string, limit int) string {
	if dialect == "mssql" {
		return fmt.Sprintf("OFFSET 0 ROWS FETCH NEXT %d ROWS ONLY", limit)
	}
	return fmt.Sprintf("LIMIT %d", limit)
}
