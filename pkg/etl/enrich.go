package etl

import (
	"context"
	"fmt"

	"github.com/rodgg/geonames-db/pkg/adapters"
	"github.com/rodgg/geonames-db/pkg/core/schema"
)

// EnrichmentPass заполняет производные колонки после массовой загрузки:
//
//  1. admin1codesascii.name <- nameascii там, где name пуст;
//  2. countrycode = первые 2 символа code в обеих admin-таблицах;
//  3. составные коды admin{1,2,3}code_full в postalcodes
//     (countrycode.admin1code[.admin2code[.admin3code]]);
//  4. admin{1,2,3}nameascii в postalcodes — транслитерация диакритики.
//
// Шаг 4 выполняется на сервере через unaccent(), когда расширение
// доступно; иначе значения сворачиваются на стороне приложения
// по DISTINCT-значениям (уникальных названий регионов на порядки
// меньше, чем строк в postalcodes).
type EnrichmentPass struct {
	adapter  adapters.Adapter
	builder  *schema.Builder
	unaccent bool
}

// NewEnrichmentPass создает этап обогащения.
// unaccent — фактическая доступность расширения unaccent в БД.
func NewEnrichmentPass(adapter adapters.Adapter, unaccent bool) *EnrichmentPass {
	return &EnrichmentPass{
		adapter:  adapter,
		builder:  schema.NewBuilder(adapter.Dialect()),
		unaccent: unaccent,
	}
}

// Run выполняет все шаги обогащения
func (e *EnrichmentPass) Run(ctx context.Context) error {
	if err := e.fillAdmin1Names(ctx); err != nil {
		return err
	}
	if err := e.fillCountryCodes(ctx); err != nil {
		return err
	}
	if err := e.fillCompositeCodes(ctx); err != nil {
		return err
	}
	return e.fillASCIINames(ctx)
}

// fillAdmin1Names подставляет nameascii вместо отсутствующего name
func (e *EnrichmentPass) fillAdmin1Names(ctx context.Context) error {
	t := e.builder.QuoteIdentifier(schema.TableAdmin1Codes)
	sql := fmt.Sprintf(
		"UPDATE %s SET name = nameascii WHERE name IS NULL AND nameascii IS NOT NULL", t)
	if err := e.adapter.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to fill admin1 names: %w", err)
	}
	return nil
}

// fillCountryCodes извлекает код страны из составного admin-кода.
// Формат кода фиксированный: "CC.ADMIN1[.ADMIN2]".
func (e *EnrichmentPass) fillCountryCodes(ctx context.Context) error {
	dialect := e.adapter.Dialect()
	for _, table := range []string{schema.TableAdmin1Codes, schema.TableAdmin2Codes} {
		sql := fmt.Sprintf("UPDATE %s SET countrycode = %s",
			e.builder.QuoteIdentifier(table),
			adapters.SubstrExpr(dialect, "code", 1, 2))
		if err := e.adapter.Exec(ctx, sql); err != nil {
			return fmt.Errorf("failed to fill countrycode in %s: %w", table, err)
		}
	}
	return nil
}

// fillCompositeCodes строит полные admin-коды в postalcodes.
// Составной код заполняется только когда присутствуют ВСЕ его сегменты:
// частичный код вида "US..001" бесполезен для join-ов и не создается.
func (e *EnrichmentPass) fillCompositeCodes(ctx context.Context) error {
	dialect := e.adapter.Dialect()
	t := e.builder.QuoteIdentifier(schema.TablePostalCodes)

	steps := []struct {
		dst    string
		admins []string // admin-сегменты кода; countrycode идет первым всегда
	}{
		{"admin1code_full", []string{"admin1code"}},
		{"admin2code_full", []string{"admin1code", "admin2code"}},
		{"admin3code_full", []string{"admin1code", "admin2code", "admin3code"}},
	}

	for _, step := range steps {
		parts := []string{"countrycode"}
		conds := make([]string, 0, len(step.admins)*2)
		for _, seg := range step.admins {
			parts = append(parts, "'.'", seg)
			conds = append(conds, seg+" IS NOT NULL", seg+" <> ''")
		}

		where := conds[0]
		for _, c := range conds[1:] {
			where += " AND " + c
		}
		sql := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s",
			t, step.dst, adapters.ConcatExpr(dialect, parts...), where)
		if err := e.adapter.Exec(ctx, sql); err != nil {
			return fmt.Errorf("failed to fill %s: %w", step.dst, err)
		}
	}
	return nil
}

// fillASCIINames заполняет транслитерированные названия регионов
func (e *EnrichmentPass) fillASCIINames(ctx context.Context) error {
	if e.unaccent {
		return e.fillASCIINamesServer(ctx)
	}
	return e.fillASCIINamesClient(ctx)
}

// fillASCIINamesServer сворачивает диакритику одним UPDATE через unaccent()
func (e *EnrichmentPass) fillASCIINamesServer(ctx context.Context) error {
	t := e.builder.QuoteIdentifier(schema.TablePostalCodes)
	sql := fmt.Sprintf(`UPDATE %s SET
		admin1nameascii = unaccent(admin1name),
		admin2nameascii = unaccent(admin2name),
		admin3nameascii = unaccent(admin3name)`, t)
	if err := e.adapter.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to unaccent admin names: %w", err)
	}
	return nil
}

// fillASCIINamesClient сворачивает диакритику на стороне приложения.
// Обновления группируются по DISTINCT-значениям исходной колонки:
// один UPDATE покрывает все строки с одинаковым названием.
func (e *EnrichmentPass) fillASCIINamesClient(ctx context.Context) error {
	dialect := e.adapter.Dialect()
	t := e.builder.QuoteIdentifier(schema.TablePostalCodes)

	pairs := []struct{ src, dst string }{
		{"admin1name", "admin1nameascii"},
		{"admin2name", "admin2nameascii"},
		{"admin3name", "admin3nameascii"},
	}

	for _, p := range pairs {
		values, err := e.distinctValues(ctx, t, p.src)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			continue
		}

		update := adapters.Rebind(dialect, fmt.Sprintf(
			"UPDATE %s SET %s = ? WHERE %s = ?", t, p.dst, p.src))

		tx, err := e.adapter.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		for _, v := range values {
			if err := tx.Exec(ctx, update, FoldAccents(v), v); err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("failed to fill %s: %w", p.dst, err)
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit %s updates: %w", p.dst, err)
		}
	}
	return nil
}

func (e *EnrichmentPass) distinctValues(ctx context.Context, table, column string) ([]string, error) {
	sql := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL",
		column, table, column)
	rows, err := e.adapter.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to select distinct %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", column, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read distinct %s: %w", column, err)
	}
	return values, nil
}
