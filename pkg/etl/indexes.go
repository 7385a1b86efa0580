package etl

import (
	"context"
	"fmt"

	"github.com/rodgg/geonames-db/pkg/adapters"
	"github.com/rodgg/geonames-db/pkg/core/schema"
)

// IndexBuilder добавляет constraints и индексы ПОСЛЕ массовой загрузки:
// наполнять таблицу с готовыми индексами в разы дороже, чем построить
// их по готовым данным.
//
// Порядок фиксированный: первичные ключи, B-tree индексы, внешние
// ключи, затем геопространственные индексы (только PostgreSQL).
// Геоиндексы строятся best effort: cube/earthdistance и тип geography
// доступны не на всех managed-инсталляциях, их отсутствие не повод
// ронять загрузку.
type IndexBuilder struct {
	adapter adapters.Adapter
	schema  *schema.Geonames
	builder *schema.Builder

	// OnNotice вызывается для нефатальных пропусков (отсутствие
	// поддержки constraint-ов, недоступные геоиндексы)
	OnNotice func(msg string)
}

// NewIndexBuilder создает построитель индексов
func NewIndexBuilder(adapter adapters.Adapter, s *schema.Geonames) *IndexBuilder {
	return &IndexBuilder{
		adapter: adapter,
		schema:  s,
		builder: schema.NewBuilder(adapter.Dialect()),
	}
}

// Run строит все constraints и индексы
func (ib *IndexBuilder) Run(ctx context.Context) error {
	if err := ib.addPrimaryKeys(ctx); err != nil {
		return err
	}
	if err := ib.createIndexes(ctx); err != nil {
		return err
	}
	if err := ib.addForeignKeys(ctx); err != nil {
		return err
	}
	ib.createGeoIndexes(ctx)
	return nil
}

func (ib *IndexBuilder) notice(format string, args ...any) {
	if ib.OnNotice != nil {
		ib.OnNotice(fmt.Sprintf(format, args...))
	}
}

func (ib *IndexBuilder) addPrimaryKeys(ctx context.Context) error {
	if !ib.adapter.Capabilities().AlterPrimaryKey {
		ib.notice("primary key constraints skipped: not supported by this dialect")
		return nil
	}
	for _, pk := range ib.schema.PrimaryKeys {
		if err := ib.adapter.Exec(ctx, ib.builder.AddPrimaryKeySQL(pk)); err != nil {
			return fmt.Errorf("failed to add primary key %s: %w", pk.Name, err)
		}
	}
	return nil
}

func (ib *IndexBuilder) createIndexes(ctx context.Context) error {
	for _, idx := range ib.schema.Indexes {
		if err := ib.adapter.Exec(ctx, ib.builder.CreateIndexSQL(idx, ib.schema)); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.Name, err)
		}
	}
	return nil
}

func (ib *IndexBuilder) addForeignKeys(ctx context.Context) error {
	if !ib.adapter.Capabilities().ForeignKeys {
		ib.notice("foreign key constraints skipped: not supported by this dialect")
		return nil
	}
	for _, fk := range ib.schema.ForeignKeys {
		if err := ib.adapter.Exec(ctx, ib.builder.AddForeignKeySQL(fk)); err != nil {
			return fmt.Errorf("failed to add foreign key %s: %w", fk.Name, err)
		}
	}
	return nil
}

// createGeoIndexes строит геопространственные GIST-индексы (PostgreSQL).
// Оба семейства независимы и могут сосуществовать: планировщик запросов
// сам выберет подходящий индекс для каждого запроса.
func (ib *IndexBuilder) createGeoIndexes(ctx context.Context) {
	if !ib.adapter.Capabilities().GeoExtensions {
		return
	}

	// cube + earthdistance: запасной путь, когда нет ни Ganos, ни PostGIS
	if err := ib.createEarthdistanceIndexes(ctx); err != nil {
		ib.notice("earthdistance GIST indexes skipped: %v", err)
	} else {
		ib.notice("GIST geospatial indexes created via cube + earthdistance")
	}

	// geography-индексы под ST_DWithin/ST_Distance (Ganos или PostGIS)
	hasGanos, _ := ib.adapter.HasExtension(ctx, "ganos_spatialref")
	hasPostGIS, _ := ib.adapter.HasExtension(ctx, "postgis")
	if !hasGanos && !hasPostGIS {
		return
	}
	label := "PostGIS"
	if hasGanos {
		label = "Ganos/ganos_spatialref"
	}
	if err := ib.createGeographyIndexes(ctx); err != nil {
		// Тип geography может отсутствовать даже при установленном
		// расширении (ganos_geometry не загружен через CASCADE)
		ib.notice("%s GIST indexes skipped: %v", label, err)
	} else {
		ib.notice("%s GIST indexes created", label)
	}
}

func (ib *IndexBuilder) createEarthdistanceIndexes(ctx context.Context) error {
	if err := ib.adapter.CreateExtension(ctx, "cube"); err != nil {
		return err
	}
	if err := ib.adapter.CreateExtension(ctx, "earthdistance"); err != nil {
		return err
	}
	stmts := []string{
		"CREATE INDEX geoname_geo_idx ON geoname" +
			" USING GIST (ll_to_earth(latitude, longitude))",
		"CREATE INDEX postalcodes_geo_idx ON postalcodes" +
			" USING GIST (ll_to_earth(latitude, longitude))",
	}
	for _, stmt := range stmts {
		if err := ib.adapter.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (ib *IndexBuilder) createGeographyIndexes(ctx context.Context) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS geoname_postgis_idx ON geoname" +
			" USING GIST (ST_MakePoint(longitude, latitude)::geography)",
		"CREATE INDEX IF NOT EXISTS postalcodes_postgis_idx ON postalcodes" +
			" USING GIST (ST_MakePoint(longitude, latitude)::geography)",
	}
	for _, stmt := range stmts {
		if err := ib.adapter.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
