package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/rodgg/geonames-db/pkg/adapters"
	"github.com/rodgg/geonames-db/pkg/audit"
	"github.com/rodgg/geonames-db/pkg/core/schema"
	"github.com/rodgg/geonames-db/pkg/retry"
)

// Options управляют поведением одного прогона пайплайна
type Options struct {
	// Overwrite - удалить существующие таблицы и загрузить заново.
	// Без флага существующая схема сохраняется (create-if-missing).
	Overwrite bool

	// SkipIndexes - не строить constraints и индексы после загрузки
	SkipIndexes bool
}

// LoadStats - итог одного прогона загрузки
type LoadStats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Dialect   string

	// TableRows - количество загруженных строк по таблицам
	TableRows map[string]int64

	// Checksums - xxh3-хеши исходных файлов по относительным путям
	Checksums map[string]string

	// TotalRows - суммарное количество загруженных строк
	TotalRows int64
}

// Pipeline - оркестратор полного цикла загрузки справочника:
// проверка файлов, сброс/создание схемы, массовая загрузка,
// обогащение, метаданные, индексы, VACUUM.
type Pipeline struct {
	cfg     *Config
	adapter adapters.Adapter
	schema  *schema.Geonames
	auditor audit.Logger
	retryer *retry.Retryer

	// OnNotice получает нефатальные сообщения этапов
	OnNotice func(msg string)
}

// NewPipeline создает пайплайн для подключенного адаптера.
// auditor может быть nil - тогда журнал отключен.
func NewPipeline(cfg *Config, adapter adapters.Adapter, auditor audit.Logger) (*Pipeline, error) {
	if auditor == nil {
		auditor = audit.NewNullLogger()
	}
	retryer, err := retry.NewRetryer(cfg.RetryerConfig())
	if err != nil {
		return nil, fmt.Errorf("invalid retry configuration: %w", err)
	}
	return &Pipeline{
		cfg:     cfg,
		adapter: adapter,
		schema:  schema.NewGeonames(),
		auditor: auditor,
		retryer: retryer,
	}, nil
}

// Run выполняет полный цикл загрузки и возвращает статистику
func (p *Pipeline) Run(ctx context.Context, opts Options) (*LoadStats, error) {
	stats := &LoadStats{
		StartTime: time.Now(),
		Dialect:   p.adapter.Dialect(),
		TableRows: make(map[string]int64),
		Checksums: make(map[string]string),
	}

	loader := NewBulkLoader(p.adapter, p.schema, p.cfg)

	// Все отсутствующие файлы перечисляются до первого DDL:
	// наполовину сброшенная база хуже, чем несостоявшийся запуск
	if err := loader.CheckRequired(); err != nil {
		return stats, err
	}

	sums, err := loader.Checksums()
	if err != nil {
		return stats, fmt.Errorf("failed to checksum data files: %w", err)
	}
	stats.Checksums = sums

	if err := p.prepareSchema(ctx, opts.Overwrite); err != nil {
		return stats, err
	}

	unaccent, err := p.prepareUnaccent(ctx)
	if err != nil {
		return stats, err
	}

	if err := p.load(ctx, loader, stats); err != nil {
		return stats, err
	}

	if err := p.enrich(ctx, unaccent); err != nil {
		return stats, err
	}

	if err := WriteMeta(ctx, p.adapter, p.cfg); err != nil {
		return stats, err
	}

	if opts.SkipIndexes {
		p.notice("index build skipped by request")
	} else if err := p.buildIndexes(ctx); err != nil {
		return stats, err
	}

	p.vacuum(ctx)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	for _, n := range stats.TableRows {
		stats.TotalRows += n
	}
	return stats, nil
}

func (p *Pipeline) notice(format string, args ...any) {
	if p.OnNotice != nil {
		p.OnNotice(fmt.Sprintf(format, args...))
	}
}

func (p *Pipeline) prepareSchema(ctx context.Context, overwrite bool) error {
	start := time.Now()
	mgr := NewSchemaManager(p.adapter, p.schema)

	err := p.retryer.Do(ctx, func(ctx context.Context) error {
		if overwrite {
			return mgr.Reset(ctx)
		}
		return mgr.EnsureExists(ctx)
	})
	if err != nil {
		p.auditor.LogFailure(ctx, audit.OpResetSchema, err)
		return fmt.Errorf("failed to prepare schema: %w", err)
	}

	p.auditor.Log(ctx, audit.NewEntry(audit.OpResetSchema, audit.StatusSuccess).
		WithMetadata("overwrite", overwrite).
		WithDuration(time.Since(start)))
	return nil
}

func (p *Pipeline) prepareUnaccent(ctx context.Context) (bool, error) {
	mgr := NewSchemaManager(p.adapter, p.schema)
	unaccent, err := mgr.EnsureUnaccent(ctx)
	if err != nil {
		// Недоступность каталога расширений - не повод останавливаться:
		// обогащение умеет работать без unaccent
		p.notice("unaccent probe failed: %v", err)
		return false, nil
	}
	return unaccent, nil
}

func (p *Pipeline) load(ctx context.Context, loader *BulkLoader, stats *LoadStats) error {
	start := time.Now()

	counts, err := loader.LoadAll(ctx)
	for table, n := range counts {
		stats.TableRows[table] = n
	}
	if err != nil {
		p.auditor.LogFailure(ctx, audit.OpBulkLoad, err)
		return err
	}

	if err := p.retryer.Do(ctx, func(ctx context.Context) error {
		return LoadContinents(ctx, p.adapter)
	}); err != nil {
		p.auditor.LogFailure(ctx, audit.OpBulkLoad, err)
		return fmt.Errorf("failed to load continents: %w", err)
	}
	stats.TableRows[schema.TableContinentCodes] = int64(len(schema.Continents()))

	var total int64
	for _, n := range stats.TableRows {
		total += n
	}
	p.auditor.Log(ctx, audit.NewEntry(audit.OpBulkLoad, audit.StatusSuccess).
		WithRowsAffected(total).
		WithDuration(time.Since(start)))
	return nil
}

func (p *Pipeline) enrich(ctx context.Context, unaccent bool) error {
	start := time.Now()
	pass := NewEnrichmentPass(p.adapter, unaccent)

	if err := p.retryer.Do(ctx, pass.Run); err != nil {
		p.auditor.LogFailure(ctx, audit.OpEnrich, err)
		return fmt.Errorf("enrichment failed: %w", err)
	}

	p.auditor.Log(ctx, audit.NewEntry(audit.OpEnrich, audit.StatusSuccess).
		WithMetadata("unaccent", unaccent).
		WithDuration(time.Since(start)))
	return nil
}

func (p *Pipeline) buildIndexes(ctx context.Context) error {
	start := time.Now()
	ib := NewIndexBuilder(p.adapter, p.schema)
	ib.OnNotice = p.OnNotice

	if err := ib.Run(ctx); err != nil {
		p.auditor.LogFailure(ctx, audit.OpBuildIndex, err)
		return fmt.Errorf("index build failed: %w", err)
	}

	p.auditor.Log(ctx, audit.NewEntry(audit.OpBuildIndex, audit.StatusSuccess).
		WithDuration(time.Since(start)))
	return nil
}

// vacuum обновляет статистику планировщика после массовой загрузки.
// Только PostgreSQL; ошибка не фатальна - данные уже загружены.
func (p *Pipeline) vacuum(ctx context.Context) {
	if p.adapter.Dialect() != "postgres" {
		return
	}
	start := time.Now()
	if err := p.adapter.Exec(ctx, "VACUUM ANALYZE"); err != nil {
		p.notice("VACUUM ANALYZE failed: %v", err)
		p.auditor.LogFailure(ctx, audit.OpVacuum, err)
		return
	}
	p.auditor.Log(ctx, audit.NewEntry(audit.OpVacuum, audit.StatusSuccess).
		WithDuration(time.Since(start)))
}
