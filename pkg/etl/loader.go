package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/rodgg/geonames-db/pkg/adapters"
	"github.com/rodgg/geonames-db/pkg/adapters/base"
	"github.com/rodgg/geonames-db/pkg/core/schema"
)

// FileSpec связывает таблицу справочника с исходным TSV-файлом
type FileSpec struct {
	Table string // Имя целевой таблицы
	Path  string // Путь к файлу относительно data_dir
}

// FileSpecs возвращает файлы загрузки в фиксированном порядке.
// Порядок важен: geoname — самая большая таблица и грузится первой,
// чтобы сбой конфигурации проявился до загрузки остальных.
func FileSpecs(postalSubdir string) []FileSpec {
	return []FileSpec{
		{Table: schema.TableGeoname, Path: "allCountries.txt"},
		{Table: schema.TableAlternateName, Path: "alternateNames.txt"},
		{Table: schema.TableTimezones, Path: "timeZones.txt.tmp"},
		{Table: schema.TableFeatureCodes, Path: "featureCodes_en.txt"},
		{Table: schema.TableAdmin1Codes, Path: "admin1CodesASCII.txt"},
		{Table: schema.TableAdmin2Codes, Path: "admin2Codes.txt"},
		{Table: schema.TableISOLanguageCodes, Path: "iso-languagecodes.txt.tmp"},
		{Table: schema.TableCountryInfo, Path: "countryInfo.txt.tmp"},
		{Table: schema.TablePostalCodes, Path: filepath.Join(postalSubdir, "allCountries.txt")},
	}
}

// BulkLoader выполняет массовую загрузку TSV-дампов GeoNames.
// На PostgreSQL используется нативный COPY-протокол; остальные
// диалекты получают chunked multi-row INSERT с дроблением по лимиту
// bind-параметров.
type BulkLoader struct {
	adapter   adapters.Adapter
	schema    *schema.Geonames
	dataDir   string
	specs     []FileSpec
	chunkSize int
	progress  bool
}

// NewBulkLoader создает загрузчик для подключенного адаптера
func NewBulkLoader(adapter adapters.Adapter, s *schema.Geonames, cfg *Config) *BulkLoader {
	return &BulkLoader{
		adapter:   adapter,
		schema:    s,
		dataDir:   cfg.Download.DataDir,
		specs:     FileSpecs(cfg.Download.PostalSubdir),
		chunkSize: cfg.Performance.ChunkSize,
		progress:  cfg.Performance.Progress,
	}
}

// CheckRequired проверяет наличие всех файлов загрузки до старта
// и перечисляет в ошибке ВСЕ отсутствующие, а не только первый:
// оператору нужен полный список, чтобы докачать недостающее за один раз.
func (l *BulkLoader) CheckRequired() error {
	var missing []string
	for _, spec := range l.specs {
		if _, err := l.resolvePath(spec.Path); err != nil {
			missing = append(missing, spec.Path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required data files in %s: %s",
			l.dataDir, strings.Join(missing, ", "))
	}
	return nil
}

// LoadAll загружает все файлы справочника и возвращает
// количество строк по таблицам
func (l *BulkLoader) LoadAll(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(l.specs))
	for _, spec := range l.specs {
		n, err := l.loadFile(ctx, spec)
		if err != nil {
			return counts, fmt.Errorf("failed to load %s into %s: %w", spec.Path, spec.Table, err)
		}
		counts[spec.Table] = n
	}
	return counts, nil
}

// Checksums считает хеши всех файлов загрузки
func (l *BulkLoader) Checksums() (map[string]string, error) {
	sums := make(map[string]string, len(l.specs))
	for _, spec := range l.specs {
		path, err := l.resolvePath(spec.Path)
		if err != nil {
			return nil, err
		}
		sum, err := FileChecksum(path)
		if err != nil {
			return nil, err
		}
		sums[spec.Path] = sum
	}
	return sums, nil
}

// loadFile загружает один файл в таблицу
func (l *BulkLoader) loadFile(ctx context.Context, spec FileSpec) (int64, error) {
	table := l.schema.Table(spec.Table)
	if table == nil {
		return 0, fmt.Errorf("unknown table %s", spec.Table)
	}

	path, err := l.resolvePath(spec.Path)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	// Progress bar считает сжатые байты файла, а не строки:
	// размер файла известен заранее, количество строк — нет
	var raw io.Reader = f
	if l.progress {
		if st, err := f.Stat(); err == nil {
			bar := progressbar.DefaultBytes(st.Size(), spec.Table)
			raw = io.TeeReader(f, bar)
		}
	}

	r, err := base.WrapDecompression(path, raw)
	if err != nil {
		return 0, err
	}
	if c, ok := r.(io.Closer); ok && r != raw {
		defer c.Close()
	}

	columns := table.LoadColumns()
	loadCols := make([]schema.ColumnDef, 0, len(columns))
	for _, name := range columns {
		loadCols = append(loadCols, *table.Column(name))
	}
	src := base.NewTSVReader(r, loadCols)

	n, err := l.adapter.BulkCopy(ctx, spec.Table, columns, src)
	if errors.Is(err, adapters.ErrBulkCopyUnsupported) {
		ins := base.NewChunkedInserter(l.adapter, l.chunkSize)
		n, err = ins.Load(ctx, spec.Table, columns, src)
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// resolvePath возвращает путь к файлу, пробуя сжатые варианты.
// Дампы могут лежать как есть, либо как .gz / .zst.
func (l *BulkLoader) resolvePath(relPath string) (string, error) {
	full := filepath.Join(l.dataDir, relPath)
	for _, candidate := range []string{full, full + ".gz", full + ".zst"} {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("data file not found: %s", full)
}

// LoadContinents вставляет статический справочник континентов.
// Единственная таблица, данные которой не приходят из файла.
func LoadContinents(ctx context.Context, adapter adapters.Adapter) error {
	b := schema.NewBuilder(adapter.Dialect())
	sql := adapters.Rebind(adapter.Dialect(), fmt.Sprintf(
		"INSERT INTO %s (code, name, geonameid) VALUES (?, ?, ?)",
		b.QuoteIdentifier(schema.TableContinentCodes)))

	tx, err := adapter.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, c := range schema.Continents() {
		if err := tx.Exec(ctx, sql, c.Code, c.Name, c.Geonameid); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to insert continent %s: %w", c.Code, err)
		}
	}
	return tx.Commit(ctx)
}

// WriteMeta перезаписывает таблицу meta: версия загрузчика,
// источник и версия данных, момент загрузки
func WriteMeta(ctx context.Context, adapter adapters.Adapter, cfg *Config) error {
	b := schema.NewBuilder(adapter.Dialect())
	table := b.QuoteIdentifier(schema.TableMeta)

	if err := adapter.Exec(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear meta: %w", err)
	}

	sql := adapters.Rebind(adapter.Dialect(), fmt.Sprintf(
		"INSERT INTO %s (version, data_uri, data_version, date_accessed) VALUES (?, ?, ?, ?)",
		table))
	err := adapter.Exec(ctx, sql,
		cfg.Meta.Version, cfg.Download.URLData, cfg.Meta.DataVersion,
		time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to write meta: %w", err)
	}
	return nil
}
