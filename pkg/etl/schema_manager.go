package etl

import (
	"context"
	"fmt"

	"github.com/rodgg/geonames-db/pkg/adapters"
	"github.com/rodgg/geonames-db/pkg/core/schema"
)

// SchemaManager управляет жизненным циклом таблиц справочника:
// сброс (drop + create) при полной перезагрузке и create-if-missing
// при первом запуске. Таблицы создаются без первичных ключей и
// индексов — constraints добавляет IndexBuilder после загрузки данных.
type SchemaManager struct {
	adapter adapters.Adapter
	schema  *schema.Geonames
	builder *schema.Builder
}

// NewSchemaManager создает менеджер схемы для подключенного адаптера
func NewSchemaManager(adapter adapters.Adapter, s *schema.Geonames) *SchemaManager {
	return &SchemaManager{
		adapter: adapter,
		schema:  s,
		builder: schema.NewBuilder(adapter.Dialect()),
	}
}

// Reset удаляет все таблицы справочника и создает их заново.
// Порядок удаления учитывает ссылочную целостность: на диалектах
// без каскадного DROP зависимые таблицы удаляются первыми.
func (m *SchemaManager) Reset(ctx context.Context) error {
	cascade := m.adapter.Capabilities().CascadeDrop
	for _, name := range m.schema.DropOrder() {
		if err := m.adapter.Exec(ctx, m.builder.DropTableSQL(name, cascade)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", name, err)
		}
	}
	return m.createAll(ctx)
}

// EnsureExists создает отсутствующие таблицы, не трогая существующие
func (m *SchemaManager) EnsureExists(ctx context.Context) error {
	for _, t := range m.schema.Tables {
		exists, err := m.adapter.TableExists(ctx, t.Name)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", t.Name, err)
		}
		if exists {
			continue
		}
		if err := m.adapter.Exec(ctx, m.builder.CreateTableSQL(t)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
	}
	return nil
}

// EnsureUnaccent пытается установить расширение unaccent (PostgreSQL).
// Ошибка не фатальна: без расширения обогащение nameascii-колонок
// выполняется на стороне приложения. Возвращает фактическую доступность.
func (m *SchemaManager) EnsureUnaccent(ctx context.Context) (bool, error) {
	if !m.adapter.Capabilities().GeoExtensions {
		return false, nil
	}
	// Может упасть из-за прав — проверяем каталог, а не результат Exec
	_ = m.adapter.CreateExtension(ctx, "unaccent")
	return m.adapter.HasExtension(ctx, "unaccent")
}

func (m *SchemaManager) createAll(ctx context.Context) error {
	for _, t := range m.schema.Tables {
		if err := m.adapter.Exec(ctx, m.builder.CreateTableSQL(t)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
	}
	return nil
}
