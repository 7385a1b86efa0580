package geo

import (
	"context"
	"fmt"

	"github.com/rodgg/geonames-db/pkg/adapters"
)

// Strategy - стратегия исполнения запросов близости
type Strategy int

const (
	// HaversineScan - формула хаверсинуса в переносимом SQL с
	// bounding-box префильтром по B-tree индексам. Работает на любом
	// диалекте; единственный вариант вне PostgreSQL.
	HaversineScan Strategy = iota

	// SphericalExtension - PostgreSQL earthdistance: earth_box()
	// использует GIST-индекс для KNN-префильтра
	SphericalExtension

	// ExactGeography - PostgreSQL с типом geography (PostGIS или Ganos):
	// ST_DWithin / ST_Distance по GIST-индексу, точная геодезия
	ExactGeography
)

// String возвращает короткое имя стратегии
func (s Strategy) String() string {
	switch s {
	case ExactGeography:
		return "geography"
	case SphericalExtension:
		return "earthdistance"
	default:
		return "haversine"
	}
}

// Describe возвращает человекочитаемое описание для вывода в CLI
func (s Strategy) Describe() string {
	switch s {
	case ExactGeography:
		return "geography / ST_DWithin (GIST index)"
	case SphericalExtension:
		return "earthdistance (GIST index)"
	default:
		return "Haversine (full scan)"
	}
}

// Detect выбирает стратегию по фактическим возможностям подключения.
//
// Порядок проверок:
//  1. диалект без геораcширений - сразу HaversineScan;
//  2. тип geography зарегистрирован в каталоге - ExactGeography.
//     Проверяется именно тип, а не расширение: ganos_spatialref может
//     стоять без типа geography, и ::geography-запросы падают;
//  3. расширение earthdistance установлено - SphericalExtension;
//  4. иначе HaversineScan.
func Detect(ctx context.Context, adapter adapters.Adapter) (Strategy, error) {
	if !adapter.Capabilities().GeoExtensions {
		return HaversineScan, nil
	}

	hasGeography, err := adapter.HasType(ctx, "geography")
	if err != nil {
		return HaversineScan, fmt.Errorf("failed to probe geography type: %w", err)
	}
	if hasGeography {
		return ExactGeography, nil
	}

	hasEarth, err := adapter.HasExtension(ctx, "earthdistance")
	if err != nil {
		return HaversineScan, fmt.Errorf("failed to probe earthdistance: %w", err)
	}
	if hasEarth {
		return SphericalExtension, nil
	}

	return HaversineScan, nil
}

// Planner выполняет запросы близости выбранной стратегией.
//
// Стратегия определяется ОДИН раз при создании и действует на все
// запросы этого подключения. Кэшировать ее между подключениями нельзя:
// другая база может иметь другой набор расширений.
type Planner struct {
	adapter      adapters.Adapter
	strategy     Strategy
	radiusMeters float64
}

// NewPlanner создает планировщик, однократно определяя стратегию
// для данного подключения
func NewPlanner(ctx context.Context, adapter adapters.Adapter) (*Planner, error) {
	strategy, err := Detect(ctx, adapter)
	if err != nil {
		return nil, err
	}
	return &Planner{
		adapter:      adapter,
		strategy:     strategy,
		radiusMeters: DefaultRadiusMeters,
	}, nil
}

// NewPlannerWithStrategy создает планировщик с заранее известной
// стратегией (для тестов и принудительного выбора)
func NewPlannerWithStrategy(adapter adapters.Adapter, strategy Strategy) *Planner {
	return &Planner{
		adapter:      adapter,
		strategy:     strategy,
		radiusMeters: DefaultRadiusMeters,
	}
}

// Strategy возвращает выбранную стратегию
func (p *Planner) Strategy() Strategy {
	return p.strategy
}

// SetRadius переопределяет радиус префильтра (метры)
func (p *Planner) SetRadius(meters float64) {
	if meters > 0 {
		p.radiusMeters = meters
	}
}
