// Package geo реализует запросы близости к справочнику GeoNames.
//
// Стратегия исполнения выбирается по фактическим возможностям
// подключенной СУБД (см. Planner): геотип geography, расширение
// earthdistance или переносимая формула хаверсинуса в чистом SQL.
package geo

import (
	"fmt"
	"math"
)

// Point - точка в десятичных градусах WGS84
type Point struct {
	Lat float64
	Lon float64
}

// Validate проверяет координаты: NaN и выход за диапазон отвергаются
// до построения SQL
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return fmt.Errorf("coordinates must not be NaN")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %g out of range [-90, 90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %g out of range [-180, 180]", p.Lon)
	}
	return nil
}

// PostalResult - строка результата поиска ближайших почтовых индексов
type PostalResult struct {
	CountryCode string
	PostalCode  string
	PlaceName   string
	Admin1Name  string
	Admin2Name  string
	Admin3Name  string
	Lat         float64
	Lon         float64
	DistanceKm  float64
}

// PlaceResult - строка результата поиска ближайших топонимов.
// PostalCode - ближайший к топониму почтовый индекс той же страны
// (пустая строка, если в радиусе поиска его нет).
type PlaceResult struct {
	GeonameID  int64
	Name       string
	Fclass     string
	Fcode      string
	Country    string
	Admin1     string
	Admin2     string
	Population int64
	Lat        float64
	Lon        float64
	DistanceKm float64
	PostalCode string
}
