package geo

import (
	"fmt"
	"math"
)

const (
	// EarthRadiusKm - средний радиус Земли
	EarthRadiusKm = 6371.0

	// DefaultRadiusMeters - радиус префильтра earth_box() / ST_DWithin().
	// Увеличивается в конфигурации, если ближайший результат может
	// оказаться дальше.
	DefaultRadiusMeters = 500_000 // 500 км

	// metersPerDegree - метров в одном градусе на экваторе;
	// переводит радиус префильтра в градусы для bounding-box условий
	metersPerDegree = 111_320.0
)

// degRadius переводит радиус в метрах в приближенный градусный эквивалент
func degRadius(radiusMeters float64) float64 {
	return radiusMeters / metersPerDegree
}

// boundingBoxExpr возвращает прямоугольный префильтр вокруг точки:
// latitude/longitude BETWEEN границ, выведенных из радиуса поиска.
// Применяется на всех стратегиях; на haversine-уровне это единственное
// ограничение радиуса, поэтому строки за его пределами в результат
// не попадают. Координаты проходят Validate до этого места.
func boundingBoxExpr(p Point, radiusMeters float64, alias string) string {
	deg := degRadius(radiusMeters)

	latCol, lonCol := "latitude", "longitude"
	if alias != "" {
		latCol = alias + ".latitude"
		lonCol = alias + ".longitude"
	}

	return fmt.Sprintf(
		"%s BETWEEN %.6f AND %.6f AND %s BETWEEN %.6f AND %.6f",
		latCol, p.Lat-deg, p.Lat+deg,
		lonCol, p.Lon-deg, p.Lon+deg,
	)
}

// Haversine возвращает расстояние между двумя точками в километрах
// по формуле хаверсинуса
func Haversine(a, b Point) float64 {
	rad := math.Pi / 180.0
	dLat := (b.Lat - a.Lat) * rad
	dLon := (b.Lon - a.Lon) * rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// haversineExpr возвращает SQL-выражение расстояния (в км) от фиксированной
// точки до колонок latitude/longitude, опционально с алиасом таблицы.
//
// Координаты проходят Validate до этого места, поэтому подстановка
// литералов через %f безопасна. Повторное умножение вместо POWER():
// SQLite собирает выражение на встроенных математических функциях.
func haversineExpr(p Point, alias string) string {
	rad := math.Pi / 180.0
	cosLat := math.Cos(p.Lat * rad)

	latCol, lonCol := "latitude", "longitude"
	if alias != "" {
		latCol = alias + ".latitude"
		lonCol = alias + ".longitude"
	}

	return fmt.Sprintf(
		`2.0 * %.10f * ASIN(SQRT(`+
			`SIN((%s - %.10f) * %.10f / 2.0)`+
			` * SIN((%s - %.10f) * %.10f / 2.0)`+
			` + %.10f * COS(%s * %.10f)`+
			` * SIN((%s - %.10f) * %.10f / 2.0)`+
			` * SIN((%s - %.10f) * %.10f / 2.0)`+
			`))`,
		EarthRadiusKm,
		latCol, p.Lat, rad, latCol, p.Lat, rad,
		cosLat, latCol, rad,
		lonCol, p.Lon, rad, lonCol, p.Lon, rad,
	)
}

// haversineColExpr возвращает SQL-выражение расстояния (в км) между
// точками из колонок двух таблиц: "g" (geoname) и "p" (postalcodes).
// Используется в коррелированном подзапросе ближайшего почтового индекса.
func haversineColExpr() string {
	rad := math.Pi / 180.0
	return fmt.Sprintf(
		`2.0 * %.10f * ASIN(SQRT(`+
			`SIN((p.latitude  - g.latitude)  * %.10f / 2.0)`+
			` * SIN((p.latitude  - g.latitude)  * %.10f / 2.0)`+
			` + COS(g.latitude * %.10f) * COS(p.latitude * %.10f)`+
			` * SIN((p.longitude - g.longitude) * %.10f / 2.0)`+
			` * SIN((p.longitude - g.longitude) * %.10f / 2.0)`+
			`))`,
		EarthRadiusKm,
		rad, rad,
		rad, rad,
		rad, rad,
	)
}
