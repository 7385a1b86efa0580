package geo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rodgg/geonames-db/pkg/adapters"
)

// NearestPostalCodes возвращает limit ближайших к точке почтовых
// индексов, упорядоченных по расстоянию. country ("" - все страны)
// ограничивает поиск кодом ISO 3166-1 alpha-2.
func (p *Planner) NearestPostalCodes(ctx context.Context, pt Point, limit int, country string) ([]PostalResult, error) {
	if err := pt.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 3
	}

	var (
		query string
		args  []any
	)
	switch p.strategy {
	case ExactGeography:
		query, args = p.postalGeographySQL(pt, limit, country)
	case SphericalExtension:
		query, args = p.postalEarthdistanceSQL(pt, limit, country)
	default:
		query, args = p.postalHaversineSQL(pt, limit, country)
	}

	rows, err := p.adapter.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postal proximity query failed: %w", err)
	}
	defer rows.Close()

	var results []PostalResult
	for rows.Next() {
		var (
			r                          PostalResult
			postal, place              sql.NullString
			admin1, admin2, admin3     sql.NullString
		)
		if err := rows.Scan(
			&r.CountryCode, &postal, &place,
			&admin1, &admin2, &admin3,
			&r.Lat, &r.Lon, &r.DistanceKm,
		); err != nil {
			return nil, fmt.Errorf("failed to scan postal row: %w", err)
		}
		r.PostalCode = postal.String
		r.PlaceName = place.String
		r.Admin1Name = admin1.String
		r.Admin2Name = admin2.String
		r.Admin3Name = admin3.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postal proximity query failed: %w", err)
	}
	return results, nil
}

// NearestPlaces возвращает limit ближайших к точке топонимов с
// ближайшим почтовым индексом той же страны для каждого
func (p *Planner) NearestPlaces(ctx context.Context, pt Point, limit int, country string) ([]PlaceResult, error) {
	if err := pt.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 3
	}

	var (
		query string
		args  []any
	)
	switch p.strategy {
	case ExactGeography:
		query, args = p.placeGeographySQL(pt, limit, country)
	case SphericalExtension:
		query, args = p.placeEarthdistanceSQL(pt, limit, country)
	default:
		query, args = p.placeHaversineSQL(pt, limit, country)
	}

	rows, err := p.adapter.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("place proximity query failed: %w", err)
	}
	defer rows.Close()

	var results []PlaceResult
	for rows.Next() {
		var (
			r                      PlaceResult
			name, fclass, fcode    sql.NullString
			cc, admin1, admin2     sql.NullString
			population             sql.NullInt64
			postal                 sql.NullString
		)
		if err := rows.Scan(
			&r.GeonameID, &name, &fclass, &fcode, &cc,
			&admin1, &admin2, &population, &r.Lat, &r.Lon,
			&r.DistanceKm, &postal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		r.Name = name.String
		r.Fclass = fclass.String
		r.Fcode = fcode.String
		r.Country = cc.String
		r.Admin1 = admin1.String
		r.Admin2 = admin2.String
		r.Population = population.Int64
		r.PostalCode = postal.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("place proximity query failed: %w", err)
	}
	return results, nil
}

// ========== Geography (PostGIS / Ganos) ==========

func (p *Planner) postalGeographySQL(pt Point, limit int, country string) (string, []any) {
	countryClause := ""
	args := []any{pt.Lon, pt.Lat, pt.Lon, pt.Lat, p.radiusMeters}
	if country != "" {
		countryClause = "  AND countrycode = ?"
		args = append(args, country)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT countrycode, postalcode, placename,
		       admin1name, admin2name, admin3name,
		       latitude, longitude,
		       ST_Distance(
		           ST_MakePoint(longitude, latitude)::geography,
		           ST_MakePoint(?, ?)::geography
		       ) / 1000.0 AS distance_km
		FROM postalcodes
		WHERE latitude  IS NOT NULL
		  AND longitude IS NOT NULL
		  AND ST_DWithin(
		          ST_MakePoint(longitude, latitude)::geography,
		          ST_MakePoint(?, ?)::geography,
		          ?
		      )
		%s
		ORDER BY distance_km
		LIMIT ?`, countryClause)
	return adapters.Rebind("postgres", query), args
}

func (p *Planner) placeGeographySQL(pt Point, limit int, country string) (string, []any) {
	countryClause := ""
	args := []any{pt.Lon, pt.Lat, pt.Lon, pt.Lat, p.radiusMeters}
	if country != "" {
		countryClause = "  AND g.country = ?"
		args = append(args, country)
	}
	args = append(args, limit)

	deg := degRadius(p.radiusMeters)
	query := fmt.Sprintf(`
		SELECT g.geonameid, g.name, g.fclass, g.fcode, g.country,
		       g.admin1, g.admin2, g.population, g.latitude, g.longitude,
		       ST_Distance(
		           ST_MakePoint(g.longitude, g.latitude)::geography,
		           ST_MakePoint(?, ?)::geography
		       ) / 1000.0 AS distance_km,
		       pc.postalcode
		FROM geoname g
		LEFT JOIN LATERAL (
		    SELECT postalcode FROM postalcodes
		    WHERE countrycode = g.country
		      AND latitude  IS NOT NULL AND longitude IS NOT NULL
		      AND latitude  BETWEEN g.latitude  - %.4f AND g.latitude  + %.4f
		      AND longitude BETWEEN g.longitude - %.4f AND g.longitude + %.4f
		    ORDER BY ST_MakePoint(longitude, latitude)::geography
		             <-> ST_MakePoint(g.longitude, g.latitude)::geography
		    LIMIT 1
		) pc ON true
		WHERE g.latitude  IS NOT NULL
		  AND g.longitude IS NOT NULL
		  AND ST_DWithin(
		          ST_MakePoint(g.longitude, g.latitude)::geography,
		          ST_MakePoint(?, ?)::geography,
		          ?
		      )
		%s
		ORDER BY distance_km
		LIMIT ?`, deg, deg, deg, deg, countryClause)
	return adapters.Rebind("postgres", query), args
}

// ========== earthdistance ==========

func (p *Planner) postalEarthdistanceSQL(pt Point, limit int, country string) (string, []any) {
	countryClause := ""
	args := []any{pt.Lat, pt.Lon, pt.Lat, pt.Lon, p.radiusMeters}
	if country != "" {
		countryClause = "  AND countrycode = ?"
		args = append(args, country)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT countrycode, postalcode, placename,
		       admin1name, admin2name, admin3name,
		       latitude, longitude,
		       earth_distance(
		           ll_to_earth(latitude, longitude),
		           ll_to_earth(?, ?)
		       ) / 1000.0 AS distance_km
		FROM postalcodes
		WHERE latitude  IS NOT NULL
		  AND longitude IS NOT NULL
		  AND earth_box(ll_to_earth(?, ?), ?)
		      @> ll_to_earth(latitude, longitude)
		%s
		ORDER BY distance_km
		LIMIT ?`, countryClause)
	return adapters.Rebind("postgres", query), args
}

func (p *Planner) placeEarthdistanceSQL(pt Point, limit int, country string) (string, []any) {
	countryClause := ""
	args := []any{pt.Lat, pt.Lon, pt.Lat, pt.Lon, p.radiusMeters}
	if country != "" {
		countryClause = "  AND g.country = ?"
		args = append(args, country)
	}
	args = append(args, limit)

	deg := degRadius(p.radiusMeters)
	query := fmt.Sprintf(`
		SELECT g.geonameid, g.name, g.fclass, g.fcode, g.country,
		       g.admin1, g.admin2, g.population, g.latitude, g.longitude,
		       earth_distance(
		           ll_to_earth(g.latitude, g.longitude),
		           ll_to_earth(?, ?)
		       ) / 1000.0 AS distance_km,
		       pc.postalcode
		FROM geoname g
		LEFT JOIN LATERAL (
		    SELECT postalcode FROM postalcodes
		    WHERE countrycode = g.country
		      AND latitude  IS NOT NULL AND longitude IS NOT NULL
		      AND latitude  BETWEEN g.latitude  - %.4f AND g.latitude  + %.4f
		      AND longitude BETWEEN g.longitude - %.4f AND g.longitude + %.4f
		    ORDER BY ll_to_earth(latitude, longitude)
		             <-> ll_to_earth(g.latitude, g.longitude)
		    LIMIT 1
		) pc ON true
		WHERE g.latitude  IS NOT NULL
		  AND g.longitude IS NOT NULL
		  AND earth_box(ll_to_earth(?, ?), ?)
		      @> ll_to_earth(g.latitude, g.longitude)
		%s
		ORDER BY distance_km
		LIMIT ?`, deg, deg, deg, deg, countryClause)
	return adapters.Rebind("postgres", query), args
}

// ========== Haversine (переносимый SQL) ==========

func (p *Planner) postalHaversineSQL(pt Point, limit int, country string) (string, []any) {
	dialect := p.adapter.Dialect()

	countryClause := ""
	var args []any
	if country != "" {
		countryClause = "  AND countrycode = ?"
		args = append(args, country)
	}

	query := fmt.Sprintf(`
		SELECT countrycode, postalcode, placename,
		       admin1name, admin2name, admin3name,
		       latitude, longitude,
		       %s AS distance_km
		FROM postalcodes
		WHERE latitude  IS NOT NULL
		  AND longitude IS NOT NULL
		  AND %s
		%s
		ORDER BY distance_km
		%s`,
		haversineExpr(pt, ""),
		boundingBoxExpr(pt, p.radiusMeters, ""),
		countryClause,
		adapters.LimitClause(dialect, limit))
	return adapters.Rebind(dialect, query), args
}

func (p *Planner) placeHaversineSQL(pt Point, limit int, country string) (string, []any) {
	dialect := p.adapter.Dialect()

	countryClause := ""
	var args []any
	if country != "" {
		countryClause = "  AND g.country = ?"
		args = append(args, country)
	}

	deg := degRadius(p.radiusMeters)
	query := fmt.Sprintf(`
		SELECT g.geonameid, g.name, g.fclass, g.fcode, g.country,
		       g.admin1, g.admin2, g.population, g.latitude, g.longitude,
		       %s AS distance_km,
		       (SELECT p.postalcode FROM postalcodes p
		        WHERE p.countrycode = g.country
		          AND p.latitude  IS NOT NULL AND p.longitude IS NOT NULL
		          AND p.latitude  BETWEEN g.latitude  - %.4f AND g.latitude  + %.4f
		          AND p.longitude BETWEEN g.longitude - %.4f AND g.longitude + %.4f
		        ORDER BY %s
		        %s) AS postalcode
		FROM geoname g
		WHERE g.latitude  IS NOT NULL
		  AND g.longitude IS NOT NULL
		  AND %s
		%s
		ORDER BY distance_km
		%s`,
		haversineExpr(pt, "g"),
		deg, deg, deg, deg,
		haversineColExpr(),
		adapters.LimitClause(dialect, 1),
		boundingBoxExpr(pt, p.radiusMeters, "g"),
		countryClause,
		adapters.LimitClause(dialect, limit))
	return adapters.Rebind(dialect, query), args
}
