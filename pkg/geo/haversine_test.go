package geo

import (
	"math"
	"strings"
	"testing"
)

// TestHaversineZeroDistance tests that the distance from a point to itself is zero
func TestHaversineZeroDistance(t *testing.T) {
	p := Point{Lat: 19.4326, Lon: -99.1332}
	if d := Haversine(p, p); d != 0 {
		t.Errorf("distance to self = %g, want 0", d)
	}
}

// TestHaversineSymmetry tests that distance(a,b) == distance(b,a)
func TestHaversineSymmetry(t *testing.T) {
	a := Point{Lat: 48.8566, Lon: 2.3522}
	b := Point{Lat: 51.5074, Lon: -0.1278}

	d1 := Haversine(a, b)
	d2 := Haversine(b, a)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("asymmetric distance: %g vs %g", d1, d2)
	}
}

// TestHaversineKnownDistance tests against the well-known Paris-London distance
func TestHaversineKnownDistance(t *testing.T) {
	paris := Point{Lat: 48.8566, Lon: 2.3522}
	london := Point{Lat: 51.5074, Lon: -0.1278}

	d := Haversine(paris, london)
	// Great-circle distance is about 343-344 km
	if d < 330 || d > 360 {
		t.Errorf("Paris-London distance = %g km, expected ~343 km", d)
	}
}

// TestHaversineTriangleInequality tests the triangle inequality on three points
func TestHaversineTriangleInequality(t *testing.T) {
	a := Point{Lat: 19.4326, Lon: -99.1332}
	b := Point{Lat: 40.7128, Lon: -74.0060}
	c := Point{Lat: 34.0522, Lon: -118.2437}

	if Haversine(a, c) > Haversine(a, b)+Haversine(b, c)+1e-9 {
		t.Error("triangle inequality violated")
	}
}

// TestPointValidate tests coordinate validation
func TestPointValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Point
		wantErr bool
	}{
		{"valid", Point{19.4326, -99.1332}, false},
		{"poles", Point{90, 180}, false},
		{"antipodes", Point{-90, -180}, false},
		{"nan lat", Point{math.NaN(), 0}, true},
		{"nan lon", Point{0, math.NaN()}, true},
		{"lat too big", Point{90.1, 0}, true},
		{"lat too small", Point{-90.1, 0}, true},
		{"lon too big", Point{0, 180.1}, true},
		{"lon too small", Point{0, -180.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.p, err, tt.wantErr)
			}
		})
	}
}

// TestHaversineExprNoPower tests that the generated SQL avoids POWER(),
// which portable SQLite builds do not provide
func TestHaversineExprNoPower(t *testing.T) {
	expr := haversineExpr(Point{19.4326, -99.1332}, "")
	if strings.Contains(strings.ToUpper(expr), "POWER") {
		t.Errorf("expression must not use POWER(): %s", expr)
	}
	for _, fn := range []string{"ASIN", "SQRT", "SIN", "COS"} {
		if !strings.Contains(expr, fn) {
			t.Errorf("expression missing %s: %s", fn, expr)
		}
	}
}

// TestHaversineExprAlias tests table alias prefixing
func TestHaversineExprAlias(t *testing.T) {
	expr := haversineExpr(Point{10, 20}, "g")
	if !strings.Contains(expr, "g.latitude") || !strings.Contains(expr, "g.longitude") {
		t.Errorf("aliased expression must reference g.latitude/g.longitude: %s", expr)
	}

	plain := haversineExpr(Point{10, 20}, "")
	if strings.Contains(plain, "g.latitude") {
		t.Errorf("plain expression must not carry an alias: %s", plain)
	}
}
