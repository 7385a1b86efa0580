package geo

import (
	"context"
	"testing"

	"github.com/rodgg/geonames-db/pkg/adapters"
)

// probeAdapter fakes only the capability surface used by strategy detection
type probeAdapter struct {
	dialect       string
	geoExtensions bool
	types         map[string]bool
	extensions    map[string]bool
	typeProbes    int
	extProbes     int
}

func (f *probeAdapter) Connect(ctx context.Context, cfg adapters.Config) error { return nil }
func (f *probeAdapter) Close(ctx context.Context) error { return nil }
func (f *probeAdapter) Ping(ctx context.Context) error { return nil }
func (f *probeAdapter) Dialect() string { return f.dialect }
func (f *probeAdapter) Capabilities() adapters.Capabilities {
	return adapters.Capabilities{GeoExtensions: f.geoExtensions}
}
func (f *probeAdapter) DatabaseVersion(ctx context.Context) (string, error) { return "fake", nil }
func (f *probeAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	return nil
}
func (f *probeAdapter) Query(ctx context.Context, sql string, args ...any) (adapters.Rows, error) {
	return nil, nil
}
func (f *probeAdapter) QueryCount(ctx context.Context, sql string, args ...any) (int64, error) {
	return 0, nil
}
func (f *probeAdapter) BeginTx(ctx context.Context) (adapters.Tx, error) { return nil, nil }
func (f *probeAdapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	return false, nil
}
func (f *probeAdapter) BulkCopy(ctx context.Context, table string, columns []string, src adapters.RowSource) (int64, error) {
	return 0, adapters.ErrBulkCopyUnsupported
}
func (f *probeAdapter) HasExtension(ctx context.Context, name string) (bool, error) {
	f.extProbes++
	return f.extensions[name], nil
}
func (f *probeAdapter) HasType(ctx context.Context, name string) (bool, error) {
	f.typeProbes++
	return f.types[name], nil
}
func (f *probeAdapter) CreateExtension(ctx context.Context, name string) error { return nil }

var _ adapters.Adapter = (*probeAdapter)(nil)

// TestDetectStrategy tests strategy selection per capability combination
func TestDetectStrategy(t *testing.T) {
	tests := []struct {
		name string
		a    *probeAdapter
		want Strategy
	}{
		{
			name: "non-postgres dialect goes straight to haversine",
			a:    &probeAdapter{dialect: "sqlite"},
			want: HaversineScan,
		},
		{
			name: "geography type wins",
			a: &probeAdapter{
				dialect: "postgres", geoExtensions: true,
				types:      map[string]bool{"geography": true},
				extensions: map[string]bool{"postgis": true, "earthdistance": true},
			},
			want: ExactGeography,
		},
		{
			name: "extension without the type must not pick geography",
			a: &probeAdapter{
				dialect: "postgres", geoExtensions: true,
				types:      map[string]bool{},
				extensions: map[string]bool{"ganos_spatialref": true, "earthdistance": true},
			},
			want: SphericalExtension,
		},
		{
			name: "earthdistance only",
			a: &probeAdapter{
				dialect: "postgres", geoExtensions: true,
				extensions: map[string]bool{"earthdistance": true},
			},
			want: SphericalExtension,
		},
		{
			name: "bare postgres degrades to haversine",
			a:    &probeAdapter{dialect: "postgres", geoExtensions: true},
			want: HaversineScan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(context.Background(), tt.a)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPlannerProbesOnce tests that the planner probes capabilities at
// construction only, not per query
func TestPlannerProbesOnce(t *testing.T) {
	a := &probeAdapter{
		dialect: "postgres", geoExtensions: true,
		extensions: map[string]bool{"earthdistance": true},
	}

	planner, err := NewPlanner(context.Background(), a)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}
	if planner.Strategy() != SphericalExtension {
		t.Fatalf("strategy = %v, want SphericalExtension", planner.Strategy())
	}

	probesAfterNew := a.typeProbes + a.extProbes

	// Building query SQL must not re-probe
	for i := 0; i < 5; i++ {
		planner.postalEarthdistanceSQL(Point{10, 20}, 3, "")
		planner.placeEarthdistanceSQL(Point{10, 20}, 3, "MX")
	}
	if a.typeProbes+a.extProbes != probesAfterNew {
		t.Errorf("planner re-probed capabilities after construction")
	}
}

// TestStrategyDescribe tests human-readable strategy names
func TestStrategyDescribe(t *testing.T) {
	if s := ExactGeography.String(); s != "geography" {
		t.Errorf("ExactGeography.String() = %q", s)
	}
	if s := SphericalExtension.String(); s != "earthdistance" {
		t.Errorf("SphericalExtension.String() = %q", s)
	}
	if s := HaversineScan.String(); s != "haversine" {
		t.Errorf("HaversineScan.String() = %q", s)
	}
}
