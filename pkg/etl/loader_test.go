package etl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/rodgg/geonames-db/pkg/adapters"
	"github.com/rodgg/geonames-db/pkg/adapters/sqlite"
	"github.com/rodgg/geonames-db/pkg/core/schema"
)

func TestFileSpecsOrder(t *testing.T) {
	specs := FileSpecs("postal")
	if len(specs) != 9 {
		t.Fatalf("got %d file specs, want 9", len(specs))
	}
	// geoname первым: сбой конфигурации должен проявиться сразу
	if specs[0].Table != schema.TableGeoname {
		t.Errorf("first table = %s, want geoname", specs[0].Table)
	}
	if specs[len(specs)-1].Path != filepath.Join("postal", "allCountries.txt") {
		t.Errorf("postal path = %s", specs[len(specs)-1].Path)
	}
}

// TestLoadFileGzip tests that a gzip-compressed dump is found and
// loaded transparently in place of the plain file
func TestLoadFileGzip(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	f, err := os.Create(filepath.Join(dataDir, "timeZones.txt.tmp.gz"))
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	zw.Write([]byte(tsv("MX", "America/Mexico_City", "-6.0", "-5.0", "-6.0") +
		tsv("FR", "Europe/Paris", "1.0", "2.0", "1.0")))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	adapter := sqlite.New()
	if err := adapter.Connect(ctx, adapters.Config{DSN: "file:" + filepath.Join(t.TempDir(), "geo.db")}); err != nil {
		t.Fatal(err)
	}
	defer adapter.Close(ctx)

	s := schema.NewGeonames()
	b := schema.NewBuilder("sqlite")
	if err := adapter.Exec(ctx, b.CreateTableSQL(*s.Table(schema.TableTimezones))); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Download: DownloadConfig{DataDir: dataDir}}
	cfg.SetDefaults()
	loader := NewBulkLoader(adapter, s, cfg)

	n, err := loader.loadFile(ctx, FileSpec{Table: schema.TableTimezones, Path: "timeZones.txt.tmp"})
	if err != nil {
		t.Fatalf("loadFile failed: %v", err)
	}
	if n != 2 {
		t.Errorf("loaded %d rows, want 2", n)
	}

	got, err := adapter.QueryCount(ctx, "SELECT count(*) FROM timezones")
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Errorf("timezones rows = %d, want 2", got)
	}
}

func TestCheckRequiredListsAllMissing(t *testing.T) {
	cfg := &Config{Download: DownloadConfig{DataDir: t.TempDir()}}
	cfg.SetDefaults()
	loader := NewBulkLoader(nil, schema.NewGeonames(), cfg)

	err := loader.CheckRequired()
	if err == nil {
		t.Fatal("expected error for empty data dir")
	}
	for _, spec := range FileSpecs("postalcodes") {
		if !strings.Contains(err.Error(), spec.Path) {
			t.Errorf("error does not mention %s", spec.Path)
		}
	}
}
