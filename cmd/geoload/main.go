// geoload загружает дампы GeoNames в реляционную базу данных.
//
// Использование:
//
//	geoload --config config/config.yaml [-o] [--skip-indexes]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rodgg/geonames-db/pkg/adapters"
	"github.com/rodgg/geonames-db/pkg/audit"
	"github.com/rodgg/geonames-db/pkg/etl"
	"github.com/rodgg/geonames-db/pkg/resultlog"
	"github.com/rodgg/geonames-db/pkg/retry"

	// DB adapter registrations — подключить достаточно, остальное уже написано
	_ "github.com/rodgg/geonames-db/pkg/adapters/mssql"
	_ "github.com/rodgg/geonames-db/pkg/adapters/mysql"
	_ "github.com/rodgg/geonames-db/pkg/adapters/postgres"
	_ "github.com/rodgg/geonames-db/pkg/adapters/sqlite"
)

func main() {
	configFile := flag.String("config", "config/config.yaml", "path to config YAML file")
	skipIndexes := flag.Bool("skip-indexes", false, "skip creating indexes and constraints")
	overwrite := flag.Bool("overwrite", false, "drop and recreate all tables before loading")
	flag.BoolVar(overwrite, "o", false, "shorthand for --overwrite")
	flag.Parse()

	if err := run(*configFile, *overwrite, *skipIndexes); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string, overwrite, skipIndexes bool) error {
	ctx := context.Background()

	cfg, err := etl.LoadConfig(configFile)
	if err != nil {
		return err
	}

	adapterCfg, err := cfg.AdapterConfig()
	if err != nil {
		return err
	}

	retryer, err := retry.NewRetryer(cfg.RetryerConfig())
	if err != nil {
		return fmt.Errorf("invalid retry configuration: %w", err)
	}

	var adapter adapters.Adapter
	if err := retryer.Do(ctx, func(ctx context.Context) error {
		var connErr error
		adapter, connErr = adapters.New(ctx, adapterCfg)
		return connErr
	}); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer adapter.Close(ctx)

	version, err := adapter.DatabaseVersion(ctx)
	if err != nil {
		version = "unknown"
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Geonames database loader")
	fmt.Printf("  Engine  : %s\n", adapter.Dialect())
	fmt.Printf("  Version : %s\n", version)
	fmt.Printf("  Data dir: %s\n", cfg.Download.DataDir)
	fmt.Println(strings.Repeat("=", 60))

	auditor, err := buildAuditor(cfg)
	if err != nil {
		return err
	}
	defer auditor.Close()
	auditor.LogSuccess(ctx, audit.OpConnect)

	pipeline, err := etl.NewPipeline(cfg, adapter, auditor)
	if err != nil {
		return err
	}
	pipeline.OnNotice = func(msg string) {
		fmt.Printf("  [%s]\n", msg)
	}

	stats, runErr := pipeline.Run(ctx, etl.Options{
		Overwrite:   overwrite,
		SkipIndexes: skipIndexes,
	})

	if cfg.ResultLog.Enabled() {
		publisher := resultlog.NewRedisPublisher(cfg.ResultLog)
		if err := retryer.Do(ctx, func(ctx context.Context) error {
			return publisher.Publish(ctx, stats, runErr)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: result publish failed: %v\n", err)
		}
		publisher.Close()
	}

	if runErr != nil {
		return runErr
	}

	fmt.Println("\nLoaded rows:")
	for _, spec := range etl.FileSpecs(cfg.Download.PostalSubdir) {
		fmt.Printf("  %-20s %12d\n", spec.Table, stats.TableRows[spec.Table])
	}
	fmt.Printf("  %-20s %12d\n", "continentcodes", stats.TableRows["continentcodes"])
	fmt.Printf("\nTotal: %d rows in %s\n", stats.TotalRows, stats.Duration.Round(time.Second))
	return nil
}

func buildAuditor(cfg *etl.Config) (audit.Logger, error) {
	if !cfg.Audit.Enabled {
		return audit.NewNullLogger(), nil
	}
	if cfg.Audit.Output == "" {
		return audit.NewLogger(audit.NewConsoleAppender()), nil
	}
	fa, err := audit.NewFileAppender(cfg.Audit.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return audit.NewLogger(fa), nil
}
