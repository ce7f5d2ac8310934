// kas-export dumps the cash book from the command line: the full ledger
// (or a filtered slice) as CSV, or one month's shareable recap text.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/config"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/export"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/ledger"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/storage"
)

func main() {
	_ = godotenv.Load()

	var (
		format = flag.String("format", "csv", "output format: csv or recap")
		month  = flag.String("month", "", "restrict to one month (YYYY-MM); required for recap")
		year   = flag.String("year", "", "restrict csv output to one year (YYYY)")
		kind   = flag.String("kind", "", "restrict csv output to income or expense")
		out    = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentExport)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, logger, *format, *month, *year, *kind, *out); err != nil {
		fmt.Fprintln(os.Stderr, "kas-export:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger, format, month, year, kind, out string) error {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer repo.Close()

	dst := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		dst = f
	}

	ctx := context.Background()

	switch format {
	case "csv":
		var records []core.Transaction
		if month != "" && kind == "" && year == "" {
			// A plain month dump can go straight to storage without
			// loading the whole ledger.
			key := core.MonthKey(month)
			if !key.Valid() {
				return fmt.Errorf("-month must be formatted YYYY-MM")
			}
			records, err = repo.ListTransactionsByMonth(ctx, key)
			if err != nil {
				return fmt.Errorf("loading month: %w", err)
			}
		} else {
			store := ledger.NewStore(repo, nil, logger)
			if err := store.Refresh(ctx); err != nil {
				return fmt.Errorf("loading ledger: %w", err)
			}
			q := ledger.Query{Month: core.MonthKey(month), Year: year}
			if kind != "" {
				parsed, err := core.ParseKind(kind)
				if err != nil {
					return err
				}
				q.Kind = parsed
			}
			records = store.Filter(q)
		}
		if err := export.WriteCSV(dst, records); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		logger.Info("csv written", log.FieldCount, len(records))
		return nil

	case "recap":
		key := core.MonthKey(month)
		if !key.Valid() {
			return fmt.Errorf("recap needs -month formatted YYYY-MM")
		}
		store := ledger.NewStore(repo, nil, logger)
		if err := store.Refresh(ctx); err != nil {
			return fmt.Errorf("loading ledger: %w", err)
		}
		text, err := export.RecapText(store.Report(), key)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(dst, text); err != nil {
			return fmt.Errorf("writing recap: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q, want csv or recap", format)
	}
}
