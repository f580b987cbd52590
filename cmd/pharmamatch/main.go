package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"pharmamatch/internal/catalog"
	"pharmamatch/internal/config"
	"pharmamatch/internal/learning"
	"pharmamatch/internal/logging"
	"pharmamatch/internal/pharma"
	"pharmamatch/internal/pipeline"
	"pharmamatch/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogPretty)
	must(err)
	defer func() { _ = log.Sync() }()

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		invoice := fs.String("invoice", cfg.InvoiceFile, "invoice workbook, csv, html or eml")
		sheet := fs.String("sheet", cfg.InvoiceSheet, "invoice sheet name")
		catalogFile := fs.String("catalog", cfg.CatalogFile, "catalog file")
		historyFile := fs.String("history", cfg.PurchaseHistoryFile, "purchase history file")
		corrections := fs.String("corrections", cfg.CorrectionsFile, "corrections file to learn from before matching")
		rules := fs.String("overrides", cfg.OverridesFile, "override rules yaml (default rules when empty)")
		output := fs.String("output", cfg.OutputFile, "output xlsx path")
		noLearning := fs.Bool("no-learning", !cfg.LearningEnabled, "skip the learning store")
		_ = fs.Parse(os.Args[2:])

		cfg.InvoiceFile = *invoice
		cfg.InvoiceSheet = *sheet
		cfg.CatalogFile = *catalogFile
		cfg.PurchaseHistoryFile = *historyFile
		cfg.CorrectionsFile = *corrections
		cfg.OverridesFile = *rules
		cfg.OutputFile = *output
		cfg.LearningEnabled = !*noLearning
		must(cfg.Require("invoice", cfg.InvoiceFile))
		must(cfg.Require("catalog", cfg.CatalogFile))
		must(cfg.Require("output", cfg.OutputFile))

		var db *storage.DB
		if cfg.LearningEnabled {
			db, err = storage.Open(cfg.LearningDBPath)
			must(err)
			defer db.Close()
		}
		res, err := pipeline.NewRunService(db, cfg, log).Run()
		must(err)
		s := res.Summary
		fmt.Printf("run %s done lines=%d skipped=%d learned=%d overrides=%d\n", s.RunID, s.Total, s.Skipped, s.Learned, s.Overrides)
		fmt.Printf("  AUTO_OK=%d (%s) CHECK=%d (%s) NO_MATCH=%d (%s)\n",
			s.AutoOK, pct(s.AutoOK, s.Total), s.Check, pct(s.Check, s.Total), s.NoMatch, pct(s.NoMatch, s.Total))
		fmt.Printf("  list price warnings=%d output=%s\n", s.ListPriceWarnings, cfg.OutputFile)
	case "learn:ingest":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		corrections := fs.String("corrections", cfg.CorrectionsFile, "corrections file")
		catalogFile := fs.String("catalog", cfg.CatalogFile, "catalog file used to resolve corrected codes")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*corrections) == "" {
			must(fmt.Errorf("--corrections is required"))
		}
		items, err := catalog.Load(*catalogFile, pharma.NewParser())
		must(err)
		db := openStore(cfg)
		defer db.Close()
		res, err := learning.NewIngestor(db, catalog.BuildIndex(items), log, cfg.LearningBaseConfidence).IngestFile(*corrections)
		must(err)
		fmt.Printf("corrections read=%d learned=%d skipped=%d\n", res.Read, res.Learned, res.Skipped)
	case "learn:stats":
		db := openStore(cfg)
		defer db.Close()
		stats, err := db.Stats(cfg.LearningConfidenceThreshold)
		must(err)
		fmt.Printf("learned mappings:  %d\n", stats.TotalMappings)
		fmt.Printf("high confidence:   %d (>= %.2f)\n", stats.HighConfidenceMappings, cfg.LearningConfidenceThreshold)
		fmt.Printf("corrections:       %d\n", stats.TotalCorrections)
		if stats.LastCorrectionAt != nil {
			fmt.Printf("last correction:   %s\n", stats.LastCorrectionAt.Local().Format("2006-01-02 15:04:05"))
		}
	case "learn:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		db := openStore(cfg)
		defer db.Close()
		n, err := learning.ExportMappings(db, *out)
		must(err)
		log.Info("learned mappings exported", zap.Int("count", n), zap.String("out", *out))
		fmt.Printf("exported %d learned mappings to %s\n", n, *out)
	default:
		usage()
		os.Exit(1)
	}
}

func openStore(cfg config.Config) *storage.DB {
	db, err := storage.Open(cfg.LearningDBPath)
	must(err)
	return db
}

func pct(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}

func usage() {
	fmt.Println("usage: pharmamatch <command>")
	fmt.Println("commands:")
	fmt.Println("  run [--invoice=... --sheet=Invoice_Input --catalog=... --history=... --corrections=... --overrides=... --output=...xlsx --no-learning]")
	fmt.Println("  learn:ingest --corrections=... [--catalog=...]")
	fmt.Println("  learn:stats")
	fmt.Println("  learn:export --out=./out/learned_mappings.xlsx")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
