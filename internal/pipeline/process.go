package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pharmamatch/internal"
	"pharmamatch/internal/catalog"
	"pharmamatch/internal/config"
	"pharmamatch/internal/history"
	"pharmamatch/internal/learning"
	"pharmamatch/internal/overrides"
	"pharmamatch/internal/pharma"
	"pharmamatch/internal/storage"
)

type RunService struct {
	db  *storage.DB
	cfg config.Config
	log *zap.Logger
}

// NewRunService accepts a nil db when learning is disabled.
func NewRunService(db *storage.DB, cfg config.Config, log *zap.Logger) *RunService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RunService{db: db, cfg: cfg, log: log}
}

type RunResult struct {
	Summary internal.RunSummary
	Results []internal.MatchResult
}

// Run loads the reference data, applies pending corrections, matches every
// invoice line and writes the report.
func (s *RunService) Run() (RunResult, error) {
	start := time.Now()
	timings := map[string]float64{}
	mark := func(stage string, since time.Time) {
		timings[stage+"Ms"] = float64(time.Since(since).Milliseconds())
	}
	runID := uuid.NewString()
	log := s.log.With(zap.String("run_id", runID))

	t := time.Now()
	items, err := catalog.Load(s.cfg.CatalogFile, pharma.NewParser())
	if err != nil {
		return RunResult{}, err
	}
	index := catalog.BuildIndex(items)
	mark("catalog", t)
	log.Info("catalog loaded", zap.Int("items", len(items)))

	t = time.Now()
	var hist *history.Index
	if s.cfg.PurchaseHistoryFile != "" {
		records, err := history.Load(s.cfg.PurchaseHistoryFile)
		if err != nil {
			return RunResult{}, fmt.Errorf("purchase history %s: %w", s.cfg.PurchaseHistoryFile, err)
		}
		hist = history.BuildIndex(records)
		log.Info("purchase history loaded", zap.Int("records", len(records)), zap.Int("items", hist.Len()))
	}
	mark("history", t)

	var learned MappingLookup
	if s.learningOn() {
		t = time.Now()
		ingestor := learning.NewIngestor(s.db, index, log, s.cfg.LearningBaseConfidence)
		if _, err := ingestor.IngestFile(s.cfg.CorrectionsFile); err != nil {
			return RunResult{}, err
		}
		stats, err := s.db.Stats(s.cfg.LearningConfidenceThreshold)
		if err != nil {
			return RunResult{}, err
		}
		fields := []zap.Field{
			zap.Int("mappings", stats.TotalMappings),
			zap.Int("high_confidence", stats.HighConfidenceMappings),
			zap.Int("corrections", stats.TotalCorrections),
		}
		if stats.LastCorrectionAt != nil {
			fields = append(fields, zap.Time("last_correction", *stats.LastCorrectionAt))
		}
		log.Info("learning store ready", fields...)
		learned = s.db
		mark("learning", t)
	}

	rules, err := overrides.LoadFile(s.cfg.OverridesFile)
	if err != nil {
		return RunResult{}, err
	}

	invoice, err := LoadInvoice(s.cfg.InvoiceFile, s.cfg.InvoiceSheet)
	if err != nil {
		return RunResult{}, err
	}
	log.Info("invoice loaded", zap.String("file", s.cfg.InvoiceFile), zap.Int("lines", len(invoice.Lines)))

	t = time.Now()
	matcher := NewMatcher(s.cfg, index, hist, learned, overrides.NewSet(rules), log)
	summary := internal.RunSummary{RunID: runID}
	results := make([]internal.MatchResult, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		res, ok, err := matcher.Match(line)
		if err != nil {
			return RunResult{}, err
		}
		if !ok {
			summary.Skipped++
			continue
		}
		tally(&summary, res)
		results = append(results, res)
	}
	mark("match", t)

	t = time.Now()
	if err := ExportResultsToXLSX(invoice.Table, results, s.cfg.OutputFile); err != nil {
		return RunResult{}, err
	}
	mark("export", t)
	mark("total", start)

	if s.db != nil {
		if err := s.db.InsertRun(runID, s.cfg.InvoiceFile, timings, summaryCounts(summary)); err != nil {
			log.Warn("failed to record run", zap.Error(err))
		}
		_ = s.db.SetMetadata("last_run_id", runID)
	}

	log.Info("run complete",
		zap.Int("total", summary.Total),
		zap.Int("skipped", summary.Skipped),
		zap.Int("learned", summary.Learned),
		zap.Int("overrides", summary.Overrides),
		zap.Int("auto_ok", summary.AutoOK),
		zap.Int("check", summary.Check),
		zap.Int("no_match", summary.NoMatch),
		zap.Int("list_price_warnings", summary.ListPriceWarnings),
		zap.String("output", s.cfg.OutputFile))

	return RunResult{Summary: summary, Results: results}, nil
}

func (s *RunService) learningOn() bool {
	return s.cfg.LearningEnabled && s.db != nil
}

func tally(s *internal.RunSummary, res internal.MatchResult) {
	s.Total++
	switch res.Source {
	case internal.SourceLearned:
		s.Learned++
	case internal.SourceOverride:
		s.Overrides++
	}
	switch res.Tier {
	case internal.TierAutoOK:
		s.AutoOK++
	case internal.TierCheck:
		s.Check++
	default:
		s.NoMatch++
	}
	if res.ListPriceStatus == internal.ListPriceCheck || res.ListPriceStatus == internal.ListPriceOvercharged {
		s.ListPriceWarnings++
	}
}

func summaryCounts(s internal.RunSummary) map[string]int {
	return map[string]int{
		"total":             s.Total,
		"skipped":           s.Skipped,
		"learned":           s.Learned,
		"overrides":         s.Overrides,
		"autoOk":            s.AutoOK,
		"check":             s.Check,
		"noMatch":           s.NoMatch,
		"listPriceWarnings": s.ListPriceWarnings,
	}
}
