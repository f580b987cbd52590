// Package learning turns reviewed match corrections into reusable mappings.
package learning

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"pharmamatch/internal"
	"pharmamatch/internal/tableio"
	"pharmamatch/internal/util"
)

// Store is the persistence the matcher and the ingestor need.
type Store interface {
	LookupMapping(patternClean, supplier string, minConfidence float64) (*internal.LearnedMapping, error)
	UpsertMapping(pattern, patternClean string, supplier *string, code, name string, base float64) (internal.LearnedMapping, error)
	AppendCorrection(rec internal.CorrectionRecord) error
	Stats(highConfidence float64) (internal.LearningStats, error)
	ListMappings() ([]internal.LearnedMapping, error)
}

// Catalog resolves corrected codes to catalog entries.
type Catalog interface {
	Lookup(code string) (*internal.CatalogItem, bool)
}

var (
	ColInvoiceNo     = tableio.Column{"Invoice_No"}
	ColLineNo        = tableio.Column{"Line_No"}
	ColItemName      = tableio.Column{"Invoice_Item_Name"}
	ColSupplier      = tableio.Column{"Supplier_Name"}
	ColSuggestedCode = tableio.Column{"Suggested_Item_Code"}
	ColSuggestedName = tableio.Column{"Suggested_Item_Name"}
	ColFinalScore    = tableio.Column{"Final_Score"}
	ColCorrectedCode = tableio.Column{"Corrected_Item_Code"}
	ColNotes         = tableio.Column{"Notes", "Note"}
)

// PatternKey is the lookup key for an invoice description.
func PatternKey(itemName string) string {
	return util.CleanBasic(itemName)
}

// SupplierKey is nil when the supplier is unknown so the mapping applies to any supplier.
func SupplierKey(supplier string) *string {
	s := util.SimplifySupplier(supplier)
	if s == "" {
		return nil
	}
	return &s
}

// ReadCorrections keeps only rows where a reviewer picked a different code
// than the one suggested.
func ReadCorrections(tbl *tableio.Table) ([]internal.CorrectionRecord, error) {
	if err := tbl.Require(ColItemName, ColSuggestedCode, ColCorrectedCode); err != nil {
		return nil, err
	}
	var (
		invNo     = tbl.Index(ColInvoiceNo)
		lineNo    = tbl.Index(ColLineNo)
		name      = tbl.Index(ColItemName)
		supplier  = tbl.Index(ColSupplier)
		suggested = tbl.Index(ColSuggestedCode)
		sugName   = tbl.Index(ColSuggestedName)
		score     = tbl.Index(ColFinalScore)
		corrected = tbl.Index(ColCorrectedCode)
		notes     = tbl.Index(ColNotes)
	)

	out := []internal.CorrectionRecord{}
	for _, row := range tbl.Rows {
		correctedCode := tableio.Cell(row, corrected)
		suggestedCode := tableio.Cell(row, suggested)
		if correctedCode == "" || strings.EqualFold(correctedCode, suggestedCode) {
			continue
		}
		out = append(out, internal.CorrectionRecord{
			InvoiceNo:       tableio.Cell(row, invNo),
			LineNo:          tableio.Cell(row, lineNo),
			InvoiceItemName: tableio.Cell(row, name),
			Supplier:        tableio.Cell(row, supplier),
			SuggestedCode:   suggestedCode,
			SuggestedName:   tableio.Cell(row, sugName),
			SuggestedScore:  util.ParseAmount(tableio.Cell(row, score)),
			CorrectedCode:   correctedCode,
			Note:            tableio.Cell(row, notes),
		})
	}
	return out, nil
}

type IngestResult struct {
	Read    int
	Learned int
	Skipped int
}

type Ingestor struct {
	store   Store
	catalog Catalog
	log     *zap.Logger
	base    float64
}

func NewIngestor(store Store, catalog Catalog, log *zap.Logger, baseConfidence float64) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{store: store, catalog: catalog, log: log, base: baseConfidence}
}

// IngestFile treats a missing corrections file as nothing to learn.
func (in *Ingestor) IngestFile(path string) (IngestResult, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		in.log.Info("no corrections file", zap.String("path", path))
		return IngestResult{}, nil
	}
	tbl, err := tableio.ReadFile(path, "")
	if err != nil {
		return IngestResult{}, fmt.Errorf("corrections %s: %w", path, err)
	}
	records, err := ReadCorrections(tbl)
	if err != nil {
		return IngestResult{}, fmt.Errorf("corrections %s: %w", path, err)
	}
	return in.Ingest(records)
}

// Ingest records each correction in the audit log before reinforcing its
// mapping. Records are independent: a failure stops the batch but earlier
// records stay applied.
func (in *Ingestor) Ingest(records []internal.CorrectionRecord) (IngestResult, error) {
	res := IngestResult{Read: len(records)}
	for _, rec := range records {
		item, ok := in.catalog.Lookup(rec.CorrectedCode)
		if !ok {
			in.log.Warn("corrected code not in catalog",
				zap.String("code", rec.CorrectedCode),
				zap.String("invoice_item", rec.InvoiceItemName))
			res.Skipped++
			continue
		}
		key := PatternKey(rec.InvoiceItemName)
		if key == "" {
			res.Skipped++
			continue
		}

		rec.CorrectedCode = item.Code
		rec.CorrectedName = item.Name
		if err := in.store.AppendCorrection(rec); err != nil {
			return res, fmt.Errorf("record correction for %q: %w", rec.InvoiceItemName, err)
		}
		m, err := in.store.UpsertMapping(rec.InvoiceItemName, key, SupplierKey(rec.Supplier), item.Code, item.Name, in.base)
		if err != nil {
			return res, fmt.Errorf("learn mapping for %q: %w", rec.InvoiceItemName, err)
		}
		in.log.Debug("learned mapping",
			zap.String("pattern", key),
			zap.String("code", m.ItemCode),
			zap.Float64("confidence", m.Confidence),
			zap.Int("times_confirmed", m.TimesConfirmed))
		res.Learned++
	}
	in.log.Info("corrections ingested",
		zap.Int("read", res.Read),
		zap.Int("learned", res.Learned),
		zap.Int("skipped", res.Skipped))
	return res, nil
}
