package storage

import (
	"database/sql"
	"errors"
	"math"

	"pharmamatch/internal"
)

// MaxConfidence caps reinforced confidence.
const MaxConfidence = 0.98

type mappingRow struct {
	ID                  int64          `db:"id"`
	InvoicePattern      string         `db:"invoice_pattern"`
	InvoicePatternClean string         `db:"invoice_pattern_clean"`
	SupplierPattern     sql.NullString `db:"supplier_pattern"`
	ItemCode            string         `db:"master_item_code"`
	ItemName            string         `db:"master_item_name"`
	Confidence          float64        `db:"confidence"`
	TimesSeen           int            `db:"times_seen"`
	TimesConfirmed      int            `db:"times_confirmed"`
	LearnedDate         string         `db:"learned_date"`
	LastConfirmed       string         `db:"last_confirmed"`
}

func (r mappingRow) toMapping() internal.LearnedMapping {
	m := internal.LearnedMapping{
		ID:                  r.ID,
		InvoicePattern:      r.InvoicePattern,
		InvoicePatternClean: r.InvoicePatternClean,
		ItemCode:            r.ItemCode,
		ItemName:            r.ItemName,
		Confidence:          r.Confidence,
		TimesSeen:           r.TimesSeen,
		TimesConfirmed:      r.TimesConfirmed,
		LearnedAt:           parseStamp(r.LearnedDate),
		LastConfirmedAt:     parseStamp(r.LastConfirmed),
	}
	if r.SupplierPattern.Valid {
		s := r.SupplierPattern.String
		m.SupplierPattern = &s
	}
	return m
}

const mappingColumns = `id, invoice_pattern, invoice_pattern_clean, supplier_pattern, master_item_code, master_item_name,
       confidence, times_seen, times_confirmed, learned_date, last_confirmed`

// LookupMapping prefers a mapping for the exact supplier over a supplier-agnostic
// one. With no supplier every mapping for the name competes on confidence.
func (d *DB) LookupMapping(patternClean, supplier string, minConfidence float64) (*internal.LearnedMapping, error) {
	var row mappingRow
	var err error
	if supplier != "" {
		err = d.conn.Get(&row, `
SELECT `+mappingColumns+`
FROM learned_mappings
WHERE invoice_pattern_clean = ?
  AND (supplier_pattern = ? OR supplier_pattern IS NULL)
  AND confidence >= ?
ORDER BY supplier_pattern IS NOT NULL DESC, confidence DESC, times_confirmed DESC, id ASC
LIMIT 1`, patternClean, supplier, minConfidence)
	} else {
		err = d.conn.Get(&row, `
SELECT `+mappingColumns+`
FROM learned_mappings
WHERE invoice_pattern_clean = ?
  AND confidence >= ?
ORDER BY confidence DESC, times_confirmed DESC, id ASC
LIMIT 1`, patternClean, minConfidence)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := row.toMapping()
	return &m, nil
}

// UpsertMapping reinforces an existing (name, supplier, code) mapping or
// inserts a new one at the base confidence.
func (d *DB) UpsertMapping(pattern, patternClean string, supplier *string, code, name string, base float64) (internal.LearnedMapping, error) {
	tx, err := d.conn.Beginx()
	if err != nil {
		return internal.LearnedMapping{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := d.stamp()
	var existing mappingRow
	err = tx.Get(&existing, `
SELECT `+mappingColumns+`
FROM learned_mappings
WHERE invoice_pattern_clean = ? AND master_item_code = ? AND supplier_pattern IS ?
ORDER BY confidence DESC, id ASC
LIMIT 1`, patternClean, code, nullable(supplier))

	var id int64
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.Exec(`
INSERT INTO learned_mappings (
  invoice_pattern, invoice_pattern_clean, supplier_pattern, master_item_code, master_item_name,
  confidence, times_seen, times_confirmed, learned_date, last_confirmed
) VALUES (?, ?, ?, ?, ?, ?, 1, 1, ?, ?)`,
			pattern, patternClean, nullable(supplier), code, name, math.Min(base, MaxConfidence), now, now)
		if err != nil {
			return internal.LearnedMapping{}, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return internal.LearnedMapping{}, err
		}
	case err != nil:
		return internal.LearnedMapping{}, err
	default:
		confirmed := existing.TimesConfirmed + 1
		confidence := math.Min(MaxConfidence, existing.Confidence+0.01*float64(confirmed))
		if _, err := tx.Exec(`
UPDATE learned_mappings
SET times_seen = ?, times_confirmed = ?, confidence = ?, master_item_name = ?, last_confirmed = ?
WHERE id = ?`, existing.TimesSeen+1, confirmed, confidence, name, now, existing.ID); err != nil {
			return internal.LearnedMapping{}, err
		}
		id = existing.ID
	}

	var row mappingRow
	if err := tx.Get(&row, `SELECT `+mappingColumns+` FROM learned_mappings WHERE id = ?`, id); err != nil {
		return internal.LearnedMapping{}, err
	}
	if err := tx.Commit(); err != nil {
		return internal.LearnedMapping{}, err
	}
	return row.toMapping(), nil
}

func (d *DB) ListMappings() ([]internal.LearnedMapping, error) {
	var rows []mappingRow
	if err := d.conn.Select(&rows, `
SELECT `+mappingColumns+`
FROM learned_mappings
ORDER BY confidence DESC, times_confirmed DESC, id ASC`); err != nil {
		return nil, err
	}
	out := make([]internal.LearnedMapping, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toMapping())
	}
	return out, nil
}

func (d *DB) AppendCorrection(rec internal.CorrectionRecord) error {
	when := d.stamp()
	if !rec.CorrectedAt.IsZero() {
		when = rec.CorrectedAt.UTC().Format(timeLayout)
	}
	_, err := d.conn.Exec(`
INSERT INTO correction_history (
  invoice_no, line_no, invoice_item_name, supplier_name,
  suggested_item_code, suggested_item_name, suggested_score,
  corrected_item_code, corrected_item_name, correction_date, correction_reason
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.InvoiceNo, rec.LineNo, rec.InvoiceItemName, rec.Supplier,
		rec.SuggestedCode, rec.SuggestedName, nullableFloat(rec.SuggestedScore),
		rec.CorrectedCode, rec.CorrectedName, when, rec.Note)
	return err
}

func (d *DB) Stats(highConfidence float64) (internal.LearningStats, error) {
	var stats internal.LearningStats
	if err := d.conn.Get(&stats.TotalMappings, `SELECT COUNT(*) FROM learned_mappings`); err != nil {
		return stats, err
	}
	if err := d.conn.Get(&stats.HighConfidenceMappings, `SELECT COUNT(*) FROM learned_mappings WHERE confidence >= ?`, highConfidence); err != nil {
		return stats, err
	}
	if err := d.conn.Get(&stats.TotalCorrections, `SELECT COUNT(*) FROM correction_history`); err != nil {
		return stats, err
	}
	var last sql.NullString
	if err := d.conn.Get(&last, `SELECT MAX(correction_date) FROM correction_history`); err != nil {
		return stats, err
	}
	if last.Valid && last.String != "" {
		t := parseStamp(last.String)
		stats.LastCorrectionAt = &t
	}
	return stats, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
