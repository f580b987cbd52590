// Package tableio reads header-addressed tables from spreadsheets,
// CSV exports, HTML pages and emailed attachments.
package tableio

import (
	"errors"
	"fmt"
	"strings"

	"pharmamatch/internal/util"
)

var (
	ErrMissingColumns    = errors.New("missing required columns")
	ErrUnsupportedFormat = errors.New("unsupported table format")
	ErrNoTable           = errors.New("no table found")
)

// Column names a logical column: the display name first, then aliases.
type Column []string

func (c Column) Name() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

type Table struct {
	Headers []string
	Rows    [][]string
	index   map[string]int
}

// NewTable treats the first non-empty row as the header and drops blank rows.
func NewTable(raw [][]string) *Table {
	t := &Table{index: map[string]int{}}
	for _, row := range raw {
		cells := trimCells(row)
		if isBlank(cells) {
			continue
		}
		if t.Headers == nil {
			t.Headers = cells
			for i, h := range cells {
				key := util.NormalizeColumn(h)
				if _, dup := t.index[key]; !dup && key != "" {
					t.index[key] = i
				}
			}
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// Index returns the position of the first alias present in the header, or -1.
func (t *Table) Index(c Column) int {
	for _, alias := range c {
		if i, ok := t.index[util.NormalizeColumn(alias)]; ok {
			return i
		}
	}
	return -1
}

func (t *Table) Require(cols ...Column) error {
	missing := []string{}
	for _, c := range cols {
		if t.Index(c) < 0 {
			missing = append(missing, c.Name())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// Cell returns the trimmed value at col, or "" when the column is absent.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(strings.ReplaceAll(c, "\u00a0", " "))
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
