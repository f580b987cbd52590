package tableio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	"github.com/xuri/excelize/v2"
)

// ReadFile dispatches on the file extension. sheet only applies to workbooks;
// an empty sheet selects the first one.
func ReadFile(path, sheet string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var t *Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		t, err = ReadXLSX(f, sheet)
	case ".csv", ".txt":
		t, err = ReadCSV(f)
	case ".html", ".htm":
		t, err = ReadHTML(f)
	case ".eml":
		t, err = ReadEML(f, sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// ReadXLSX reads raw cell values so dates arrive as serial numbers.
func ReadXLSX(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	return NewTable(rows), nil
}

func resolveSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrNoTable
	}
	if strings.TrimSpace(sheet) == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(s, sheet) {
			return s, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found (have %s)", sheet, strings.Join(sheets, ", "))
}

func ReadCSV(r io.Reader) (*Table, error) {
	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	blob = bytes.TrimPrefix(blob, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(blob))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if sep := sniffDelimiter(blob); sep != 0 {
		cr.Comma = sep
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return NewTable(rows), nil
}

func sniffDelimiter(blob []byte) rune {
	line := blob
	if i := bytes.IndexByte(blob, '\n'); i >= 0 {
		line = blob[:i]
	}
	best, bestCount := rune(0), 0
	for _, sep := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(sep))); n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}

// ReadHTML takes the first table that has a header and at least one data row.
func ReadHTML(r io.Reader) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var found *Table
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		raw := [][]string{}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.Join(strings.Fields(cell.Text()), " "))
			})
			raw = append(raw, cells)
		})
		t := NewTable(raw)
		if len(t.Headers) > 0 && len(t.Rows) > 0 {
			found = t
			return false
		}
		return true
	})
	if found == nil {
		return nil, ErrNoTable
	}
	return found, nil
}

// ReadEML looks for a spreadsheet, CSV or HTML attachment first and falls
// back to a table in the HTML body.
func ReadEML(r io.Reader, sheet string) (*Table, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	for _, att := range env.Attachments {
		lower := strings.ToLower(strings.TrimSpace(att.FileName))
		var t *Table
		var err error
		switch {
		case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xlsm"):
			t, err = ReadXLSX(bytes.NewReader(att.Content), sheet)
			if err != nil && sheet != "" {
				t, err = ReadXLSX(bytes.NewReader(att.Content), "")
			}
		case strings.HasSuffix(lower, ".csv"):
			t, err = ReadCSV(bytes.NewReader(att.Content))
		case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
			t, err = ReadHTML(bytes.NewReader(att.Content))
		default:
			continue
		}
		if err == nil && len(t.Rows) > 0 {
			return t, nil
		}
	}

	if env.HTML != "" {
		return ReadHTML(strings.NewReader(env.HTML))
	}
	return nil, ErrNoTable
}
