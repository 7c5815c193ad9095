// Package ingest decodes uploaded claim exports into a raw table of
// strings. It owns file-format and text-encoding concerns so the analytics
// engine only ever sees in-memory structured data.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// RawTable is an ordered table of string cells with normalized headers.
// Header names are trimmed, lower-cased, with spaces replaced by
// underscores; cell order within each row matches the header order.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Empty reports whether the table holds zero data rows.
func (t *RawTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// headerVocabulary lists the column names a claim export may use for any
// canonical field. A row matching at least two of these is taken as the
// header row, which subsumes exports that carry leading title rows.
var headerVocabulary = map[string]bool{
	"cpt": true, "procedure_code": true, "cpt_code": true,
	"insurance": true, "payer": true, "insurance_company": true,
	"physician": true, "provider": true, "doctor": true, "physician_name": true,
	"payment": true, "paid_amount": true, "payment_amount": true,
	"balance": true, "outstanding": true, "balance_due": true,
	"denial_reason": true, "reason": true, "denial_code": true, "reason_code": true,
}

// csvFallbacks are tried in order when the bytes are not valid UTF-8.
var csvFallbacks = []struct {
	name string
	enc  encoding.Encoding
}{
	{"latin-1", charmap.ISO8859_1},
	{"cp1252", charmap.Windows1252},
	{"utf-16", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
}

// DecodeTable reads uploaded bytes as Excel first, then as CSV across a
// chain of text encodings, and returns the raw table. The error reports
// why no reader succeeded; callers surface it as an unreadable-input
// failure.
func DecodeTable(data []byte, logger *slog.Logger) (*RawTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	if rows, err := decodeExcel(data); err == nil {
		logger.Debug("decoded upload as Excel", slog.Int("rows", len(rows)))
		return buildTable(rows)
	} else {
		logger.Debug("Excel decode failed, trying CSV", slog.String("error", err.Error()))
	}

	rows, encodingName, err := decodeCSV(data)
	if err != nil {
		return nil, fmt.Errorf("decode as CSV: %w", err)
	}
	logger.Debug("decoded upload as CSV",
		slog.String("encoding", encodingName),
		slog.Int("rows", len(rows)))

	return buildTable(rows)
}

// decodeExcel extracts the first sheet of an xlsx/xls workbook.
func decodeExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	return rows, nil
}

// decodeCSV parses the bytes as CSV, trying UTF-8 first and then the
// fallback encodings. Returns the rows and the encoding that succeeded.
func decodeCSV(data []byte) ([][]string, string, error) {
	if utf8.Valid(data) {
		rows, err := parseCSV(data)
		if err == nil {
			return rows, "utf-8", nil
		}
	}

	var lastErr error
	for _, fb := range csvFallbacks {
		decoded, err := fb.enc.NewDecoder().Bytes(data)
		if err != nil {
			lastErr = err
			continue
		}
		rows, err := parseCSV(decoded)
		if err != nil {
			lastErr = err
			continue
		}
		return rows, fb.name, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no encoding produced parseable CSV")
	}
	return nil, "", lastErr
}

// parseCSV reads all records, tolerating ragged rows and quotes in cells.
func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no CSV records found")
	}

	return rows, nil
}

// buildTable locates the header row and assembles the table from the rows
// beneath it.
func buildTable(rows [][]string) (*RawTable, error) {
	headerIdx := findHeaderRow(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("could not locate a header row")
	}

	headers := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		headers[i] = NormalizeHeader(h)
	}

	table := &RawTable{Headers: headers}
	for _, row := range rows[headerIdx+1:] {
		if rowIsEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// findHeaderRow returns the index of the first row that looks like a claim
// header, or the first non-empty row when nothing matches the vocabulary.
func findHeaderRow(rows [][]string) int {
	firstNonEmpty := -1
	for i, row := range rows {
		if rowIsEmpty(row) {
			continue
		}
		if firstNonEmpty < 0 {
			firstNonEmpty = i
		}

		matches := 0
		for _, cell := range row {
			if headerVocabulary[NormalizeHeader(cell)] {
				matches++
			}
		}
		if matches >= 2 {
			return i
		}
	}
	return firstNonEmpty
}

// NormalizeHeader canonicalizes a column name: trim, lower-case, and
// replace spaces with underscores.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	return strings.ReplaceAll(h, " ", "_")
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
