// Package csv reads import tables from uploaded CSV files.
package csv

import (
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"finsimples/internal/sheets"
)

var (
	ErrEmptyFile   = errors.New("file is empty")
	ErrBinaryFile  = errors.New("file appears to be binary, not CSV")
	ErrTooManyRows = errors.New("file has too many rows")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader reads a table from CSV bytes. Both comma and semicolon separated
// files are accepted; the separator is taken from the header line.
type Reader struct {
	data    []byte
	maxRows int
}

var _ sheets.TableReader = (*Reader)(nil)

// New validates data as a text upload and returns a reader for it.
// maxRows <= 0 disables the row limit.
func New(data []byte, maxRows int) (*Reader, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if err := ValidateContent(data); err != nil {
		return nil, err
	}
	return &Reader{data: data, maxRows: maxRows}, nil
}

// ValidateContent rejects empty, binary and non-UTF-8 uploads.
func ValidateContent(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyFile
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if bytes.IndexByte(head, 0) != -1 || !utf8.Valid(data) {
		return ErrBinaryFile
	}
	switch ct := strings.Split(http.DetectContentType(head), ";")[0]; ct {
	case "text/plain", "text/csv", "application/csv":
		return nil
	default:
		return fmt.Errorf("%w: detected %s", ErrBinaryFile, ct)
	}
}

func (r *Reader) ReadTable(ctx context.Context) (sheets.Table, error) {
	if err := ctx.Err(); err != nil {
		return sheets.Table{}, err
	}

	cr := stdcsv.NewReader(bytes.NewReader(r.data))
	cr.Comma = detectSeparator(r.data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var raw [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sheets.Table{}, fmt.Errorf("parse csv: %w", err)
		}
		raw = append(raw, rec)
		// +1 for the header
		if r.maxRows > 0 && len(raw) > r.maxRows+1 {
			return sheets.Table{}, fmt.Errorf("%w (max %d)", ErrTooManyRows, r.maxRows)
		}
	}
	return sheets.NewTable(raw)
}

func detectSeparator(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// formulaPrefixes start a formula in spreadsheet applications.
const formulaPrefixes = "=+-@\t\r"

// EscapeFormula prefixes a quote to text cells a spreadsheet would evaluate.
// Plain numbers such as -10.00 are left alone.
func EscapeFormula(s string) string {
	t := strings.TrimSpace(s)
	if t == "" || !strings.ContainsRune(formulaPrefixes, rune(t[0])) {
		return s
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(t, ",", "."), 64); err == nil {
		return s
	}
	return "'" + s
}

// Write renders rows as comma separated CSV, escaping formula-like cells.
func Write(w io.Writer, rows [][]string) error {
	cw := stdcsv.NewWriter(w)
	for _, row := range rows {
		out := make([]string, len(row))
		for i, c := range row {
			out[i] = EscapeFormula(c)
		}
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
