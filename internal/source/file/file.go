// Package file loads the record table from a CSV or XLSX file.
package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"typhoondash/internal/core"
	"typhoondash/internal/source"
)

// Supported CSV encodings.
const (
	EncodingCP949 = "cp949"
	EncodingEUCKR = "euc-kr"
	EncodingUTF8  = "utf-8"
)

// Options configure a file loader.
type Options struct {
	// Encoding of CSV files. Defaults to cp949, the encoding of the
	// provincial statistics export.
	Encoding string
	// Sheet selects the XLSX worksheet. Defaults to the first sheet.
	Sheet string
}

// Loader reads records from a file on every Load.
type Loader struct {
	path string
	opts Options
}

var _ source.Loader = (*Loader)(nil)

// New validates the options and returns a loader for path. The file itself
// is only opened by Load.
func New(path string, opts Options) (*Loader, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("missing data file path")
	}
	if opts.Encoding == "" {
		opts.Encoding = EncodingCP949
	}
	if _, err := lookupEncoding(opts.Encoding); err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".xlsx":
	default:
		return nil, fmt.Errorf("unsupported data file extension %q (want .csv or .xlsx)", ext)
	}
	return &Loader{path: path, opts: opts}, nil
}

// Name implements source.Loader.
func (l *Loader) Name() string { return "file" }

// Path returns the file being read.
func (l *Loader) Path() string { return l.path }

// Load implements source.Loader.
func (l *Loader) Load(ctx context.Context) ([]core.YearRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(l.path), ".xlsx") {
		rows, err = readXLSX(l.path, l.opts.Sheet)
	} else {
		rows, err = readCSVFile(l.path, l.opts.Encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", source.ErrDataUnavailable, l.path, err)
	}
	records, err := source.ParseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return records, nil
}

func readCSVFile(path, enc string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, enc)
}

// ReadCSV decodes r from enc and returns every CSV record.
func ReadCSV(r io.Reader, enc string) ([][]string, error) {
	e, err := lookupEncoding(enc)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(transform.NewReader(r, e.NewDecoder()))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return ReadWorkbook(f, sheet)
}

// ReadWorkbook returns the rows of sheet, or of the first sheet when sheet
// is empty.
func ReadWorkbook(f *excelize.File, sheet string) ([][]string, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EncodingCP949, EncodingEUCKR, "euckr", "ms949":
		return korean.EUCKR, nil
	case EncodingUTF8, "utf8":
		return unicode.UTF8BOM, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q (want cp949, euc-kr or utf-8)", name)
	}
}
