package tiering

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column names in the DOL LCA disclosure files.
const (
	ColEmployerName = "EMPLOYER_NAME"
	ColCaseStatus   = "CASE_STATUS"
	ColQuarter      = "QUARTER"
	ColCity         = "EMPLOYER_CITY"
	ColState        = "EMPLOYER_STATE"
	ColPOCFirstName = "EMPLOYER_POC_FIRST_NAME"
	ColPOCLastName  = "EMPLOYER_POC_LAST_NAME"
	ColPOCEmail     = "EMPLOYER_POC_EMAIL"
	ColPOCPhone     = "EMPLOYER_POC_PHONE"
)

// ErrMissingColumn means the header row lacks EMPLOYER_NAME.
var ErrMissingColumn = errors.New("dataset header missing " + ColEmployerName)

// Filing is one row of the dataset, reduced to the fields we aggregate.
type Filing struct {
	EmployerName string
	CaseStatus   string
	Quarter      string
	City         string
	State        string
	POCFirstName string
	POCLastName  string
	POCEmail     string
	POCPhone     string
}

// ReadStats counts rows seen while streaming a dataset.
type ReadStats struct {
	Rows      int `json:"rows"`
	Malformed int `json:"malformed"`
}

type header map[string]int

func newHeader(cols []string) (header, error) {
	h := make(header, len(cols))
	for i, c := range cols {
		c = strings.Trim(strings.TrimSpace(c), "\"\ufeff")
		h[strings.ToUpper(c)] = i
	}
	if _, ok := h[ColEmployerName]; !ok {
		return nil, ErrMissingColumn
	}
	return h, nil
}

// filing maps a record; ok is false when the record is too short to hold
// the employer name.
func (h header) filing(rec []string) (Filing, bool) {
	if h[ColEmployerName] >= len(rec) {
		return Filing{}, false
	}
	get := func(col string) string {
		i, ok := h[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	return Filing{
		EmployerName: get(ColEmployerName),
		CaseStatus:   get(ColCaseStatus),
		Quarter:      get(ColQuarter),
		City:         get(ColCity),
		State:        get(ColState),
		POCFirstName: get(ColPOCFirstName),
		POCLastName:  get(ColPOCLastName),
		POCEmail:     get(ColPOCEmail),
		POCPhone:     get(ColPOCPhone),
	}, true
}

// ReadCSV streams r row by row into fn. Rows that fail to parse or are too
// short are counted as malformed and skipped.
func ReadCSV(r io.Reader, fn func(Filing)) (ReadStats, error) {
	var st ReadStats
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	first, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return st, ErrMissingColumn
		}
		return st, fmt.Errorf("read header: %w", err)
	}
	h, err := newHeader(first)
	if err != nil {
		return st, err
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return st, nil
		}
		st.Rows++
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			st.Malformed++
			continue
		}
		if err != nil {
			return st, fmt.Errorf("read row %d: %w", st.Rows, err)
		}
		f, ok := h.filing(rec)
		if !ok {
			st.Malformed++
			continue
		}
		fn(f)
	}
}

// ReadXLSX streams the first sheet of an Excel workbook into fn.
func ReadXLSX(path string, fn func(Filing)) (ReadStats, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ReadStats{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, fn)
}

func readWorkbook(f *excelize.File, fn func(Filing)) (ReadStats, error) {
	var st ReadStats
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return st, ErrMissingColumn
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		return st, fmt.Errorf("open sheet %q: %w", sheets[0], err)
	}
	defer rows.Close()

	if !rows.Next() {
		return st, ErrMissingColumn
	}
	cols, err := rows.Columns()
	if err != nil {
		return st, fmt.Errorf("read header: %w", err)
	}
	h, err := newHeader(cols)
	if err != nil {
		return st, err
	}

	for rows.Next() {
		st.Rows++
		rec, err := rows.Columns()
		if err != nil {
			st.Malformed++
			continue
		}
		fl, ok := h.filing(rec)
		if !ok {
			st.Malformed++
			continue
		}
		fn(fl)
	}
	return st, rows.Error()
}

// ReadFile picks a reader by extension (.xlsx, otherwise CSV).
func ReadFile(path string, fn func(Filing)) (ReadStats, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path, fn)
	}
	fh, err := os.Open(path)
	if err != nil {
		return ReadStats{}, err
	}
	defer fh.Close()
	return ReadCSV(fh, fn)
}
