// Package roster reads contest participants out of an exported spreadsheet.
package roster

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

var (
	ErrInputNotFound     = errors.New("input spreadsheet does not exist")
	ErrNoNicknameColumn  = errors.New("no column header contains a nickname keyword")
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrEmptySheet        = errors.New("spreadsheet has no header row")
)

// Row is one participant of the roster, RealName and School are empty when
// the spreadsheet has no such column.
type Row struct {
	Nickname string
	RealName string
	School   string
}

// Keywords are the substrings searched for in header names to find each column.
// NicknameFallback is only consulted when no header matches Nickname.
type Keywords struct {
	Nickname         []string `json:"nickname"`
	NicknameFallback []string `json:"nickname_fallback"`
	RealName         []string `json:"real_name"`
	School           []string `json:"school"`
}

func DefaultKeywords() Keywords {
	return Keywords{
		Nickname:         []string{"昵称", "昵称名称"},
		NicknameFallback: []string{"nick", "Nick"},
		RealName:         []string{"真实姓名", "真实名称", "姓名"},
		School:           []string{"学校", "院校", "单位"},
	}
}

// NotFound marks a column that is absent from the header.
const NotFound = -1

// Columns holds the header index of each field.
type Columns struct {
	Nickname int
	RealName int
	School   int
}

// findColumn returns the leftmost header that contains any of the keywords.
func findColumn(header []string, keywords []string) int {
	for i, name := range header {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(name, kw) {
				return i
			}
		}
	}
	return NotFound
}

// DiscoverColumns locates the nickname, real name and school columns. Only the
// nickname column is required.
func DiscoverColumns(header []string, kw Keywords) (Columns, error) {
	cols := Columns{
		Nickname: findColumn(header, kw.Nickname),
		RealName: findColumn(header, kw.RealName),
		School:   findColumn(header, kw.School),
	}
	if cols.Nickname == NotFound {
		cols.Nickname = findColumn(header, kw.NicknameFallback)
	}
	if cols.Nickname == NotFound {
		return cols, fmt.Errorf("%w (searched for %s in %s)",
			ErrNoNicknameColumn,
			strings.Join(append(append([]string{}, kw.Nickname...), kw.NicknameFallback...), ", "),
			strings.Join(header, ", "),
		)
	}
	// a real name keyword such as "姓名" must not claim the nickname column
	if cols.RealName == cols.Nickname {
		cols.RealName = NotFound
	}
	if cols.School == cols.Nickname {
		cols.School = NotFound
	}
	return cols, nil
}

// Table is a decoded roster.
type Table struct {
	Header  []string
	Columns Columns
	Rows    []Row
}

func cell(record []string, idx int) string {
	if idx == NotFound || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// FromRecords builds a table out of raw records where the first record is the header.
func FromRecords(records [][]string, kw Keywords) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrEmptySheet
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	cols, err := DiscoverColumns(header, kw)
	if err != nil {
		return Table{Header: header, Columns: cols}, err
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		rows = append(rows, Row{
			Nickname: cell(record, cols.Nickname),
			RealName: cell(record, cols.RealName),
			School:   cell(record, cols.School),
		})
	}

	return Table{Header: header, Columns: cols, Rows: rows}, nil
}

// ReadFile reads the first sheet of an xls or xlsx workbook, or a csv file.
func ReadFile(path string, kw Keywords) (Table, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Table{}, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	if err != nil {
		return Table{}, err
	}

	var records [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		records, err = readWorkbook(path)
	case ".xls":
		records, err = readLegacyWorkbook(path)
	case ".csv":
		records, err = readCSV(path)
	default:
		return Table{}, fmt.Errorf("%w: %s (save the roster as .xls, .xlsx or .csv)", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return Table{}, err
	}
	return FromRecords(records, kw)
}

func readWorkbook(path string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	return wb.GetRows(sheets[0])
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeCSV(f)
}

func decodeCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}
