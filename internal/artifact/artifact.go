// Package artifact writes the flat files produced by a reconciliation run.
package artifact

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"rosterlink/internal/reconcile"
)

// utf8BOM lets spreadsheet tools detect the encoding of the reconciled table.
const utf8BOM = "\ufeff"

// TableHeader is the header row of the reconciled table.
var TableHeader = []string{"identifier", "nickname", "realName", "school"}

func create(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// lineBreaks keeps a multi-line spreadsheet cell on a single line.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func writeLines(path string, lines []string) error {
	f, err := create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		_, err = w.WriteString(lineBreaks.Replace(line) + "\n")
		if err != nil {
			f.Close()
			return err
		}
	}
	err = w.Flush()
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteIdentifierList writes one identifier per line, ids must already be deduplicated.
func WriteIdentifierList(path string, ids []string) error {
	return writeLines(path, ids)
}

// WriteUnmatched writes one nickname per line, duplicates included.
func WriteUnmatched(path string, nicknames []string) error {
	return writeLines(path, nicknames)
}

// ReadIdentifierList reads back a list written by WriteIdentifierList, blank
// lines are skipped.
func ReadIdentifierList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	return ids, scanner.Err()
}

// WriteReconciledTable writes the rows as a BOM prefixed UTF-8 csv file.
func WriteReconciledTable(path string, rows []reconcile.ReconciledRow) error {
	f, err := create(path)
	if err != nil {
		return err
	}

	_, err = f.WriteString(utf8BOM)
	if err != nil {
		f.Close()
		return err
	}

	w := csv.NewWriter(f)
	err = w.Write(TableHeader)
	if err != nil {
		f.Close()
		return err
	}
	for _, row := range rows {
		err = w.Write([]string{row.Identifier, row.Nickname, row.RealName, row.School})
		if err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	err = w.Error()
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
