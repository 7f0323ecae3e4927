package roster

import (
	"fmt"

	"github.com/extrame/xls"
)

// readLegacyWorkbook reads the first sheet of a BIFF8 (.xls) workbook into
// records shaped like the ones excelize returns for .xlsx.
func readLegacyWorkbook(path string) (records [][]string, err error) {
	// the decoder panics on some malformed files
	defer func() {
		r := recover()
		if r != nil {
			records = nil
			err = fmt.Errorf("decode %s: %v", path, r)
		}
	}()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, ErrEmptySheet
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptySheet
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		record := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			record[c] = row.Col(c)
		}
		records = append(records, record)
	}
	return records, nil
}
