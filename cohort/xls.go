package cohort

import (
	"fmt"
	"log"

	"github.com/extrame/xls"
)

// FromXLS scans every sheet of an XLS workbook.
func FromXLS(path, site string) ([]string, error) {
	spreadsheet, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	if spreadsheet == nil {
		return nil, fmt.Errorf("%s has no Workbook stream", path)
	}

	m := newMatcher(site)

	sheetCount := spreadsheet.NumSheets()
	for sheetID := 0; sheetID < sheetCount; sheetID++ {
		sheet := spreadsheet.GetSheet(sheetID)
		if sheet == nil {
			return nil, fmt.Errorf("Sheet %d was nil", sheetID)
		}

		log.Printf("Scanning sheet %q for %q\n", sheet.Name, site)

		// Row 0 is the header
		for rowID := 1; rowID <= int(sheet.MaxRow); rowID++ {
			row := sheetRow(sheet, rowID)
			if row == nil {
				continue
			}

			last := row.LastCol()
			if last < SiteColumn {
				last = SiteColumn
			}

			cols := make([]string, 0, last+1)
			for colID := 0; colID <= last; colID++ {
				cols = append(cols, row.Col(colID))
			}

			m.row(cols)
		}
	}

	return m.out, nil
}

// sheetRow returns nil for rows the sheet never wrote; the xls package panics
// on those.
func sheetRow(sheet *xls.WorkSheet, rowID int) (row *xls.Row) {
	defer func() {
		if r := recover(); r != nil {
			row = nil
		}
	}()

	return sheet.Row(rowID)
}
