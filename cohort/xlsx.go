package cohort

import (
	"log"

	"github.com/xuri/excelize/v2"
)

// FromXLSX scans every sheet of an Office Open XML workbook.
func FromXLSX(path, site string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := newMatcher(site)

	for _, sheet := range f.GetSheetList() {
		log.Printf("Scanning sheet %q for %q\n", sheet, site)

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}

		// Row 0 is the header
		for i, cols := range rows {
			if i == 0 {
				continue
			}
			m.row(cols)
		}
	}

	return m.out, nil
}
