package cohort

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"

	"github.com/csimplestring/go-csv/detector"
)

// FromDelimited reads a CSV, TSV or similar export of the spreadsheet. The
// delimiter is detected from the content.
func FromDelimited(path, site string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return FromReader(f, site)
}

// FromReader is FromDelimited over an already open reader.
func FromReader(r io.Reader, site string) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = DetermineDelimiter(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	m := newMatcher(site)
	header := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		if header {
			header = false
			continue
		}

		m.row(rec)
	}

	return m.out, nil
}

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}
