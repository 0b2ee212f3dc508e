package pipeline

import (
	"encoding/csv"
	"os"

	"github.com/gocarina/gocsv"
)

// WriteStatusManifest writes statuses as a tab-delimited file with a header.
func WriteStatusManifest(path string, statuses []Status) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	sw := gocsv.NewSafeCSVWriter(w)

	if err := gocsv.MarshalCSV(&statuses, sw); err != nil {
		return err
	}
	sw.Flush()
	if err := sw.Error(); err != nil {
		return err
	}

	return f.Close()
}

// ReadStatusManifest reads a file written by WriteStatusManifest.
func ReadStatusManifest(path string) ([]Status, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true

	statuses := []Status{}
	if err := gocsv.UnmarshalCSV(r, &statuses); err != nil {
		return nil, err
	}

	return statuses, nil
}
