// Package cohort picks the patients to process from a clinical spreadsheet:
// every row whose site column equals the desired site contributes its patient
// identifier. The first row of each sheet is a header.
package cohort

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
)

// Spreadsheet columns, zero-based: A holds the patient identifier and D the
// primary site.
const (
	PatientColumn = 0
	SiteColumn    = 3
)

// Select reads the spreadsheet at path, choosing the reader by extension
// (.xls, .xlsx, or delimited .csv/.tsv/.txt), and returns the matching patient
// identifiers in sheet and row order without duplicates. Any other extension
// is an error.
func Select(path, site string) ([]string, error) {
	var out []string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		out, err = FromXLS(path, site)
	case ".xlsx":
		out, err = FromXLSX(path, site)
	case ".csv", ".tsv", ".txt":
		out, err = FromDelimited(path, site)
	default:
		err = fmt.Errorf("%s: unsupported spreadsheet format %q", path, filepath.Ext(path))
	}

	return out, pfx.Err(err)
}

// matcher accumulates patient identifiers for one site.
type matcher struct {
	site string
	seen map[string]struct{}
	out  []string
}

func newMatcher(site string) *matcher {
	return &matcher{site: strings.TrimSpace(site), seen: make(map[string]struct{})}
}

func (m *matcher) row(cols []string) {
	if len(cols) <= SiteColumn || len(cols) <= PatientColumn {
		return
	}

	if strings.TrimSpace(cols[SiteColumn]) != m.site {
		return
	}

	id := strings.TrimSpace(cols[PatientColumn])
	if id == "" {
		return
	}
	if _, exists := m.seen[id]; exists {
		return
	}

	m.seen[id] = struct{}{}
	m.out = append(m.out, id)
}
