package rtstruct

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/carbocation/rtslice/series"
	"gonum.org/v1/gonum/stat"
)

// DefaultTumorMarker identifies gross tumor volumes by ROI name.
const DefaultTumorMarker = "GTV"

var (
	// ErrNoTumor means no region named with the tumor marker has any contour
	// plane.
	ErrNoTumor = errors.New("no tumor identified")

	// ErrUnresolved means tumor regions exist but none of their representative
	// positions match a slice within tolerance.
	ErrUnresolved = errors.New("no tumor slice within tolerance")
)

// Selection is the slice chosen for one tumor region.
type Selection struct {
	Region   string
	Position float64
	Slice    series.Entry
}

// LowerMedian returns the element at index (n-1)/2 of the sorted positions:
// the median for odd n and the lower of the two middle values for even n. The
// result is always one of the inputs. ok is false for an empty set.
func LowerMedian(positions []float64) (median float64, ok bool) {
	if len(positions) == 0 {
		return 0, false
	}

	sorted := make([]float64, len(positions))
	copy(sorted, positions)
	sort.Float64s(sorted)

	// The empirical quantile at p=0.5 is the smallest value whose cumulative
	// count reaches n/2, i.e. index ceil(n/2)-1 == (n-1)/2.
	return stat.Quantile(0.5, stat.Empirical, sorted, nil), true
}

// TumorRegions keeps, in order, the regions whose name contains marker. The
// match is case-sensitive.
func TumorRegions(regions []*Region, marker string) []*Region {
	var out []*Region
	for _, r := range regions {
		if strings.Contains(r.Name, marker) {
			out = append(out, r)
		}
	}

	return out
}

// Select walks the tumor regions in declared order and returns the first one
// whose lower-median position resolves to a slice in idx. Later tumor regions
// are not considered once one succeeds.
func Select(regions []*Region, marker string, idx *series.Index, tolerance float64) (Selection, error) {
	candidates := 0
	for _, region := range TumorRegions(regions, marker) {
		pos, ok := LowerMedian(region.positions)
		if !ok {
			continue
		}
		candidates++

		entry, ok := idx.Resolve(pos, tolerance)
		if !ok {
			continue
		}

		return Selection{Region: region.Name, Position: pos, Slice: entry}, nil
	}

	if candidates == 0 {
		return Selection{}, ErrNoTumor
	}

	return Selection{}, fmt.Errorf("%w: %d tumor region(s) checked", ErrUnresolved, candidates)
}
