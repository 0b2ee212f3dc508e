package series

import "math"

// DefaultTolerance is the distance, in patient coordinate units (mm), within
// which a position may match a slice it does not equal exactly.
const DefaultTolerance = 1.0

// Resolve finds the slice for position. An exact match anywhere in the index
// wins. Otherwise the first entry, in index order, lying within tolerance of
// position is returned; it is not necessarily the closest one.
func (idx *Index) Resolve(position, tolerance float64) (Entry, bool) {
	if idx.Len() == 0 {
		return Entry{}, false
	}

	if filename, ok := idx.Lookup(position); ok {
		return Entry{Position: position, Filename: filename}, true
	}

	for _, e := range idx.entries {
		if WithinRange(position, e.Position, tolerance) {
			return e, true
		}
	}

	return Entry{}, false
}

// WithinRange reports whether test lies in [value-plusMinus, value+plusMinus].
func WithinRange(test, value, plusMinus float64) bool {
	if math.IsNaN(test) || math.IsNaN(value) {
		return false
	}

	return test >= value-plusMinus && test <= value+plusMinus
}
