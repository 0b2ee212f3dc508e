// Package series indexes the slices of one image series by their axial
// position and resolves a requested position back to a slice file.
package series

import (
	"math"
	"os"
	"path/filepath"

	"github.com/carbocation/rtslice/dicomutil"
)

// Entry is one indexed slice.
type Entry struct {
	Position float64
	Filename string
}

// Index maps axial position to the file holding that slice. Iteration order is
// the order in which each position was first seen; storing a second file at an
// existing position replaces the file but keeps its first place.
type Index struct {
	entries []Entry
	byPos   map[float64]int
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{byPos: make(map[float64]int)}
}

// Put records filename at position and reports whether it was stored. A NaN
// position can never be looked up, so it is refused.
func (idx *Index) Put(position float64, filename string) bool {
	if math.IsNaN(position) {
		return false
	}
	if idx.byPos == nil {
		idx.byPos = make(map[float64]int)
	}

	if i, exists := idx.byPos[position]; exists {
		idx.entries[i].Filename = filename
		return true
	}

	idx.byPos[position] = len(idx.entries)
	idx.entries = append(idx.entries, Entry{Position: position, Filename: filename})
	return true
}

// Lookup returns the file at exactly position.
func (idx *Index) Lookup(position float64) (string, bool) {
	if idx == nil {
		return "", false
	}
	i, ok := idx.byPos[position]
	if !ok {
		return "", false
	}

	return idx.entries[i].Filename, true
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Entries returns a copy of the indexed slices in iteration order.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// PositionReader reports the axial position of the slice stored at path.
type PositionReader interface {
	SlicePosition(path string) (float64, error)
}

// DicomPositionReader reads ImagePositionPatient from DICOM headers, without
// decoding pixel data.
type DicomPositionReader struct{}

func (DicomPositionReader) SlicePosition(path string) (float64, error) {
	ds, err := dicomutil.ParseFile(path, false)
	if err != nil {
		return 0, err
	}

	return dicomutil.ImagePositionZ(ds)
}

// Build reads every regular file in dir and indexes it by position. Files that
// cannot be read as slices, or whose position is NaN, are skipped and counted
// in skipped. An empty index
// is not an error.
func Build(dir string, reader PositionReader) (idx *Index, skipped int, err error) {
	if reader == nil {
		reader = DicomPositionReader{}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}

	idx = NewIndex()
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		pos, err := reader.SlicePosition(filepath.Join(dir, file.Name()))
		if err != nil || !idx.Put(pos, file.Name()) {
			skipped++
		}
	}

	return idx, skipped, nil
}
