package rtstruct

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/carbocation/rtslice/dicomutil"
	"github.com/suyashkumar/dicom/dicomtag"
	"github.com/suyashkumar/dicom/element"
)

// ErrInvalidFormat means the file is not a usable structure set: it cannot be
// parsed, has no ROIContourSequence, or its contour data is malformed.
var ErrInvalidFormat = errors.New("not a valid structure set")

// DefaultFilename is the structure-set file name used by the collection's
// exports.
const DefaultFilename = "000000.dcm"

var (
	tagStructureSetROISequence = dicomtag.Tag{Group: 0x3006, Element: 0x0020}
	tagROINumber               = dicomtag.Tag{Group: 0x3006, Element: 0x0022}
	tagROIName                 = dicomtag.Tag{Group: 0x3006, Element: 0x0026}
	tagROIContourSequence      = dicomtag.Tag{Group: 0x3006, Element: 0x0039}
	tagContourSequence         = dicomtag.Tag{Group: 0x3006, Element: 0x0040}
	tagContourData             = dicomtag.Tag{Group: 0x3006, Element: 0x0050}
	tagReferencedROINumber     = dicomtag.Tag{Group: 0x3006, Element: 0x0084}
)

// Reader produces the regions of the structure set stored at path.
type Reader interface {
	ReadRegions(path string) ([]*Region, error)
}

// DicomReader reads structure sets from DICOM files.
type DicomReader struct{}

func (DicomReader) ReadRegions(path string) ([]*Region, error) {
	return ParseFile(path)
}

// ParseFile parses the structure set at path. A missing file is reported with
// an error satisfying errors.Is(err, os.ErrNotExist); anything else that stops
// the file from yielding regions is ErrInvalidFormat.
func ParseFile(path string) ([]*Region, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	ds, err := dicomutil.ParseFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}

	return FromDataSet(ds)
}

// FindFile picks the structure-set file inside dir: preferred if it exists,
// otherwise the first .dcm file by name.
func FindFile(dir, preferred string) (string, error) {
	if preferred != "" {
		candidate := filepath.Join(dir, preferred)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ".dcm") {
			continue
		}
		names = append(names, f.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return "", fmt.Errorf("%s: no structure-set file: %w", dir, os.ErrNotExist)
	}

	return filepath.Join(dir, names[0]), nil
}

// FromDataSet builds one Region per item of the ROIContourSequence, in
// declared order. Each contour contributes the z coordinate of its first point.
// Region names come from the StructureSetROISequence, joined on ROI number, or
// by position when the numbers are absent.
func FromDataSet(ds *element.DataSet) ([]*Region, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: empty data set", ErrInvalidFormat)
	}

	roiContours := dicomutil.FindElement(ds.Elements, tagROIContourSequence)
	if roiContours == nil {
		return nil, fmt.Errorf("%w: no ROIContourSequence", ErrInvalidFormat)
	}

	names, order, err := roiNames(ds)
	if err != nil {
		return nil, err
	}

	contourItems, err := sequenceItems(roiContours)
	if err != nil {
		return nil, err
	}

	out := make([]*Region, 0, len(contourItems))
	for i, item := range contourItems {
		number := -1
		if ref := dicomutil.FindElement(item, tagReferencedROINumber); ref != nil && len(ref.Value) > 0 {
			if number, err = dicomutil.Int(ref.Value[0]); err != nil {
				return nil, fmt.Errorf("%w: ROI contour %d: ReferencedROINumber: %v", ErrInvalidFormat, i, err)
			}
		}

		name, ok := names[number]
		if !ok {
			if i >= len(order) {
				return nil, fmt.Errorf("%w: ROI contour %d has no matching structure set ROI", ErrInvalidFormat, i)
			}
			name = order[i]
		}

		region := NewRegion(name, number)

		if contours := dicomutil.FindElement(item, tagContourSequence); contours != nil {
			planes, err := sequenceItems(contours)
			if err != nil {
				return nil, err
			}

			for j, plane := range planes {
				z, err := contourZ(plane)
				if err != nil {
					return nil, fmt.Errorf("%w: ROI %q contour %d: %v", ErrInvalidFormat, name, j, err)
				}
				region.AddPosition(z)
			}
		}

		out = append(out, region)
	}

	return out, nil
}

func roiNames(ds *element.DataSet) (map[int]string, []string, error) {
	byNumber := make(map[int]string)
	var order []string

	seq := dicomutil.FindElement(ds.Elements, tagStructureSetROISequence)
	if seq == nil {
		return byNumber, order, nil
	}

	items, err := sequenceItems(seq)
	if err != nil {
		return nil, nil, err
	}

	for i, item := range items {
		var name string
		if elem := dicomutil.FindElement(item, tagROIName); elem != nil && len(elem.Value) > 0 {
			s, ok := elem.Value[0].(string)
			if !ok {
				return nil, nil, fmt.Errorf("%w: structure set ROI %d: ROIName has type %T", ErrInvalidFormat, i, elem.Value[0])
			}
			name = strings.TrimSpace(s)
		}
		order = append(order, name)

		if elem := dicomutil.FindElement(item, tagROINumber); elem != nil && len(elem.Value) > 0 {
			number, err := dicomutil.Int(elem.Value[0])
			if err != nil {
				return nil, nil, fmt.Errorf("%w: structure set ROI %d: ROINumber: %v", ErrInvalidFormat, i, err)
			}
			byNumber[number] = name
		}
	}

	return byNumber, order, nil
}

// sequenceItems unpacks an SQ element into the element lists of its items.
func sequenceItems(seq *element.Element) ([][]*element.Element, error) {
	out := make([][]*element.Element, 0, len(seq.Value))
	for i, v := range seq.Value {
		item, ok := v.(*element.Element)
		if !ok || item == nil {
			return nil, fmt.Errorf("%w: item %d of %v is %T, not a sequence item", ErrInvalidFormat, i, seq.Tag, v)
		}

		children := make([]*element.Element, 0, len(item.Value))
		for _, c := range item.Value {
			child, ok := c.(*element.Element)
			if !ok {
				return nil, fmt.Errorf("%w: item %d of %v holds %T", ErrInvalidFormat, i, seq.Tag, c)
			}
			children = append(children, child)
		}
		out = append(out, children)
	}

	return out, nil
}

func contourZ(plane []*element.Element) (float64, error) {
	data := dicomutil.FindElement(plane, tagContourData)
	if data == nil {
		return 0, fmt.Errorf("no ContourData")
	}
	if len(data.Value) < 3 {
		return 0, fmt.Errorf("ContourData has %d values", len(data.Value))
	}

	return dicomutil.Float(data.Value[2])
}
