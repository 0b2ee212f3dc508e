// Package dicomutil wraps the DICOM library with the handful of lookups the
// slice pipeline needs: parsing a file without panicking, reading the patient
// position of an image, and pulling its native sample array.
package dicomutil

import (
	"fmt"
	"os"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/dicomtag"
	"github.com/suyashkumar/dicom/element"
)

type parser interface {
	Parse(options dicom.ParseOptions) (*element.DataSet, error)
}

// SafelyDicomParse consumes panics emitted by the dicom library, which are
// inappropriate and must be captured in order to turn them into recoverable
// errors.
func SafelyDicomParse(p parser, opts dicom.ParseOptions) (parsedData *element.DataSet, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			parsedData = nil
			err = fmt.Errorf("%v", panicErr)
		}
	}()

	return p.Parse(opts)
}

// ParseFile parses the DICOM at path. Pixel data is only decoded when
// withPixels is set.
func ParseFile(path string, withPixels bool) (*element.DataSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	p, err := dicom.NewParser(f, info.Size(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}

	parsedData, err := SafelyDicomParse(p, dicom.ParseOptions{
		DropPixelData: !withPixels,
	})
	if parsedData == nil || err != nil {
		return nil, fmt.Errorf("Error reading dicom %s: %v", path, err)
	}

	return parsedData, nil
}

// FindElement returns the first element in elems with the given tag, or nil.
func FindElement(elems []*element.Element, tag dicomtag.Tag) *element.Element {
	for _, elem := range elems {
		if elem == nil {
			continue
		}
		if elem.Tag == tag {
			return elem
		}
	}

	return nil
}
