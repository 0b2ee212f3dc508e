package dicomutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom/dicomtag"
	"github.com/suyashkumar/dicom/element"
)

// Float converts a single element value to float64. Decimal strings (DS) arrive
// as space-padded strings; binary floats and integers are accepted as-is.
func Float(v interface{}) (float64, error) {
	switch x := v.(type) {
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	}

	return 0, fmt.Errorf("unexpected value type %T", v)
}

// Int converts a single element value (IS strings or binary integers) to int.
func Int(v interface{}) (int, error) {
	switch x := v.(type) {
	case string:
		return strconv.Atoi(strings.TrimSpace(x))
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return int(x), nil
	}

	return 0, fmt.Errorf("unexpected value type %T", v)
}

// ImagePositionZ returns the out-of-plane (third) coordinate of the
// ImagePositionPatient element.
func ImagePositionZ(ds *element.DataSet) (float64, error) {
	elem := FindElement(ds.Elements, dicomtag.ImagePositionPatient)
	if elem == nil {
		return 0, fmt.Errorf("no ImagePositionPatient")
	}

	if len(elem.Value) < 3 {
		return 0, fmt.Errorf("ImagePositionPatient has %d values, expected 3", len(elem.Value))
	}

	return Float(elem.Value[2])
}
