package dicomutil

import (
	"fmt"
	"image/color"

	"github.com/suyashkumar/dicom/dicomtag"
	"github.com/suyashkumar/dicom/element"
)

// PixelSamples returns the first frame of the image as a row-major array of
// raw stored values, together with its dimensions. No rescale or window is
// applied.
func PixelSamples(ds *element.DataSet) (rows, cols int, samples []float64, err error) {
	for _, elem := range ds.Elements {
		if elem == nil || len(elem.Value) == 0 {
			continue
		}

		switch elem.Tag {
		case dicomtag.Rows:
			if v, ok := elem.Value[0].(uint16); ok {
				rows = int(v)
			}
		case dicomtag.Columns:
			if v, ok := elem.Value[0].(uint16); ok {
				cols = int(v)
			}
		case dicomtag.PixelData:
			data, ok := elem.Value[0].(element.PixelDataInfo)
			if !ok {
				return 0, 0, nil, fmt.Errorf("PixelData has unexpected type %T", elem.Value[0])
			}
			if len(data.Frames) == 0 {
				return 0, 0, nil, fmt.Errorf("PixelData has no frames")
			}

			frame := data.Frames[0]
			if frame.IsEncapsulated() {
				encImg, err := frame.GetImage()
				if err != nil {
					return 0, 0, nil, fmt.Errorf("Frame is encapsulated and could not be decoded: %s", err.Error())
				}

				b := encImg.Bounds()
				samples = make([]float64, 0, b.Dx()*b.Dy())
				for y := b.Min.Y; y < b.Max.Y; y++ {
					for x := b.Min.X; x < b.Max.X; x++ {
						samples = append(samples, float64(color.Gray16Model.Convert(encImg.At(x, y)).(color.Gray16).Y))
					}
				}

				return b.Dy(), b.Dx(), samples, nil
			}

			samples = make([]float64, 0, len(frame.NativeData.Data))
			for j := 0; j < len(frame.NativeData.Data); j++ {
				samples = append(samples, float64(frame.NativeData.Data[j][0]))
			}
		}
	}

	if samples == nil {
		return 0, 0, nil, fmt.Errorf("no PixelData")
	}

	if rows*cols != len(samples) {
		return 0, 0, nil, fmt.Errorf("%d samples do not fill a %dx%d image", len(samples), rows, cols)
	}

	return rows, cols, samples, nil
}
