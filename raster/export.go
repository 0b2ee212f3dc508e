package raster

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/carbocation/rtslice/dicomutil"
	"github.com/disintegration/imaging"
)

// Extension is appended to every exported raster.
const Extension = ".png"

// nameChars is how much of the source path survives into the output name.
// Two sources that share their last nameChars characters overwrite each other.
const nameChars = 10

// SampleReader loads the raw sample array of the slice stored at path.
type SampleReader interface {
	ReadSamples(path string) (Grid, error)
}

// DicomSampleReader reads the first frame of a DICOM image.
type DicomSampleReader struct{}

func (DicomSampleReader) ReadSamples(path string) (Grid, error) {
	ds, err := dicomutil.ParseFile(path, true)
	if err != nil {
		return Grid{}, err
	}

	rows, cols, samples, err := dicomutil.PixelSamples(ds)
	if err != nil {
		return Grid{}, fmt.Errorf("%s: %v", path, err)
	}

	return Grid{Rows: rows, Cols: cols, Samples: samples}, nil
}

// Exporter writes windowed slices as grayscale PNGs.
type Exporter struct {
	Reader SampleReader
	Window Window

	// DisplayWidth, when positive, rescales the image to this many pixels wide
	// (height follows the aspect ratio) using Catmull-Rom interpolation.
	DisplayWidth int
}

// NewExporter returns an Exporter reading DICOM files with window w.
func NewExporter(w Window, displayWidth int) *Exporter {
	return &Exporter{Reader: DicomSampleReader{}, Window: w, DisplayWidth: displayWidth}
}

// OutputName derives the raster file name from the last ten characters of the
// source path. Path separators inside that tail are replaced so the file always
// lands directly in the destination directory.
func OutputName(sourcePath string) string {
	tail := sourcePath
	if len(tail) > nameChars {
		tail = tail[len(tail)-nameChars:]
	}

	tail = strings.NewReplacer("/", "_", "\\", "_").Replace(tail)

	return tail + Extension
}

// Export renders sourcePath into destDir, creating destDir if needed, and
// returns the path of the written file once it is confirmed to exist.
func (e *Exporter) Export(sourcePath, destDir string) (string, error) {
	reader := e.Reader
	if reader == nil {
		reader = DicomSampleReader{}
	}

	grid, err := reader.ReadSamples(sourcePath)
	if err != nil {
		return "", err
	}

	if grid.Rows*grid.Cols != len(grid.Samples) || len(grid.Samples) == 0 {
		return "", fmt.Errorf("%s: %d samples do not fill a %dx%d image", sourcePath, len(grid.Samples), grid.Rows, grid.Cols)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	var img image.Image = Gray(grid, e.Window)
	if e.DisplayWidth > 0 && e.DisplayWidth != grid.Cols {
		img = imaging.Resize(img, e.DisplayWidth, 0, imaging.CatmullRom)
	}

	outPath := filepath.Join(destDir, OutputName(sourcePath))
	if err := imaging.Save(img, outPath); err != nil {
		return "", err
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("raster %s was not written: %v", outPath, err)
	}

	return outPath, nil
}

// ListImages returns the exported rasters in dir, sorted by name. A missing
// directory yields no images and no error.
func ListImages(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var out []string
	for _, f := range files {
		if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), Extension) {
			continue
		}
		out = append(out, filepath.Join(dir, f.Name()))
	}
	sort.Strings(out)

	return out, nil
}
