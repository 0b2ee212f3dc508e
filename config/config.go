// Package config holds the settings shared by the rtslice tools. Settings are
// read from a JSON or YAML file (chosen by extension) on top of defaults.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/rtslice/raster"
	"github.com/carbocation/rtslice/rtstruct"
	"github.com/carbocation/rtslice/series"
	"github.com/carbocation/rtslice/study"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ConfigPath string `json:"-" yaml:"-"`

	// CollectionRoot holds one directory per patient.
	CollectionRoot string `json:"collection" yaml:"collection"`

	// OutputRoot receives one directory of rasters per patient.
	OutputRoot string `json:"output" yaml:"output"`

	// Spreadsheet is the clinical sheet used for cohort selection.
	Spreadsheet string `json:"spreadsheet" yaml:"spreadsheet"`

	WindowCenter float64 `json:"window_center" yaml:"window_center"`
	WindowWidth  float64 `json:"window_width" yaml:"window_width"`
	DisplayWidth int     `json:"display_width" yaml:"display_width"`

	Tolerance   float64 `json:"tolerance" yaml:"tolerance"`
	TumorMarker string  `json:"tumor_marker" yaml:"tumor_marker"`

	StructureSetKeywords []string `json:"structure_set_keywords" yaml:"structure_set_keywords"`
	ImageSeriesKeywords  []string `json:"image_series_keywords" yaml:"image_series_keywords"`
	StructureFilename    string   `json:"structure_filename" yaml:"structure_filename"`

	Port int `json:"port" yaml:"port"`
}

// Default returns the settings for the Head-Neck-PET-CT collection layout.
func Default() Config {
	return Config{
		CollectionRoot:       "Collection",
		OutputRoot:           "Completed",
		WindowCenter:         raster.DefaultWindow.Center,
		WindowWidth:          raster.DefaultWindow.Width,
		DisplayWidth:         1024,
		Tolerance:            series.DefaultTolerance,
		TumorMarker:          rtstruct.DefaultTumorMarker,
		StructureSetKeywords: append([]string(nil), study.DefaultStructureSetKeywords...),
		ImageSeriesKeywords:  append([]string(nil), study.DefaultImageSeriesKeywords...),
		StructureFilename:    rtstruct.DefaultFilename,
		Port:                 9019,
	}
}

// Load reads path on top of Default. A missing file is not an error. Files
// ending in .yaml or .yml are YAML; anything else is JSON.
func Load(path string) (Config, error) {
	out := Default()
	out.ConfigPath = path

	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(ExpandHome(path))
	if os.IsNotExist(err) {
		return out, nil
	} else if err != nil {
		return out, pfx.Err(err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &out)
	default:
		err = json.Unmarshal(data, &out)
		if e, ok := err.(*json.SyntaxError); ok {
			log.Printf("syntax error at byte offset %d", e.Offset)
		}
	}
	if err != nil {
		return out, pfx.Err(err)
	}

	out.CollectionRoot = ExpandHome(out.CollectionRoot)
	out.OutputRoot = ExpandHome(out.OutputRoot)
	out.Spreadsheet = ExpandHome(out.Spreadsheet)

	return out, pfx.Err(out.Validate())
}

// Validate rejects settings that would make the pipeline meaningless.
func (c Config) Validate() error {
	if c.WindowWidth <= 0 {
		return fmt.Errorf("window_width must be positive, got %v", c.WindowWidth)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %v", c.Tolerance)
	}
	if c.TumorMarker == "" {
		return fmt.Errorf("tumor_marker must not be empty")
	}
	if len(c.StructureSetKeywords) == 0 || len(c.ImageSeriesKeywords) == 0 {
		return fmt.Errorf("both keyword sets need at least one entry")
	}

	return nil
}

// Window is the configured window transform.
func (c Config) Window() raster.Window {
	return raster.Window{Center: c.WindowCenter, Width: c.WindowWidth}
}

// Classifier is the configured directory classifier.
func (c Config) Classifier() study.KeywordClassifier {
	return study.KeywordClassifier{
		StructureSet: c.StructureSetKeywords,
		ImageSeries:  c.ImageSeriesKeywords,
	}
}

// ExpandHome expands a leading ~ to the current user's home directory.
func ExpandHome(path string) string {
	usr, err := user.Current()
	if err != nil {
		return path
	}

	if path == "~" {
		return usr.HomeDir
	} else if strings.HasPrefix(path, "~/") {
		return filepath.Join(usr.HomeDir, path[2:])
	}

	return path
}

// Anchor makes the relative collection, output and spreadsheet paths relative
// to dir instead of the working directory.
func (c *Config) Anchor(dir string) {
	for _, p := range []*string{&c.CollectionRoot, &c.OutputRoot, &c.Spreadsheet} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(dir, *p)
	}
}
