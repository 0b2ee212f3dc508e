package pipeline

import (
	"github.com/carbocation/rtslice/config"
	"github.com/carbocation/rtslice/raster"
	"github.com/carbocation/rtslice/study"
)

// FromConfig builds a Processor from tool settings.
func FromConfig(cfg config.Config, log Logger) *Processor {
	p := NewProcessor(cfg.CollectionRoot, cfg.OutputRoot)
	p.Locator = &study.Locator{Classifier: cfg.Classifier()}
	p.Exporter = raster.NewExporter(cfg.Window(), cfg.DisplayWidth)
	p.StructureFilename = cfg.StructureFilename
	p.TumorMarker = cfg.TumorMarker
	p.Tolerance = cfg.Tolerance
	if log != nil {
		p.Log = log
	}

	return p
}
