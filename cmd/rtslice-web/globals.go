package main

import (
	"sync"

	"github.com/carbocation/rtslice/config"
	"github.com/carbocation/rtslice/pipeline"
)

type Global struct {
	log logger

	Site   string
	Config config.Config

	// Runs write into the shared output folder, so they are serialized.
	runMu     sync.Mutex
	processor *pipeline.Processor
}

// Run processes the candidates one patient at a time. Patients that already
// have output are not reprocessed.
func (g *Global) Run(candidates []string) ([]string, []pipeline.Status) {
	g.runMu.Lock()
	defer g.runMu.Unlock()

	return g.processor.ProcessCohort(candidates, true)
}

type logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
