// rtslice-web serves a form asking for a primary site, runs the slice pipeline
// for every patient with that site, and shows the resulting images.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/carbocation/rtslice/config"
	"github.com/carbocation/rtslice/pipeline"
	"github.com/kardianos/osext"

	_ "github.com/carbocation/rtslice/compileinfoprint"
)

var global *Global

func main() {
	errors := make(chan error, 1)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig,
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGUSR1,
	)

	var configPath, collection, output, spreadsheet string
	var port int
	flag.StringVar(&configPath, "config", "", "(Optional) JSON or YAML file with settings. Flags override it.")
	flag.StringVar(&collection, "collection", "", "Folder holding one subfolder per patient. Relative paths are resolved next to the binary.")
	flag.StringVar(&output, "output", "", "Folder under which one subfolder of PNGs per patient is written and served.")
	flag.StringVar(&spreadsheet, "spreadsheet", "", "Clinical spreadsheet (.xls, .xlsx, .csv or .tsv) used to select patients by site.")
	flag.IntVar(&port, "port", 0, "Port for HTTP server. 0 keeps the configured value.")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if collection != "" {
		cfg.CollectionRoot = config.ExpandHome(collection)
	}
	if output != "" {
		cfg.OutputRoot = config.ExpandHome(output)
	}
	if spreadsheet != "" {
		cfg.Spreadsheet = config.ExpandHome(spreadsheet)
	}
	if port != 0 {
		cfg.Port = port
	}

	folder, err := osext.ExecutableFolder()
	if err != nil {
		log.Fatalln(err)
	}
	cfg.Anchor(folder)

	if cfg.Spreadsheet == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := log.New(os.Stderr, log.Prefix(), log.Ldate|log.Ltime)

	global = &Global{
		Site:      "Tumor Slice Finder",
		log:       logger,
		Config:    cfg,
		processor: pipeline.FromConfig(cfg, logger),
	}

	global.log.Println("Launching", global.Site)
	global.log.Println("Reading patients from", cfg.CollectionRoot)
	global.log.Println("Writing images to", cfg.OutputRoot)

	go func() {
		global.log.Println("Starting HTTP server on port", cfg.Port)

		routing, err := router(global)
		if err != nil {
			errors <- err
			return
		}

		if err := http.ListenAndServe(fmt.Sprintf(`:%d`, cfg.Port), routing); err != nil {
			errors <- err
			return
		}
	}()

Outer:
	for {
		select {
		case sigl := <-sig:
			if sigl == syscall.SIGUSR1 {
				SigStatus()
				continue
			}

			global.log.Printf("\nExit: %s\n", sigl.String())

			break Outer

		case err := <-errors:
			if err == nil {
				global.log.Println("Finished")
				break Outer
			}

			global.log.Println("Exiting due to error", err)
			os.Exit(1)
		}
	}
}

func SigStatus() {
	global.log.Println("There are", runtime.NumGoroutine(), "goroutines running")
}
