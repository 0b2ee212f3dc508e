// rtslice finds the representative tumor slice of each patient in a
// radiotherapy collection and writes it out as a grayscale PNG.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/carbocation/rtslice/cohort"
	_ "github.com/carbocation/rtslice/compileinfoprint"
	"github.com/carbocation/rtslice/config"
	"github.com/carbocation/rtslice/pipeline"
	"github.com/kardianos/osext"
)

func main() {
	var configPath, collection, output, spreadsheet, site, patients, statusPath string
	var center, width, tolerance float64
	var displayWidth int
	var skipExisting bool

	flag.StringVar(&configPath, "config", "", "(Optional) JSON or YAML file with settings. Flags override it.")
	flag.StringVar(&collection, "collection", "", "Folder holding one subfolder per patient. Relative paths are resolved next to the binary.")
	flag.StringVar(&output, "output", "", "Folder under which one subfolder of PNGs per patient is written.")
	flag.StringVar(&spreadsheet, "spreadsheet", "", "Clinical spreadsheet (.xls, .xlsx, .csv or .tsv) used to select patients by --site.")
	flag.StringVar(&site, "site", "", "Primary site to select from the spreadsheet, e.g. Oropharynx.")
	flag.StringVar(&patients, "patient", "", "Comma-separated patient IDs to process instead of a spreadsheet cohort.")
	flag.StringVar(&statusPath, "status", "", "(Optional) Path of a tab-delimited file receiving one status line per item.")
	flag.Float64Var(&center, "center", 0, "Window center (raw stored values).")
	flag.Float64Var(&width, "width", 0, "Window half-range: samples are clamped to center +/- width.")
	flag.Float64Var(&tolerance, "tolerance", 0, "Maximum distance (mm) between a tumor's median plane and a slice.")
	flag.IntVar(&displayWidth, "display-width", 0, "Width in pixels of the written PNG. 0 keeps the configured value.")
	flag.BoolVar(&skipExisting, "skip-existing", true, "Skip patients whose output folder already holds files.")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "collection":
			cfg.CollectionRoot = config.ExpandHome(collection)
		case "output":
			cfg.OutputRoot = config.ExpandHome(output)
		case "spreadsheet":
			cfg.Spreadsheet = config.ExpandHome(spreadsheet)
		case "center":
			cfg.WindowCenter = center
		case "width":
			cfg.WindowWidth = width
		case "tolerance":
			cfg.Tolerance = tolerance
		case "display-width":
			cfg.DisplayWidth = displayWidth
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalln(err)
	}

	folder, err := osext.ExecutableFolder()
	if err != nil {
		log.Fatalln(err)
	}
	cfg.Anchor(folder)

	fmt.Fprintln(os.Stderr, strings.Join(os.Args, " "))

	var candidates []string
	switch {
	case patients != "":
		for _, p := range strings.Split(patients, ",") {
			if p = strings.TrimSpace(p); p != "" {
				candidates = append(candidates, p)
			}
		}
	case cfg.Spreadsheet != "" && site != "":
		candidates, err = cohort.Select(cfg.Spreadsheet, site)
		if err != nil {
			log.Fatalln(err)
		}
		log.Printf("%d patients with site %q\n", len(candidates), site)
	default:
		flag.PrintDefaults()
		os.Exit(1)
	}

	if len(candidates) == 0 {
		log.Println("No candidate patients")
		return
	}

	processor := pipeline.FromConfig(cfg, log.New(os.Stderr, log.Prefix(), log.Ldate|log.Ltime))
	images, statuses := processor.ProcessCohort(candidates, skipExisting)

	for _, st := range statuses {
		fmt.Println(st)
	}

	log.Printf("%d images for %d patients\n", len(images), len(candidates))

	if statusPath != "" {
		if err := pipeline.WriteStatusManifest(config.ExpandHome(statusPath), statuses); err != nil {
			log.Fatalln(err)
		}
	}
}
