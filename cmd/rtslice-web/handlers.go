package main

import (
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/carbocation/rtslice/cohort"
	"github.com/carbocation/rtslice/pipeline"
)

func (h *handler) Index(w http.ResponseWriter, r *http.Request) {
	output := struct{ Spreadsheet string }{filepath.Base(h.Global.Config.Spreadsheet)}

	Render(h, w, r, h.Global.Site, "index.html", output)
}

// Images selects every patient whose primary site matches the submitted site,
// runs the pipeline over them and lists the rasters produced.
func (h *handler) Images(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		HTTPError(h, w, r, err, http.StatusBadRequest)
		return
	}

	site := strings.TrimSpace(r.PostFormValue("site"))
	if site == "" {
		HTTPError(h, w, r, fmt.Errorf("No site was given"), http.StatusBadRequest)
		return
	}

	candidates, err := cohort.Select(h.Global.Config.Spreadsheet, site)
	if err != nil {
		HTTPError(h, w, r, err)
		return
	}
	h.log.Printf("%d patients with site %q\n", len(candidates), site)

	images, statuses := h.Global.Run(candidates)
	for _, st := range statuses {
		h.log.Println(st)
	}

	output := struct {
		Query      string
		Candidates []string
		Images     []string
		Statuses   []pipeline.Status
	}{
		site,
		candidates,
		h.imageURLs(images),
		statuses,
	}

	Render(h, w, r, "Images", "images.html", output)
}

// imageURLs maps raster paths under the output root onto the URLs that serve
// them. Paths outside the output root are dropped.
func (h *handler) imageURLs(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		rel, err := filepath.Rel(h.Global.Config.OutputRoot, img)
		if err != nil || strings.HasPrefix(rel, "..") {
			h.log.Println("Not serving", img, "outside of", h.Global.Config.OutputRoot)
			continue
		}
		out = append(out, path.Join(CompletedPrefix, filepath.ToSlash(rel)))
	}

	return out
}

func (h *handler) Goroutines(w http.ResponseWriter, r *http.Request) {
	goroutines := fmt.Sprintf("%d goroutines are currently active\n", runtime.NumGoroutine())

	w.Write([]byte(goroutines))
}
