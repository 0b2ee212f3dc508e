package main

import (
	"io"
	"io/fs"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/rtslice/config"
	"github.com/carbocation/rtslice/pipeline"
)

func testServer(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.CollectionRoot = filepath.Join(dir, "Collection")
	cfg.OutputRoot = filepath.Join(dir, "Completed")
	cfg.Spreadsheet = filepath.Join(dir, "clinical.csv")

	sheet := "id,age,sex,site\nHN-1,60,M,Oropharynx\nHN-2,55,F,Larynx\nHN-3,70,M,Oropharynx\n"
	if err := os.WriteFile(cfg.Spreadsheet, []byte(sheet), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.CollectionRoot, 0755); err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard, "", 0)
	g := &Global{
		Site:      "Test",
		log:       logger,
		Config:    cfg,
		processor: pipeline.FromConfig(cfg, logger),
	}

	routing, err := router(g)
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(routing)
	t.Cleanup(srv.Close)

	return srv, cfg
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestIndex(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if b := body(t, resp); !strings.Contains(b, `name="site"`) {
		t.Errorf("Index page has no site field:\n%s", b)
	}
}

func TestImagesReportsMissingPatients(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.PostForm(srv.URL+"/", url.Values{"site": {"Oropharynx"}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	b := body(t, resp)
	if !strings.Contains(b, "2 patients matched") {
		t.Errorf("Expected two candidates:\n%s", b)
	}
	if strings.Count(b, "Patient does not exist in collection") != 2 {
		t.Errorf("Expected a not-found row per candidate:\n%s", b)
	}
	if strings.Contains(b, "HN-2") {
		t.Errorf("Patient from another site was processed:\n%s", b)
	}
}

func TestImagesListsCachedOutput(t *testing.T) {
	srv, cfg := testServer(t)

	patientDir := filepath.Join(cfg.OutputRoot, "HN-3")
	if err := os.MkdirAll(patientDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(patientDir, "000042.dcm.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	resp, err := http.PostForm(srv.URL+"/", url.Values{"site": {"Oropharynx"}})
	if err != nil {
		t.Fatal(err)
	}
	b := body(t, resp)
	if !strings.Contains(b, `src="/completed/HN-3/000042.dcm.png"`) {
		t.Errorf("Cached raster not listed:\n%s", b)
	}

	resp, err = http.Get(srv.URL + "/completed/HN-3/000042.dcm.png")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 serving raster, got %d", resp.StatusCode)
	}
	if got := body(t, resp); got != "png" {
		t.Errorf("Served %q", got)
	}
}

func TestImagesRequiresSite(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.PostForm(srv.URL+"/", url.Values{"site": {"  "}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
	body(t, resp)
}

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{BaseFilename, "index.html", "images.html", "error.html", "static/style.css"} {
		if _, err := fs.Stat(embeddedTemplates, "templates/"+name); err != nil {
			t.Errorf("%s is not embedded: %v", name, err)
		}
	}

	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/static/style.css")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 for the stylesheet, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
