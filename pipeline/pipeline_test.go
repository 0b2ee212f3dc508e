package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/carbocation/rtslice/config"
	"github.com/carbocation/rtslice/raster"
	"github.com/carbocation/rtslice/rtstruct"
	"github.com/carbocation/rtslice/study"
)

const (
	rtDir = "1-RTstructCTsim-CTPET-CT-1"
	ctDir = "2-StandardFull-1"
)

// textSlices reads a slice position stored as text in the file.
type textSlices struct{}

func (textSlices) SlicePosition(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}

// fakeStructures returns canned regions keyed by structure-set path.
type fakeStructures struct {
	regions map[string][]*rtstruct.Region
	errs    map[string]error
}

func (f fakeStructures) ReadRegions(path string) ([]*rtstruct.Region, error) {
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	return f.regions[path], nil
}

type flatSamples struct{}

func (flatSamples) ReadSamples(path string) (raster.Grid, error) {
	return raster.Grid{Rows: 2, Cols: 2, Samples: []float64{0, 800, 1200, 3000}}, nil
}

type fixture struct {
	t          *testing.T
	collection string
	output     string
	structures fakeStructures
}

func newFixture(t *testing.T) *fixture {
	root := t.TempDir()
	return &fixture{
		t:          t,
		collection: filepath.Join(root, "Collection"),
		output:     filepath.Join(root, "Completed"),
		structures: fakeStructures{regions: map[string][]*rtstruct.Region{}, errs: map[string]error{}},
	}
}

func (f *fixture) dir(parts ...string) string {
	p := filepath.Join(append([]string{f.collection}, parts...)...)
	if err := os.MkdirAll(p, 0755); err != nil {
		f.t.Fatal(err)
	}
	return p
}

// addStudy creates a study with a structure set and a series of slices at zs.
func (f *fixture) addStudy(patient, studyName string, zs []float64, regions ...*rtstruct.Region) {
	rt := f.dir(patient, studyName, rtDir)
	rtPath := filepath.Join(rt, rtstruct.DefaultFilename)
	if err := os.WriteFile(rtPath, nil, 0644); err != nil {
		f.t.Fatal(err)
	}
	f.structures.regions[rtPath] = regions

	ct := f.dir(patient, studyName, ctDir)
	for i, z := range zs {
		name := filepath.Join(ct, fmt.Sprintf("%06d.dcm", i+1))
		if err := os.WriteFile(name, []byte(fmt.Sprint(z)), 0644); err != nil {
			f.t.Fatal(err)
		}
	}
}

func (f *fixture) processor() *Processor {
	p := NewProcessor(f.collection, f.output)
	p.Slices = textSlices{}
	p.Structures = f.structures
	p.Exporter = &raster.Exporter{Reader: flatSamples{}, Window: raster.DefaultWindow}
	p.Log = log.New(io.Discard, "", 0)
	return p
}

func region(name string, zs ...float64) *rtstruct.Region {
	r := rtstruct.NewRegion(name, 0)
	for _, z := range zs {
		r.AddPosition(z)
	}
	return r
}

func TestRepresentativeSliceExported(t *testing.T) {
	f := newFixture(t)
	f.addStudy("HN-1", "study", []float64{10, 12, 14, 16}, region("GTV_1", 10, 12, 14))

	session, statuses, err := f.processor().ProcessPatient("HN-1")
	if err != nil {
		t.Fatal(err)
	}

	if len(session.Selected) != 1 || filepath.Base(session.Selected[0]) != "000002.dcm" {
		t.Fatalf("Expected the slice at z=12 to be selected, got %v", session.Selected)
	}

	if len(statuses) != 2 || statuses[0].Kind != StatusAppended || statuses[1].Kind != StatusExported {
		t.Errorf("Unexpected statuses: %v", statuses)
	}
	if statuses[0].Message != "Slice 000002.dcm appended." {
		t.Errorf("Unexpected message %q", statuses[0].Message)
	}

	want := filepath.Join(f.output, "HN-1", "000002.dcm.png")
	if len(session.Exported) != 1 || session.Exported[0] != want {
		t.Errorf("Expected %s to be exported, got %v", want, session.Exported)
	}
	if _, err := os.Stat(want); err != nil {
		t.Error(err)
	}
}

func TestExactMatchWinsOverTolerance(t *testing.T) {
	f := newFixture(t)
	f.addStudy("HN-2", "study", []float64{10, 20.9}, region("GTV_1", 10, 20))

	session, _, err := f.processor().ProcessPatient("HN-2")
	if err != nil {
		t.Fatal(err)
	}

	if len(session.Selected) != 1 || filepath.Base(session.Selected[0]) != "000001.dcm" {
		t.Errorf("Expected the slice at z=10, got %v", session.Selected)
	}
}

func TestNoTumorNoExport(t *testing.T) {
	f := newFixture(t)
	f.addStudy("HN-3", "study", []float64{10, 12}, region("BODY", 10, 12), region("Parotid_R", 12))

	session, statuses, err := f.processor().ProcessPatient("HN-3")
	if err != nil {
		t.Fatal(err)
	}

	if len(statuses) != 1 || statuses[0].Kind != StatusNoTumor {
		t.Fatalf("Expected a single no-tumor status, got %v", statuses)
	}
	if statuses[0].Message != "No tumor identified in this structure set" {
		t.Errorf("Unexpected message %q", statuses[0].Message)
	}
	if len(session.Selected) != 0 || len(session.Exported) != 0 {
		t.Errorf("Expected nothing selected or exported, got %v / %v", session.Selected, session.Exported)
	}
	if _, err := os.Stat(filepath.Join(f.output, "HN-3")); !os.IsNotExist(err) {
		t.Errorf("Expected no output directory, got %v", err)
	}
}

func TestStudyWithoutImageSeriesSkipped(t *testing.T) {
	f := newFixture(t)
	f.dir("HN-4", "study", rtDir)
	f.dir("HN-4", "study", "4-PET AC-1")

	session, statuses, err := f.processor().ProcessPatient("HN-4")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(session.Pairings) != 0 || len(statuses) != 0 {
		t.Errorf("Expected the study to be skipped silently, got %v / %v", session.Pairings, statuses)
	}
}

func TestMissingPatient(t *testing.T) {
	f := newFixture(t)
	f.dir()

	_, _, err := f.processor().ProcessPatient("HN-404")
	if !errors.Is(err, study.ErrNotFound) {
		t.Errorf("Expected study.ErrNotFound, got %v", err)
	}
}

func TestInvalidStructureSetDoesNotStopOtherStudies(t *testing.T) {
	f := newFixture(t)
	f.addStudy("HN-5", "a-study", []float64{1, 2, 3})
	f.addStudy("HN-5", "b-study", []float64{1, 2, 3}, region("GTV_n", 1, 2, 3))

	bad := filepath.Join(f.collection, "HN-5", "a-study", rtDir, rtstruct.DefaultFilename)
	f.structures.errs[bad] = fmt.Errorf("%w: no ROIContourSequence", rtstruct.ErrInvalidFormat)

	session, statuses, err := f.processor().ProcessPatient("HN-5")
	if err != nil {
		t.Fatal(err)
	}

	if statuses[0].Kind != StatusInvalidFormat || statuses[0].Message != "Not a valid structure set" {
		t.Errorf("Expected the first study to be invalid, got %v", statuses[0])
	}
	if statuses[1].Kind != StatusAppended {
		t.Errorf("Expected the second study to succeed, got %v", statuses[1])
	}
	if len(session.Exported) != 1 {
		t.Errorf("Expected one export, got %v", session.Exported)
	}
}

func TestUnresolvedTumor(t *testing.T) {
	f := newFixture(t)
	f.addStudy("HN-6", "study", []float64{10, 12}, region("GTV_1", 50, 52, 54))

	_, statuses, err := f.processor().ProcessPatient("HN-6")
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 || statuses[0].Kind != StatusUnresolved {
		t.Errorf("Expected an unresolved status, got %v", statuses)
	}
}

func TestProcessCohort(t *testing.T) {
	f := newFixture(t)
	f.addStudy("HN-1", "study", []float64{10, 12, 14}, region("GTV_1", 10, 12, 14))
	f.addStudy("HN-2", "study", []float64{10, 12, 14}, region("BODY", 10))

	p := f.processor()
	images, statuses := p.ProcessCohort([]string{"HN-1", "HN-2", "HN-404"}, true)

	if len(images) != 1 {
		t.Errorf("Expected one image, got %v", images)
	}

	kinds := make([]StatusKind, 0, len(statuses))
	for _, s := range statuses {
		kinds = append(kinds, s.Kind)
	}
	want := []StatusKind{StatusAppended, StatusExported, StatusNoTumor, StatusPatientNotFound}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Errorf("Expected statuses %v, got %v", want, kinds)
	}

	// The second run finds HN-1 already on disk.
	images, statuses = p.ProcessCohort([]string{"HN-1"}, true)
	if len(images) != 1 || len(statuses) != 1 || statuses[0].Kind != StatusCached {
		t.Errorf("Expected a cached result, got %v / %v", images, statuses)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	f := newFixture(t)
	f.addStudy("HN-1", "study", []float64{10, 12, 14}, region("GTV_1", 10, 12, 14))
	f.addStudy("HN-2", "study", []float64{10, 12, 14}, region("BODY", 10))

	p := f.processor()
	first, _, err := p.ProcessPatient("HN-1")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := p.ProcessPatient("HN-2")
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Fatal("Expected a fresh session per patient")
	}
	if len(second.Selected) != 0 || len(second.Exported) != 0 {
		t.Errorf("State leaked into the second patient: %+v", second)
	}
}

func TestStatusManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.tsv")
	in := []Status{
		{PatientID: "HN-1", Study: "/c/HN-1/s", Kind: StatusAppended, Message: "Slice 000002.dcm appended."},
		{PatientID: "HN-2", Kind: StatusPatientNotFound, Message: "Patient does not exist in collection"},
	}

	if err := WriteStatusManifest(path, in); err != nil {
		t.Fatal(err)
	}

	out, err := ReadStatusManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("Expected %d rows, got %d", len(in), len(out))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("Row %d: wrote %+v, read %+v", i, in[i], out[i])
		}
	}
}

func TestAlreadyProcessed(t *testing.T) {
	root := t.TempDir()
	if AlreadyProcessed(root, "HN-1") {
		t.Error("Missing directory reported as processed")
	}

	if err := os.MkdirAll(filepath.Join(root, "HN-1"), 0755); err != nil {
		t.Fatal(err)
	}
	if AlreadyProcessed(root, "HN-1") {
		t.Error("Empty directory reported as processed")
	}

	if err := os.WriteFile(filepath.Join(root, "HN-1", "x.png"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if !AlreadyProcessed(root, "HN-1") {
		t.Error("Non-empty directory not reported as processed")
	}

	images, err := ExistingImages(root, "HN-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 1 || filepath.Base(images[0]) != "x.png" {
		t.Errorf("Expected x.png, got %v", images)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.CollectionRoot = "/c"
	cfg.OutputRoot = "/o"
	cfg.TumorMarker = "GTVp"
	cfg.WindowCenter = 40

	p := FromConfig(cfg, nil)
	if p.TumorMarker != "GTVp" || p.Exporter.Window.Center != 40 || p.PatientDir("HN-1") != filepath.Join("/o", "HN-1") {
		t.Errorf("Unexpected processor %+v", p)
	}
	if p.Log == nil {
		t.Error("Expected a default logger")
	}
}
