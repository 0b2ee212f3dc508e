package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/carbocation/rtslice/raster"
	"github.com/carbocation/rtslice/rtstruct"
	"github.com/carbocation/rtslice/series"
	"github.com/carbocation/rtslice/study"
)

// Logger is satisfied by *log.Logger.
type Logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Processor holds the collaborators and settings shared by every patient.
// It carries no per-patient state, so one Processor may serve many patients.
type Processor struct {
	CollectionRoot string
	OutputRoot     string

	Locator    *study.Locator
	Slices     series.PositionReader
	Structures rtstruct.Reader
	Exporter   *raster.Exporter

	StructureFilename string
	TumorMarker       string
	Tolerance         float64

	Log Logger
}

// NewProcessor returns a Processor reading DICOM from collectionRoot and
// writing rasters under outputRoot, with default settings.
func NewProcessor(collectionRoot, outputRoot string) *Processor {
	return &Processor{
		CollectionRoot:    collectionRoot,
		OutputRoot:        outputRoot,
		Locator:           study.NewLocator(),
		Slices:            series.DicomPositionReader{},
		Structures:        rtstruct.DicomReader{},
		Exporter:          raster.NewExporter(raster.DefaultWindow, 0),
		StructureFilename: rtstruct.DefaultFilename,
		TumorMarker:       rtstruct.DefaultTumorMarker,
		Tolerance:         series.DefaultTolerance,
		Log:               log.New(os.Stderr, log.Prefix(), log.Ldate|log.Ltime),
	}
}

// PatientDir is where the patient's rasters are written.
func (p *Processor) PatientDir(patientID string) string {
	return filepath.Join(p.OutputRoot, patientID)
}

// ProcessPatient runs every usable study of one patient and exports the
// selected slices. Only a missing patient directory is returned as an error
// (wrapping study.ErrNotFound); everything else becomes a Status.
func (p *Processor) ProcessPatient(patientID string) (*Session, []Status, error) {
	session := NewSession(patientID)

	pairings, err := p.Locator.Locate(filepath.Join(p.CollectionRoot, patientID))
	if err != nil {
		return session, nil, err
	}
	session.Pairings = pairings

	p.logger().Printf("%s has %d usable studies\n", patientID, len(pairings))

	var statuses []Status
	for _, pairing := range pairings {
		st := p.processStudy(session, pairing)
		p.logger().Println(st)
		statuses = append(statuses, st)
	}

	for _, slicePath := range session.Selected {
		st := Status{PatientID: patientID, Study: filepath.Dir(filepath.Dir(slicePath))}

		out, err := p.Exporter.Export(slicePath, p.PatientDir(patientID))
		if err != nil {
			st.Kind = StatusExportFailed
			st.Message = fmt.Sprintf("Export of %s failed: %v", filepath.Base(slicePath), err)
		} else {
			st.Kind = StatusExported
			st.Message = fmt.Sprintf("Exported %s", filepath.Base(out))
		}

		p.logger().Println(st)
		statuses = append(statuses, st)
	}

	if len(session.Selected) > 0 {
		session.Exported, err = raster.ListImages(p.PatientDir(patientID))
		if err != nil {
			return session, statuses, err
		}
	}

	return session, statuses, nil
}

func (p *Processor) processStudy(session *Session, pairing study.Pairing) Status {
	st := Status{PatientID: session.PatientID, Study: pairing.Study}

	idx, skipped, err := series.Build(pairing.ImageSeries, p.Slices)
	if err != nil {
		st.Kind = StatusReadError
		st.Message = fmt.Sprintf("Could not index image series: %v", err)
		return st
	}
	session.Index = idx
	if skipped > 0 {
		p.logger().Printf("%s: skipped %d unreadable files in %s\n", session.PatientID, skipped, filepath.Base(pairing.ImageSeries))
	}

	rtPath, err := rtstruct.FindFile(pairing.StructureSet, p.StructureFilename)
	if err != nil {
		st.Kind = StatusMissingFile
		st.Message = "Structure set file not found"
		return st
	}

	regions, err := p.Structures.ReadRegions(rtPath)
	switch {
	case errors.Is(err, rtstruct.ErrInvalidFormat):
		st.Kind = StatusInvalidFormat
		st.Message = "Not a valid structure set"
		return st
	case errors.Is(err, os.ErrNotExist):
		st.Kind = StatusMissingFile
		st.Message = "Structure set file not found"
		return st
	case err != nil:
		st.Kind = StatusReadError
		st.Message = fmt.Sprintf("Could not read structure set: %v", err)
		return st
	}

	sel, err := rtstruct.Select(regions, p.TumorMarker, idx, p.Tolerance)
	switch {
	case errors.Is(err, rtstruct.ErrNoTumor):
		st.Kind = StatusNoTumor
		st.Message = "No tumor identified in this structure set"
		return st
	case errors.Is(err, rtstruct.ErrUnresolved):
		st.Kind = StatusUnresolved
		st.Message = fmt.Sprintf("No tumor identified in this structure set (no slice within %v of a tumor region)", p.Tolerance)
		return st
	case err != nil:
		st.Kind = StatusReadError
		st.Message = err.Error()
		return st
	}

	session.Selected = append(session.Selected, filepath.Join(pairing.ImageSeries, sel.Slice.Filename))

	st.Kind = StatusAppended
	st.Message = fmt.Sprintf("Slice %s appended.", sel.Slice.Filename)
	return st
}

// ProcessCohort processes patients one at a time, each with its own Session,
// and returns every raster produced or found along with the statuses. When
// skipExisting is set, patients whose output directory already holds files are
// not reprocessed; their existing rasters are reported instead.
func (p *Processor) ProcessCohort(patientIDs []string, skipExisting bool) ([]string, []Status) {
	var images []string
	var statuses []Status

	for _, patientID := range patientIDs {
		if skipExisting && AlreadyProcessed(p.OutputRoot, patientID) {
			existing, err := ExistingImages(p.OutputRoot, patientID)
			if err != nil {
				p.logger().Println(patientID, err)
			}
			images = append(images, existing...)
			statuses = append(statuses, Status{PatientID: patientID, Kind: StatusCached, Message: fmt.Sprintf("%s already exists", patientID)})
			continue
		}

		session, st, err := p.ProcessPatient(patientID)
		statuses = append(statuses, st...)
		if errors.Is(err, study.ErrNotFound) {
			statuses = append(statuses, Status{PatientID: patientID, Kind: StatusPatientNotFound, Message: "Patient does not exist in collection"})
			continue
		} else if err != nil {
			statuses = append(statuses, Status{PatientID: patientID, Kind: StatusReadError, Message: err.Error()})
			continue
		}

		images = append(images, session.Exported...)
	}

	return images, statuses
}

// AlreadyProcessed reports whether the patient's output directory exists and
// is non-empty.
func AlreadyProcessed(outputRoot, patientID string) bool {
	files, err := os.ReadDir(filepath.Join(outputRoot, patientID))
	if err != nil {
		return false
	}

	return len(files) > 0
}

// ExistingImages lists the rasters already written for a patient.
func ExistingImages(outputRoot, patientID string) ([]string, error) {
	return raster.ListImages(filepath.Join(outputRoot, patientID))
}

func (p *Processor) logger() Logger {
	if p.Log == nil {
		return log.New(io.Discard, "", 0)
	}
	return p.Log
}
