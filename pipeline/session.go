// Package pipeline runs the per-patient slice pipeline: locate studies, index
// each image series, choose the tumor slice from the structure set, and export
// the chosen slices as rasters.
package pipeline

import (
	"github.com/carbocation/rtslice/series"
	"github.com/carbocation/rtslice/study"
)

// Session holds everything known about one patient while it is processed. A
// new Session is made for every patient and never reused.
type Session struct {
	PatientID string
	Pairings  []study.Pairing

	// Index is the slice index of the study currently being processed.
	Index *series.Index

	// Selected are full paths of slices waiting to be exported.
	Selected []string

	// Exported are the raster files present for the patient after export.
	Exported []string
}

// NewSession returns an empty session for patientID.
func NewSession(patientID string) *Session {
	return &Session{PatientID: patientID}
}
