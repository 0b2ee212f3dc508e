package pipeline

import (
	"fmt"
	"path/filepath"
)

// StatusKind classifies the outcome of one processed item.
type StatusKind int

const (
	StatusAppended StatusKind = iota
	StatusNoTumor
	StatusUnresolved
	StatusInvalidFormat
	StatusMissingFile
	StatusReadError
	StatusExported
	StatusExportFailed
	StatusPatientNotFound
	StatusCached
)

var statusNames = map[StatusKind]string{
	StatusAppended:        "appended",
	StatusNoTumor:         "no-tumor",
	StatusUnresolved:      "unresolved",
	StatusInvalidFormat:   "invalid-format",
	StatusMissingFile:     "missing-file",
	StatusReadError:       "read-error",
	StatusExported:        "exported",
	StatusExportFailed:    "export-failed",
	StatusPatientNotFound: "patient-not-found",
	StatusCached:          "cached",
}

func (k StatusKind) String() string {
	if s, ok := statusNames[k]; ok {
		return s
	}
	return fmt.Sprintf("status(%d)", int(k))
}

// MarshalCSV and UnmarshalCSV let the status manifest carry readable kinds.
func (k StatusKind) MarshalCSV() (string, error) {
	return k.String(), nil
}

func (k *StatusKind) UnmarshalCSV(s string) error {
	for kind, name := range statusNames {
		if name == s {
			*k = kind
			return nil
		}
	}

	return fmt.Errorf("unknown status %q", s)
}

// Status is the human-readable outcome of one study, slice, or patient.
type Status struct {
	PatientID string     `csv:"patient_id"`
	Study     string     `csv:"study"`
	Kind      StatusKind `csv:"status"`
	Message   string     `csv:"message"`
}

// OK reports whether the item produced something usable.
func (s Status) OK() bool {
	return s.Kind == StatusAppended || s.Kind == StatusExported || s.Kind == StatusCached
}

func (s Status) String() string {
	if s.Study == "" {
		return fmt.Sprintf("%s: %s", s.PatientID, s.Message)
	}
	return fmt.Sprintf("%s %s: %s", s.PatientID, filepath.Base(s.Study), s.Message)
}
