// Package study finds, inside one patient's directory tree, the pairs of
// structure-set and image-series directories that belong to the same study.
// The layout it expects is <patient>/<study>/<component>.
package study

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when the patient root does not exist, so that "no
// such patient" is distinguishable from "patient with no usable studies".
var ErrNotFound = errors.New("patient directory not found")

// Pairing is one usable study: the structure-set directory and the
// image-series directory, both directly under the same study root.
type Pairing struct {
	Study        string
	StructureSet string
	ImageSeries  string
}

// Locator classifies the component directories of each study.
type Locator struct {
	Classifier Classifier

	// ReadDir lists a study directory. Nil means os.ReadDir.
	ReadDir func(name string) ([]os.DirEntry, error)
}

// NewLocator returns a Locator using the default keyword classifier.
func NewLocator() *Locator {
	return &Locator{Classifier: NewKeywordClassifier()}
}

// Locate enumerates the studies under patientRoot and returns one Pairing per
// study that has at least one component of each role. The first component in
// listing order wins for each role. Studies missing either role, and studies
// that cannot be listed, are skipped without error; the latter are logged.
func (l *Locator) Locate(patientRoot string) ([]Pairing, error) {
	info, err := os.Stat(patientRoot)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, fmt.Errorf("%s: %w", patientRoot, ErrNotFound)
	} else if err != nil {
		return nil, err
	}

	studies, err := os.ReadDir(patientRoot)
	if err != nil {
		return nil, err
	}

	var out []Pairing
	for _, st := range studies {
		if !st.IsDir() {
			continue
		}

		studyRoot := filepath.Join(patientRoot, st.Name())
		pairing, ok, err := l.pairStudy(studyRoot)
		if err != nil {
			log.Printf("Skipping study %s: %v\n", studyRoot, err)
			continue
		}
		if !ok {
			continue
		}

		out = append(out, pairing)
	}

	return out, nil
}

func (l *Locator) pairStudy(studyRoot string) (Pairing, bool, error) {
	readDir := l.ReadDir
	if readDir == nil {
		readDir = os.ReadDir
	}

	components, err := readDir(studyRoot)
	if err != nil {
		return Pairing{}, false, err
	}

	classifier := l.Classifier
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}

	out := Pairing{Study: studyRoot}
	for _, comp := range components {
		if !comp.IsDir() {
			continue
		}

		switch classifier.Classify(comp.Name()) {
		case RoleStructureSet:
			if out.StructureSet == "" {
				out.StructureSet = filepath.Join(studyRoot, comp.Name())
			}
		case RoleImageSeries:
			if out.ImageSeries == "" {
				out.ImageSeries = filepath.Join(studyRoot, comp.Name())
			}
		}
	}

	return out, out.StructureSet != "" && out.ImageSeries != "", nil
}
