package study

import "strings"

// Role is the part a component directory plays within a study.
type Role int

const (
	RoleNone Role = iota
	RoleStructureSet
	RoleImageSeries
)

func (r Role) String() string {
	switch r {
	case RoleStructureSet:
		return "structure-set"
	case RoleImageSeries:
		return "image-series"
	}

	return "none"
}

// Classifier assigns a Role to a component directory. Implementations see only
// the directory name; swapping in a header-based classifier must not require
// changes anywhere else in the pipeline.
type Classifier interface {
	Classify(dirName string) Role
}

// KeywordClassifier classifies a directory by substring match against two
// ordered keyword sets. Structure-set keywords are tested first.
type KeywordClassifier struct {
	StructureSet []string
	ImageSeries  []string
}

// DefaultStructureSetKeywords and DefaultImageSeriesKeywords are the folder
// naming conventions seen in the Head-Neck-PET-CT collection.
var (
	DefaultStructureSetKeywords = []string{"1-RTstructCTsim", "RadOnc Structure", "REGCTsim"}
	DefaultImageSeriesKeywords  = []string{"Merged", "StandardFull", "CTnormal", "CT IMAGES", "2.5mm"}
)

// NewKeywordClassifier returns a classifier over the default keyword sets.
func NewKeywordClassifier() KeywordClassifier {
	return KeywordClassifier{
		StructureSet: DefaultStructureSetKeywords,
		ImageSeries:  DefaultImageSeriesKeywords,
	}
}

func (k KeywordClassifier) Classify(dirName string) Role {
	if containsAny(dirName, k.StructureSet) {
		return RoleStructureSet
	}

	if containsAny(dirName, k.ImageSeries) {
		return RoleImageSeries
	}

	return RoleNone
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}

	return false
}
