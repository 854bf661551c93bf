package hep

import (
	"time"

	"github.com/google/uuid"
)

// AcquisitionSource tells downstream where and when a record was harvested.
type AcquisitionSource struct {
	Source           string    `json:"source"`
	Method           string    `json:"method"`
	SubmissionNumber string    `json:"submission_number"`
	Datetime         time.Time `json:"datetime"`
}

// NewAcquisitionSource starts a new submission, all records of a single run
// share the submission number.
func NewAcquisitionSource(t time.Time) AcquisitionSource {
	return AcquisitionSource{
		Source:           SourceName,
		Method:           MethodHepkit,
		SubmissionNumber: uuid.NewString(),
		Datetime:         t.UTC(),
	}
}

// Envelope is the unit handed to a downstream catalog, one per line.
type Envelope struct {
	ID                string            `json:"id"`
	FileURL           string            `json:"file_url,omitempty"`
	AcquisitionSource AcquisitionSource `json:"acquisition_source"`
	Record            *Record           `json:"record"`
}
