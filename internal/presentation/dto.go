package presentation

import (
	"github.com/sprs/sprs/internal/patients/domain"
)

// RecordDTO represents a patient record for presentation
type RecordDTO struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// FromDomainRecord converts a domain record to a DTO.
func FromDomainRecord(rec domain.Record) RecordDTO {
	return RecordDTO{ID: rec.ID(), Name: rec.Name()}
}

// FromDomainRecords converts records, keeping their order. Never returns nil.
func FromDomainRecords(recs []domain.Record) []RecordDTO {
	out := make([]RecordDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, FromDomainRecord(r))
	}
	return out
}

// ResultDTO is the outcome of one batch operation.
type ResultDTO struct {
	Line    int         `json:"line" yaml:"line"`
	Op      string      `json:"op" yaml:"op"`
	ID      string      `json:"id,omitempty" yaml:"id,omitempty"`
	Record  *RecordDTO  `json:"record,omitempty" yaml:"record,omitempty"`
	Records []RecordDTO `json:"records,omitempty" yaml:"records,omitempty"`
	Error   string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the operation returned an error.
func (r ResultDTO) Failed() bool {
	return r.Error != ""
}
