package core

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Record is one data row keyed by field name. Values are raw or canonical text.
type Record map[string]string

// RawTable is the parser's output: a header row plus data rows aligned by position.
// Rows may be ragged; use PadRow or ToRecords to square them off.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Empty reports whether the input had no non-blank lines at all.
func (t RawTable) Empty() bool {
	return len(t.Headers) == 0 && len(t.Rows) == 0
}

// Records converts the table to field-keyed records.
func (t RawTable) Records() []Record {
	return ToRecords(t.Headers, t.Rows)
}

// MappingEntry maps one source column to a target field with a coercion directive.
// An empty TargetField means the column is dropped.
type MappingEntry struct {
	SourceColumn string `json:"sourceColumn"`
	TargetField  string `json:"targetField"`
	DataType     string `json:"dataType"`
}

// ColumnMapping is an ordered list of mapping entries.
type ColumnMapping []MappingEntry

// Mapped returns only the entries that have a target field.
func (m ColumnMapping) Mapped() ColumnMapping {
	out := make(ColumnMapping, 0, len(m))
	for _, e := range m {
		if e.TargetField != "" {
			out = append(out, e)
		}
	}
	return out
}

// Batch is what the pipeline hands to a Persister: one import, whole.
type Batch struct {
	ID        uuid.UUID
	DataType  string
	FileName  string
	Records   []DomainRecord
	CreatedAt time.Time
}

// Persister durably stores a transformed batch. Implementations live in the store package.
type Persister interface {
	SaveBatch(ctx context.Context, batch Batch) error
}

// UploadRequest describes one uploaded file.
type UploadRequest struct {
	FileName    string
	ContentType string
	DataType    string
	Size        int64 // as declared by the transport; -1 if unknown
	Body        io.Reader
}

// UploadResult is returned for every upload that got as far as parsing.
// Data is nil unless every validation stage passed.
type UploadResult struct {
	Message    string           `json:"message"`
	FileName   string           `json:"fileName"`
	DataType   string           `json:"dataType"`
	Headers    []string         `json:"headers"`
	RowCount   int              `json:"rowCount"`
	Validation ValidationResult `json:"validation"`
	Preview    []DomainRecord   `json:"preview"`
	Data       []DomainRecord   `json:"data"`
}

// ImportRequest carries rows (usually from an earlier upload) to be transformed and stored.
type ImportRequest struct {
	DataType string        `json:"dataType"`
	Data     []Record      `json:"data"`
	Mapping  ColumnMapping `json:"mapping,omitempty"`
}

// ImportResult summarizes a persisted batch.
type ImportResult struct {
	Message     string         `json:"message"`
	BatchID     string         `json:"batchId"`
	FileName    string         `json:"fileName"`
	RecordCount int            `json:"recordCount"`
	Data        []DomainRecord `json:"data"`
}

// ValidateRequest asks whether a header row fits a data type.
type ValidateRequest struct {
	Headers  []string `json:"headers"`
	DataType string   `json:"dataType"`
}

// ValidateResponse pairs structural validation with a suggested mapping.
type ValidateResponse struct {
	Validation       ValidationResult `json:"validation"`
	SuggestedMapping ColumnMapping    `json:"suggestedMapping"`
}
