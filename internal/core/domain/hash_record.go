package domain

import "time"

// HashState is the processing state of a content hash. It only moves forward.
type HashState string

const (
	HashStatePending   HashState = "pending"
	HashStateValidated HashState = "validated"
	HashStatePublished HashState = "published"
)

// HashRecord is the registry entry for one distinct content hash
type HashRecord struct {
	Hash             ContentHash
	ID               string
	State            HashState
	OriginalUploader string
	// SourceID is set when the record was derived from another upload's output.
	SourceID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UploadPending reports whether the upload has not yet passed validation.
func (r HashRecord) UploadPending() bool {
	return r.State == HashStatePending
}

// Processed reports whether derivatives for this hash are published.
func (r HashRecord) Processed() bool {
	return r.State == HashStatePublished
}
