package domain

import "time"

// UploadCredential is a scoped, time-limited POST policy for one raw upload
type UploadCredential struct {
	Key       string
	URL       string
	Fields    map[string]string
	ExpiresAt time.Time
}

// UploadOutcome is the result of an upload request: either a duplicate or a credential
type UploadOutcome struct {
	ID         string
	Duplicate  bool
	Credential *UploadCredential
}
