package domain

import "errors"

// ErrInvalidHash is returned when a claimed content hash is not 64 lowercase hex characters
var ErrInvalidHash = errors.New("invalid content hash")

// ErrInvalidSize is returned when a claimed payload size is not positive
var ErrInvalidSize = errors.New("invalid payload size")

// ErrPayloadTooLarge is returned when a claimed payload exceeds the configured maximum
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrSuspiciousContent is returned when an upload looks like a disguised playlist
var ErrSuspiciousContent = errors.New("suspicious content")

// ErrInvalidMedia is returned when no acceptable video stream is found
var ErrInvalidMedia = errors.New("invalid media")

// ErrHashNotFound is returned when the registry has no record for a hash
var ErrHashNotFound = errors.New("hash not found")

// ErrAlreadyProcessed is returned when a hash is already published
var ErrAlreadyProcessed = errors.New("hash already processed")

// ErrHashOwnerMismatch is returned when a transition names an id that does not own the hash
var ErrHashOwnerMismatch = errors.New("hash is owned by another id")

// ErrObjectNotFound is returned when an object is missing from the store
var ErrObjectNotFound = errors.New("object not found")

// ErrMissingRendition is returned when the transcoder did not produce the video rendition
var ErrMissingRendition = errors.New("missing video rendition")

// ErrUnauthenticated is returned when no principal could be resolved for a request
var ErrUnauthenticated = errors.New("unauthenticated")

// IsRejection reports whether err is a terminal content rejection that a redelivery cannot fix.
func IsRejection(err error) bool {
	return errors.Is(err, ErrSuspiciousContent) || errors.Is(err, ErrInvalidMedia)
}
