package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// StorageEvent is an S3-compatible bucket notification as delivered by MinIO
type StorageEvent struct {
	EventName string `json:"EventName"`
	Key       string `json:"Key"`
	Records   []struct {
		EventName string `json:"eventName"`
		S3        struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key  string `json:"key"`
				Size int64  `json:"size"`
				ETag string `json:"eTag"`
			} `json:"object"`
		} `json:"s3"`
		EventTime string `json:"eventTime"`
	} `json:"Records"`

	// Bucket and ObjectKey carry the plain {bucket, key} ingestion event.
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"key"`
}

// ObjectLocation names one object in the store
type ObjectLocation struct {
	Bucket string
	Key    string
}

// ID returns the content id the object was uploaded under: the key without directory or extension.
func (l ObjectLocation) ID() string {
	base := path.Base(l.Key)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ErrMalformedEvent is returned when a notification cannot be mapped to an object
var ErrMalformedEvent = errors.New("malformed storage event")

// ParseObjectLocation extracts the created object from a notification payload.
func ParseObjectLocation(data []byte) (ObjectLocation, error) {
	var event StorageEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return ObjectLocation{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	if len(event.Records) == 0 {
		if event.Bucket == "" || event.ObjectKey == "" {
			return ObjectLocation{}, fmt.Errorf("%w: no records", ErrMalformedEvent)
		}
		return ObjectLocation{Bucket: event.Bucket, Key: event.ObjectKey}, nil
	}

	record := event.Records[0]
	// keys arrive form-encoded, so '+' is a space
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return ObjectLocation{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if record.S3.Bucket.Name == "" || key == "" {
		return ObjectLocation{}, fmt.Errorf("%w: missing bucket or key", ErrMalformedEvent)
	}

	return ObjectLocation{Bucket: record.S3.Bucket.Name, Key: key}, nil
}
