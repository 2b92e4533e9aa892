package port

import "time"

// Metrics records pipeline outcomes
type Metrics interface {
	UploadRequested(outcome string)
	TranscodeFinished(outcome string, elapsed time.Duration)
}
