package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exports pipeline outcomes as Prometheus metrics
type Recorder struct {
	uploadRequests    *prometheus.CounterVec
	transcodeOutcomes *prometheus.CounterVec
	transcodeDuration prometheus.Histogram
}

// NewRecorder registers the pipeline metrics on reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		uploadRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quipt_upload_requests_total",
			Help: "Upload credential requests by outcome",
		}, []string{"outcome"}),
		transcodeOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quipt_transcode_jobs_total",
			Help: "Transcode invocations by outcome",
		}, []string{"outcome"}),
		transcodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "quipt_transcode_duration_seconds",
			Help:    "Time taken by one transcode invocation",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
}

func (r *Recorder) UploadRequested(outcome string) {
	r.uploadRequests.WithLabelValues(outcome).Inc()
}

func (r *Recorder) TranscodeFinished(outcome string, elapsed time.Duration) {
	r.transcodeOutcomes.WithLabelValues(outcome).Inc()
	r.transcodeDuration.Observe(elapsed.Seconds())
}
