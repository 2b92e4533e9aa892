package derivative

import (
	"net/url"
	"quipt/internal/config"
	"quipt/internal/core/port"
	"strings"
)

// Derivative suffixes published for every processed upload.
const (
	VideoSuffix  = "mp4"
	PosterSuffix = "png"
)

type publisher struct {
	origin string
}

// NewPublisher creates the static id -> public URL mapping under the media origin
func NewPublisher(cfg config.MediaConfig) port.DerivativePublisher {
	return &publisher{origin: strings.TrimRight(cfg.PublicOrigin, "/")}
}

func (p *publisher) Links(id string) port.DerivativeLinks {
	return port.DerivativeLinks{
		ID:        id,
		VideoURL:  p.url(id, VideoSuffix),
		PosterURL: p.url(id, PosterSuffix),
	}
}

func (p *publisher) url(id, suffix string) string {
	return p.origin + "/" + url.PathEscape(id+"."+suffix)
}

// Key returns the processed-bucket object key for a derivative.
func Key(id, suffix string) string {
	return id + "." + suffix
}
