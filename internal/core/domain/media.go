package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MediaStream is one stream reported by the probe
type MediaStream struct {
	Index     int
	CodecType string
	// Duration is empty when the stream does not report one.
	Duration string
}

// MediaInfo is the probe result for one file
type MediaInfo struct {
	Streams        []MediaStream
	FormatDuration string
}

// HasVideoWithin reports whether at least one video stream lasts no longer than limit.
// A stream without its own duration uses the container duration.
func (m MediaInfo) HasVideoWithin(limit time.Duration) bool {
	for _, stream := range m.Streams {
		if stream.CodecType != "video" {
			continue
		}
		raw := stream.Duration
		if raw == "" || raw == "N/A" {
			raw = m.FormatDuration
		}
		d, err := ParseSeconds(raw)
		if err != nil {
			continue
		}
		if d <= limit {
			return true
		}
	}
	return false
}

// ParseSeconds parses a decimal seconds string such as "120.000001" without float rounding.
// Digits beyond nanosecond precision are truncated.
func ParseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	secs, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if secs > maxWholeSeconds {
		return 0, fmt.Errorf("invalid duration %q: out of range", s)
	}

	if len(frac) > 9 {
		frac = frac[:9]
	}
	var nanos int64
	if frac != "" {
		nanos, err = strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
	}

	return time.Duration(secs)*time.Second + time.Duration(nanos), nil
}

// maxWholeSeconds keeps secs*time.Second plus a sub-second part within time.Duration.
const maxWholeSeconds = math.MaxInt64/int64(time.Second) - 1

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// TranscodeOutput is one file produced by the transcoder
type TranscodeOutput struct {
	Path string
	// Extension has no leading dot.
	Extension string
}
