// Package photo re-encodes inbound report photos into bounded JPEG payloads.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/png"

	"github.com/spec-kit/report-service/internal/config"
)

// ErrPhotoTooLarge signals a payload that still exceeds the byte cap after
// normalization. It is surfaced to the caller rather than dropped silently.
var ErrPhotoTooLarge = errors.New("photo exceeds maximum allowed size")

const jpegDataURIPrefix = "data:image/jpeg;base64,"

// Normalizer produces bounded-size, bounded-quality JPEG renditions of
// uploaded photos.
type Normalizer struct {
	maxWidth  int
	maxHeight int
	quality   int
	maxBytes  int
}

// NewNormalizer constructs a normalizer from image config.
func NewNormalizer(cfg config.ImageConfig) *Normalizer {
	n := &Normalizer{
		maxWidth:  cfg.MaxWidth,
		maxHeight: cfg.MaxHeight,
		quality:   cfg.Quality,
		maxBytes:  cfg.MaxBytes,
	}
	if n.maxWidth <= 0 {
		n.maxWidth = 800
	}
	if n.maxHeight <= 0 {
		n.maxHeight = 600
	}
	if n.quality <= 0 || n.quality > 100 {
		n.quality = 85
	}
	return n
}

// Normalize accepts a base64 payload, with or without a data-URI prefix, and
// returns a JPEG data URI bounded by the configured dimensions and quality.
//
// Decode or re-encode failures are non-fatal: the original payload is
// returned unchanged so a bad photo never fails the enclosing submission.
// Either way the final payload is checked against the byte cap, and
// ErrPhotoTooLarge is returned when it cannot be stored.
func (n *Normalizer) Normalize(payload string) (string, error) {
	normalized, ok := n.reencode(payload)
	if !ok {
		normalized = payload
	}
	if n.maxBytes > 0 && len(normalized) > n.maxBytes {
		return "", ErrPhotoTooLarge
	}
	return normalized, nil
}

func (n *Normalizer) reencode(payload string) (string, bool) {
	raw := payload
	if idx := strings.Index(raw, ","); idx >= 0 {
		raw = raw[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", false
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", false
	}

	// Flatten to plain color: alpha is dropped outright, not composited
	// against a background. JPEG has no alpha channel anyway.
	flat := imaging.Clone(img)
	for i := 3; i < len(flat.Pix); i += 4 {
		flat.Pix[i] = 0xff
	}

	bounds := flat.Bounds()
	resized := flat
	if bounds.Dx() > n.maxWidth || bounds.Dy() > n.maxHeight {
		resized = imaging.Fit(flat, n.maxWidth, n.maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return "", false
	}

	return jpegDataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), true
}
