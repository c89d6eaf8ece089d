package constants

import "strings"

// MediaCategory is the closed set of input media categories. The declared
// MIME type of a descriptor is resolved to a category exactly once, before
// any processing; all dispatch happens on the resolved value.
type MediaCategory string

const (
	MediaPDF         MediaCategory = "PDF"
	MediaImage       MediaCategory = "IMAGE"
	MediaAudio       MediaCategory = "AUDIO"
	MediaText        MediaCategory = "TEXT"
	MediaVideo       MediaCategory = "VIDEO"
	MediaUnsupported MediaCategory = "UNSUPPORTED"
)

// CategoryFromMIME maps a declared MIME type to its media category.
// First match wins, checked in this order: application/pdf, image/*,
// audio/*, text/*, video/*, everything else is unsupported.
func CategoryFromMIME(mimeType string) MediaCategory {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "application/pdf"):
		return MediaPDF
	case strings.HasPrefix(mt, "image/"):
		return MediaImage
	case strings.HasPrefix(mt, "audio/"):
		return MediaAudio
	case strings.HasPrefix(mt, "text/"):
		return MediaText
	case strings.HasPrefix(mt, "video/"):
		return MediaVideo
	default:
		return MediaUnsupported
	}
}

// MIMETextPlain is the canonical type assigned to transcribed audio and
// other terminal text transforms.
const MIMETextPlain = "text/plain"

// MIMEImagePNG is the canonical type for rasterized PDF pages and extracted
// video frames.
const MIMEImagePNG = "image/png"
