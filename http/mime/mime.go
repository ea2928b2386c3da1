package mime

import "strings"

type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	HTML        MIME = "text/html"
	JSON        MIME = "application/json"
)

// HTMLUTF8 is what every HTML document, error pages included, is served as.
const HTMLUTF8 = HTML + "; charset=utf-8"

// Kind tells how a file of some extension is transferred.
type Kind uint8

const (
	Unsupported Kind = iota
	// Text files are served inline.
	Text
	// Binary files are served as attachments.
	Binary
)

var extensions = map[string]Kind{
	".html": Text,
	".txt":  Binary,
	".png":  Binary,
	".jpg":  Binary,
	".jpeg": Binary,
}

// ByExtension returns the content type and transfer kind for the file extension (including
// the leading dot). The extension is matched case-insensitively.
func ByExtension(ext string) (MIME, Kind) {
	switch kind := extensions[strings.ToLower(ext)]; kind {
	case Text:
		return HTMLUTF8, Text
	case Binary:
		return OctetStream, Binary
	default:
		return "", Unsupported
	}
}

// IsJSON reports whether the Content-Type header value declares a JSON body. Parameters
// like charset are allowed.
func IsJSON(contentType string) bool {
	return strings.Contains(contentType, JSON)
}
