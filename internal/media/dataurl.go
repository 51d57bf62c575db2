package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/url"
	"strings"
)

// ErrNotDataURL is returned for strings that are not data: URLs.
var ErrNotDataURL = errors.New("not a data URL")

// DataURL is a decoded data: URL.
type DataURL struct {
	MediaType string
	Data      []byte
}

// ParseDataURL decodes "data:[<mediatype>][;base64],<data>".
func ParseDataURL(raw string) (*DataURL, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrNotDataURL
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	mediaType := meta
	if mediaType == "" {
		mediaType = "text/plain;charset=US-ASCII"
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, err
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, err
		}
		data = []byte(unescaped)
	}

	return &DataURL{MediaType: mediaType, Data: data}, nil
}

// IsImage reports whether the payload declares an image media type.
func (d *DataURL) IsImage() bool {
	return strings.HasPrefix(d.MediaType, "image/")
}

// Placeholder computes a BlurHash for an image stored in a member's image field.
// Remote URLs and undecodable payloads yield "", since a placeholder is optional.
func Placeholder(logger *slog.Logger, image string) string {
	if !strings.HasPrefix(image, "data:") {
		return ""
	}

	d, err := ParseDataURL(image)
	if err != nil || !d.IsImage() {
		return ""
	}

	hash, err := ComputeBlurHash(bytes.NewReader(d.Data))
	if err != nil {
		if logger != nil {
			logger.Debug("skipping blurhash for uploaded image", "media_type", d.MediaType, "error", err)
		}
		return ""
	}
	return hash
}
