package signatures

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// MaxImageBytes caps a decoded signature image.
const MaxImageBytes = 2 << 20

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Image is a decoded signature raster.
type Image struct {
	Data     []byte
	MimeType string
}

// Ext returns the file extension for the image type.
func (img Image) Ext() string {
	return imageExtensions[img.MimeType]
}

// ParseImageData decodes what the signature pad emits: a base64 data URL or
// bare base64. Stroke content is not inspected; any non-empty raster counts.
func ParseImageData(raw string) (Image, error) {
	payload := strings.TrimSpace(raw)
	if payload == "" {
		return Image{}, fmt.Errorf("%w: signature image is required", ErrInvalidInput)
	}

	if strings.HasPrefix(strings.ToLower(payload), "data:") {
		header, data, ok := strings.Cut(payload, ",")
		if !ok {
			return Image{}, fmt.Errorf("%w: malformed data url", ErrInvalidInput)
		}
		if !strings.HasSuffix(strings.ToLower(header), ";base64") {
			return Image{}, fmt.Errorf("%w: data url must be base64 encoded", ErrInvalidInput)
		}
		payload = data
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return Image{}, fmt.Errorf("%w: signature image exceeds %d bytes", ErrInvalidInput, MaxImageBytes)
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return Image{}, fmt.Errorf("%w: signature image is not valid base64", ErrInvalidInput)
		}
	}
	if len(decoded) == 0 {
		return Image{}, fmt.Errorf("%w: signature image is empty", ErrInvalidInput)
	}
	if len(decoded) > MaxImageBytes {
		return Image{}, fmt.Errorf("%w: signature image exceeds %d bytes", ErrInvalidInput, MaxImageBytes)
	}

	mimeType := http.DetectContentType(decoded)
	if _, ok := imageExtensions[mimeType]; !ok {
		return Image{}, fmt.Errorf("%w: unsupported image type %s", ErrInvalidInput, mimeType)
	}
	return Image{Data: decoded, MimeType: mimeType}, nil
}
