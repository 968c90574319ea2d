package llm

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
)

// ErrInvalidImageDataURL is returned for anything other than a base64
// data URL with an image media type.
var ErrInvalidImageDataURL = errors.New("invalid image data URL")

// DecodeImageDataURL splits data:<image/*>[;params];base64,<payload> into
// its media type and decoded bytes.
func DecodeImageDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidImageDataURL)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrInvalidImageDataURL)
	}

	mediaPart, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: payload must be base64", ErrInvalidImageDataURL)
	}
	mediaType, _, err := mime.ParseMediaType(mediaPart)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImageDataURL, err)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", nil, fmt.Errorf("%w: media type %s is not an image", ErrInvalidImageDataURL, mediaType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImageDataURL, err)
	}
	return mediaType, data, nil
}
