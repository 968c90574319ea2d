package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/vincent-petithory/dataurl"
)

// DefaultMaxSize is the largest photo accepted for analysis.
const DefaultMaxSize int64 = 8 << 20

var (
	ErrNotImage = errors.New("please upload images only (jpg/png/webp)")
	ErrTooLarge = errors.New("image is too large")
)

// Image is a validated photo ready to be sent to the bridge.
type Image struct {
	Name      string
	MediaType string
	Size      int64
	// DataURL holds the full file content, base64-encoded with its media type.
	DataURL string
}

// SizeMB returns the size in megabytes with two decimals.
func (i *Image) SizeMB() string {
	return fmt.Sprintf("%.2f", float64(i.Size)/1024/1024)
}

// Load validates the photo at path and encodes it as a data URL. The media
// type is sniffed from the content, not taken from the file extension.
func Load(path string, maxSize int64) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect media type: %w", err)
	}
	mediaType := strings.TrimSpace(strings.SplitN(mtype.String(), ";", 2)[0])
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotImage, filepath.Base(path), mediaType)
	}

	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%w (>%s MB), please make it smaller", ErrTooLarge, formatMB(maxSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}

	return &Image{
		Name:      filepath.Base(path),
		MediaType: mediaType,
		Size:      int64(len(data)),
		DataURL:   dataurl.New(data, mediaType).String(),
	}, nil
}

func formatMB(n int64) string {
	mb := float64(n) / 1024 / 1024
	if mb == float64(int64(mb)) {
		return fmt.Sprintf("%d", int64(mb))
	}
	return fmt.Sprintf("%.2f", mb)
}
