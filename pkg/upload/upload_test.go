package upload

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/helmcode/pestscan/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincent-petithory/dataurl"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

type fakeBridge struct {
	calls   int
	report  *model.Report
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeBridge) Analyze(ctx context.Context, imageDataURL string) (*model.Report, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.report, f.err
}

func TestLoad(t *testing.T) {
	t.Run("jpeg is encoded as data url", func(t *testing.T) {
		path := writeFile(t, "rat.jpg", jpegHeader)

		img, err := Load(path, DefaultMaxSize)
		require.NoError(t, err)
		assert.Equal(t, "rat.jpg", img.Name)
		assert.Equal(t, "image/jpeg", img.MediaType)
		assert.Equal(t, int64(len(jpegHeader)), img.Size)
		assert.True(t, strings.HasPrefix(img.DataURL, "data:image/jpeg;base64,"))

		du, err := dataurl.DecodeString(img.DataURL)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(jpegHeader, du.Data))
	})

	t.Run("media type comes from content", func(t *testing.T) {
		path := writeFile(t, "photo.txt", pngHeader)

		img, err := Load(path, DefaultMaxSize)
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MediaType)
	})

	t.Run("non-image is rejected", func(t *testing.T) {
		path := writeFile(t, "notes.jpg", []byte("these are not pixels\n"))

		img, err := Load(path, DefaultMaxSize)
		assert.Nil(t, img)
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("oversize is rejected", func(t *testing.T) {
		data := append(append([]byte{}, pngHeader...), make([]byte, 2048)...)
		path := writeFile(t, "big.png", data)

		img, err := Load(path, 1024)
		assert.Nil(t, img)
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.png"), DefaultMaxSize)
		assert.Error(t, err)
	})
}

func TestImageSizeMB(t *testing.T) {
	assert.Equal(t, "0.00", (&Image{Size: 10}).SizeMB())
	assert.Equal(t, "1.50", (&Image{Size: 3 << 19}).SizeMB())
	assert.Equal(t, "8.00", (&Image{Size: 8 << 20}).SizeMB())
}

func TestSessionRejectsWithoutCallingBridge(t *testing.T) {
	bridge := &fakeBridge{report: &model.Report{}}
	s := NewSession(bridge, 1024)

	err := s.Pick(writeFile(t, "notes.png", []byte("plain text")))
	assert.ErrorIs(t, err, ErrNotImage)
	assert.False(t, s.CanAnalyze())

	big := append(append([]byte{}, pngHeader...), make([]byte, 4096)...)
	err = s.Pick(writeFile(t, "big.png", big))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.False(t, s.CanAnalyze())

	_, err = s.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrNoPreview)
	assert.Equal(t, 0, bridge.calls)
	assert.NotEmpty(t, s.State().Error)
}

func TestSessionKeepsPreviousPreviewOnRejection(t *testing.T) {
	s := NewSession(&fakeBridge{}, DefaultMaxSize)

	require.NoError(t, s.Pick(writeFile(t, "rat.png", pngHeader)))
	err := s.Pick(writeFile(t, "notes.txt", []byte("plain text")))
	require.Error(t, err)

	state := s.State()
	require.NotNil(t, state.Image)
	assert.Equal(t, "rat.png", state.Image.Name)
	assert.Contains(t, state.Error, "images only")
	assert.True(t, s.CanAnalyze())
}

func TestSessionAnalyze(t *testing.T) {
	report := &model.Report{Pest: model.Pest{Name: "Brown rat", Confidence: 0.8}}
	bridge := &fakeBridge{report: report}
	s := NewSession(bridge, DefaultMaxSize)
	require.NoError(t, s.Pick(writeFile(t, "rat.png", pngHeader)))

	got, err := s.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report, got)
	assert.Equal(t, 1, bridge.calls)

	state := s.State()
	assert.False(t, state.Busy)
	assert.Equal(t, report, state.Report)
	assert.Empty(t, state.Error)

	// Picking a new photo clears the previous result.
	require.NoError(t, s.Pick(writeFile(t, "mouse.png", pngHeader)))
	assert.Nil(t, s.State().Report)
}

func TestSessionAnalyzeError(t *testing.T) {
	bridge := &fakeBridge{err: errors.New("No structured output returned")}
	s := NewSession(bridge, DefaultMaxSize)
	require.NoError(t, s.Pick(writeFile(t, "rat.png", pngHeader)))

	_, err := s.Analyze(context.Background())
	require.Error(t, err)

	state := s.State()
	assert.False(t, state.Busy)
	assert.Nil(t, state.Report)
	assert.Equal(t, "No structured output returned", state.Error)
	assert.True(t, s.CanAnalyze())
}

func TestSessionBusy(t *testing.T) {
	bridge := &fakeBridge{
		report:  &model.Report{},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSession(bridge, DefaultMaxSize)
	require.NoError(t, s.Pick(writeFile(t, "rat.png", pngHeader)))

	done := make(chan error, 1)
	go func() {
		_, err := s.Analyze(context.Background())
		done <- err
	}()

	select {
	case <-bridge.started:
	case <-time.After(5 * time.Second):
		t.Fatal("analysis did not start")
	}

	assert.True(t, s.State().Busy)
	assert.False(t, s.CanAnalyze())
	_, err := s.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(bridge.release)
	require.NoError(t, <-done)
	assert.False(t, s.State().Busy)
	assert.Equal(t, 1, bridge.calls)
}
