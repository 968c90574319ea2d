package upload

import (
	"context"
	"errors"
	"sync"

	"github.com/helmcode/pestscan/pkg/model"
)

var (
	ErrNoPreview = errors.New("no photo selected")
	ErrBusy      = errors.New("analysis already in progress")
)

// Analyzer sends a data URL to the report bridge.
type Analyzer interface {
	Analyze(ctx context.Context, imageDataURL string) (*model.Report, error)
}

// State is a snapshot of a Session.
type State struct {
	Image  *Image
	Busy   bool
	Report *model.Report
	Error  string
}

// Session holds the uploader state: the current preview, the busy flag,
// and the outcome of the last action.
type Session struct {
	mu      sync.Mutex
	bridge  Analyzer
	maxSize int64

	image  *Image
	busy   bool
	report *model.Report
	err    string
}

func NewSession(bridge Analyzer, maxSize int64) *Session {
	return &Session{bridge: bridge, maxSize: maxSize}
}

// Pick selects a new photo. A rejected photo leaves the previous preview in
// place and records the error. An empty path is a cancelled selection.
func (s *Session) Pick(path string) error {
	s.mu.Lock()
	s.err = ""
	s.report = nil
	s.mu.Unlock()

	if path == "" {
		return nil
	}

	img, err := Load(path, s.maxSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.image = img
	return nil
}

// CanAnalyze reports whether a preview exists and nothing is in flight.
func (s *Session) CanAnalyze() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image != nil && !s.busy
}

// Analyze sends the current preview to the bridge and stores the outcome.
func (s *Session) Analyze(ctx context.Context) (*model.Report, error) {
	s.mu.Lock()
	if s.image == nil {
		s.mu.Unlock()
		return nil, ErrNoPreview
	}
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	s.err = ""
	s.report = nil
	dataURL := s.image.DataURL
	s.mu.Unlock()

	report, err := s.bridge.Analyze(ctx, dataURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.err = err.Error()
		return nil, err
	}
	s.report = report
	return report, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Image:  s.image,
		Busy:   s.busy,
		Report: s.report,
		Error:  s.err,
	}
}
