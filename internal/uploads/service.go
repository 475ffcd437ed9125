package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"contract-console/internal/documents"
	"contract-console/internal/extract"
	"contract-console/internal/shared/config"
	"contract-console/internal/shared/metrics"
	"contract-console/internal/shared/telemetry"
	"contract-console/internal/shared/util"
)

const genericUploadError = "Upload failed"

var (
	ErrNoFile        = errors.New("no file selected")
	ErrMultipleFiles = errors.New("exactly one file may be uploaded")
	ErrNotPDF        = errors.New("file is not a pdf")
	ErrTooLarge      = errors.New("file exceeds upload limit")
)

// Submitter sends an accepted selection to the backend.
type Submitter interface {
	Upload(ctx context.Context, filename string, r io.Reader) (documents.UploadResult, error)
}

// Selection is a validated PDF ready to be submitted.
type Selection struct {
	// Filename is the name as the user selected it; it is what the next view
	// shows.
	Filename string
	// UploadName is the cleaned name used in the multipart header.
	UploadName string
	Size       int64
	Pages      int
	data       []byte
}

// Outcome is the result of one submit.
type Outcome struct {
	Success    bool   `json:"success"`
	Filename   string `json:"filename,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	Pages      int    `json:"pages,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Service validates and submits uploads.
type Service struct {
	Client   Submitter
	MaxBytes int64
	Texts    config.Texts
}

// NewService wires an upload service.
func NewService(cfg config.Config, client Submitter) *Service {
	return &Service{Client: client, MaxBytes: cfg.MaxUploadBytes, Texts: cfg.Texts}
}

// Inspect validates a selection before anything goes over the network.
func (s *Service) Inspect(filename, declaredType string, r io.Reader) (Selection, error) {
	if !extract.DeclaredPDF(declaredType) {
		return Selection{}, ErrNotPDF
	}
	name, err := util.SanitizeFileName(filename)
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %v", ErrNoFile, err)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return Selection{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.MaxBytes {
		return Selection{}, ErrTooLarge
	}
	if !extract.SniffPDF(data) {
		return Selection{}, ErrNotPDF
	}

	sel := Selection{
		Filename:   filename,
		UploadName: name,
		Size:       int64(len(data)),
		data:       data,
	}
	info, err := extract.Inspect(data)
	if err != nil {
		telemetry.Warn("uploads.inspect.failed", map[string]any{
			"filename": name,
			"err":      err.Error(),
		})
	} else {
		sel.Pages = info.Pages
	}
	return sel, nil
}

// Submit uploads a selection. The returned outcome is always usable for
// display; err carries the underlying cause on failure.
func (s *Service) Submit(ctx context.Context, sel Selection) (Outcome, error) {
	uploadName := sel.UploadName
	if uploadName == "" {
		uploadName = sel.Filename
	}
	res, err := s.Client.Upload(ctx, uploadName, bytes.NewReader(sel.data))
	if err != nil {
		metrics.IncUploadFailed()
		msg := documents.RejectionMessage(err)
		if msg == "" {
			if errors.Is(err, documents.ErrTransport) {
				msg = s.Texts.ConnectionError()
			} else {
				msg = genericUploadError
			}
		}
		telemetry.Warn("uploads.submit.failed", map[string]any{
			"filename": sel.Filename,
			"size":     sel.Size,
			"err":      err.Error(),
		})
		return Outcome{Success: false, Filename: sel.Filename, Error: msg}, err
	}

	metrics.IncUploadSubmitted()
	telemetry.Info("uploads.submit.ok", map[string]any{
		"filename":    sel.Filename,
		"size":        sel.Size,
		"pages":       sel.Pages,
		"document_id": res.DocumentID.String(),
	})
	return Outcome{
		Success:    true,
		Filename:   sel.Filename,
		DocumentID: res.DocumentID.String(),
		Pages:      sel.Pages,
	}, nil
}
