package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"contract-console/internal/documents"
	"contract-console/internal/shared/config"
)

var fakePDF = []byte("%PDF-1.4\n% not a real document\n")

type fakeSubmitter struct {
	mu    sync.Mutex
	calls int
	names []string
	body  []byte
	res   documents.UploadResult
	err   error
}

func (f *fakeSubmitter) Upload(ctx context.Context, filename string, r io.Reader) (documents.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.names = append(f.names, filename)
	f.body, _ = io.ReadAll(r)
	return f.res, f.err
}

func (f *fakeSubmitter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newService(sub Submitter) *Service {
	return &Service{Client: sub, MaxBytes: 1 << 10, Texts: config.DefaultTexts()}
}

func TestInspectValidation(t *testing.T) {
	svc := newService(&fakeSubmitter{})

	cases := []struct {
		name     string
		declared string
		body     []byte
		err      error
	}{
		{"declared text", "text/plain", fakePDF, ErrNotPDF},
		{"spoofed type", "application/pdf", []byte("just some text"), ErrNotPDF},
		{"too large", "application/pdf", append(append([]byte{}, fakePDF...), bytes.Repeat([]byte("x"), 2<<10)...), ErrTooLarge},
	}
	for _, tc := range cases {
		_, err := svc.Inspect("contract.pdf", tc.declared, bytes.NewReader(tc.body))
		if !errors.Is(err, tc.err) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.err, err)
		}
	}

	sel, err := svc.Inspect(`C:\docs\lease.pdf`, "application/pdf", bytes.NewReader(fakePDF))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if sel.Filename != `C:\docs\lease.pdf` || sel.UploadName != "lease.pdf" || sel.Size != int64(len(fakePDF)) {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestSubmitKeepsSelectedFilenameForNavigation(t *testing.T) {
	sub := &fakeSubmitter{res: documents.UploadResult{DocumentID: "42"}}
	svc := newService(sub)
	sel, err := svc.Inspect("Lease\x07 2024.pdf", "application/pdf", bytes.NewReader(fakePDF))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	out, err := svc.Submit(context.Background(), sel)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Filename != "Lease\x07 2024.pdf" {
		t.Fatalf("outcome should carry the selected name, got %q", out.Filename)
	}
	if len(sub.names) != 1 || sub.names[0] != "Lease 2024.pdf" {
		t.Fatalf("backend should receive the cleaned name, got %q", sub.names)
	}
}

func TestSubmitOutcomes(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		success bool
		message string
	}{
		{"accepted", nil, true, ""},
		{"server message", &documents.StatusError{Code: 400, Message: "File too large"}, false, "File too large"},
		{"no server message", &documents.StatusError{Code: 500}, false, "Upload failed"},
		{"transport", fmt.Errorf("%w: dial tcp: refused", documents.ErrTransport), false, "Failed to connect to server"},
	}
	for _, tc := range cases {
		sub := &fakeSubmitter{res: documents.UploadResult{DocumentID: "42", Filename: "lease.pdf"}, err: tc.err}
		svc := newService(sub)
		sel, err := svc.Inspect("lease.pdf", "application/pdf", bytes.NewReader(fakePDF))
		if err != nil {
			t.Fatalf("%s: inspect: %v", tc.name, err)
		}

		out, err := svc.Submit(context.Background(), sel)
		if out.Success != tc.success {
			t.Fatalf("%s: expected success=%v, got %+v", tc.name, tc.success, out)
		}
		if tc.success {
			if err != nil || out.DocumentID != "42" || out.Filename != "lease.pdf" {
				t.Fatalf("%s: unexpected outcome %+v err=%v", tc.name, out, err)
			}
			if !bytes.Equal(sub.body, fakePDF) {
				t.Fatalf("%s: file body not forwarded", tc.name)
			}
			continue
		}
		if err == nil || out.Error != tc.message {
			t.Fatalf("%s: expected error %q, got %+v err=%v", tc.name, tc.message, out, err)
		}
	}
}
