package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"contract-console/internal/shared/metrics"
)

const (
	fetchPath       = "/api/documents/"
	uploadPath      = "/upload-pdf"
	uploadFieldName = "file"
	pdfContentType  = "application/pdf"
	maxErrorBody    = 64 << 10
)

// Client talks to the analysis backend. It performs no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a backend client. A non-positive timeout disables the
// per-call deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout < 0 {
		timeout = 0
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch retrieves the current record for a document.
func (c *Client) Fetch(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrInvalidID
	}
	start := time.Now()
	defer func() {
		metrics.ObserveFetchDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fetchPath+url.PathEscape(id), nil)
	if err != nil {
		return Record{}, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("%w: fetch document %s: %v", ErrTransport, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Record{}, rejection(resp)
	}

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("%w: decode document %s: %v", ErrTransport, id, err)
	}
	return rec, nil
}

// Upload sends one PDF as the multipart field "file".
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, uploadFieldName, escapeQuotes(filename)))
	header.Set("Content-Type", pdfContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: create form part: %v", ErrTransport, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResult{}, fmt.Errorf("%w: read upload: %v", ErrTransport, err)
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("%w: close form: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: upload %s: %v", ErrTransport, filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, rejection(resp)
	}

	var out UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return UploadResult{}, fmt.Errorf("%w: decode upload response: %v", ErrTransport, err)
	}
	if out.DocumentID == "" {
		return UploadResult{}, fmt.Errorf("%w: upload response missing document_id", ErrTransport)
	}
	if out.Filename == "" {
		out.Filename = filename
	}
	return out, nil
}

func rejection(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Message: serverMessage(raw)}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
