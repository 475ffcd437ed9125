package visualization

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"contract-console/internal/documents"
	"contract-console/internal/shared/server/views"
)

type fakeDocs struct {
	mu    sync.Mutex
	calls int
	rec   documents.Record
	err   error
}

func (f *fakeDocs) Fetch(ctx context.Context, id string) (documents.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.rec, f.err
}

func newRouter(docs Fetcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	views.Install(r)
	h := &Handler{Docs: docs, AppName: "Console", Location: time.UTC}
	h.RegisterRoutes(r)
	return r
}

func TestVisualizationRendersPanels(t *testing.T) {
	docs := &fakeDocs{rec: documents.Record{
		DocumentID:      "42",
		Status:          5,
		Filename:        "lease.pdf",
		ContractSummary: "Office lease.",
		EffectiveDates:  []string{"2023-01-15", "2024-01-15"},
	}}
	router := newRouter(docs)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/visualization/42", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{"Office lease.", "lease.pdf", "No compliance requirements found", "Contract Term", "2023-01-15 - 2024-01-15", "No risks identified"} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in page", want)
		}
	}
	if docs.calls != 1 {
		t.Fatalf("expected exactly one fetch, got %d", docs.calls)
	}
}

func TestVisualizationJSON(t *testing.T) {
	router := newRouter(&fakeDocs{rec: documents.Record{DocumentID: "42", Status: 5}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/visualization/42?format=json", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var m Model
	if err := json.Unmarshal(resp.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode model: %v", err)
	}
	if m.DocumentID != "42" || m.TimelineNote != "No date information available" {
		t.Fatalf("unexpected model: %+v", m)
	}
}

func TestVisualizationFetchError(t *testing.T) {
	router := newRouter(&fakeDocs{err: &documents.StatusError{Code: http.StatusNotFound, Message: "Document not found"}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/visualization/404", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "Error: Failed to fetch document data") {
		t.Fatalf("expected error text, got:\n%s", body)
	}
	if !strings.Contains(body, `href="/"`) {
		t.Fatalf("expected return home link")
	}
	if strings.Contains(body, "Contract Summary") {
		t.Fatalf("error view must not render panels")
	}
}

func TestVisualizationTransportErrorJSON(t *testing.T) {
	router := newRouter(&fakeDocs{err: documents.ErrTransport})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/visualization/1?format=json", nil))

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"code":"fetch_failed"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}
