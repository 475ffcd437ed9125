package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"contract-console/internal/shared/server/views"
	"contract-console/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	telemetry.Configure(&buf, "info")
	defer telemetry.Configure(os.Stdout, "info")

	router := gin.New()
	router.Use(RequestID(), Logging())
	router.GET("/loading/:documentId", func(c *gin.Context) {
		c.Set(DocumentIDKey, c.Param("documentId"))
		c.Set(ViewIDKey, "view-1")
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/loading/42", nil)
	req.Header.Set("X-Request-Id", "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "document_id", "view_id", "duration_ms", "status", "path"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["request_id"] != "req-123" {
		t.Fatalf("unexpected request_id: %v", payload["request_id"])
	}
	if payload["document_id"] != "42" {
		t.Fatalf("unexpected document_id: %v", payload["document_id"])
	}
	if payload["view_id"] != "view-1" {
		t.Fatalf("unexpected view_id: %v", payload["view_id"])
	}
}

func TestRequestIDGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	id := resp.Header().Get("X-Request-Id")
	if id == "" || id != resp.Body.String() {
		t.Fatalf("expected generated id in header and context, got %q / %q", id, resp.Body.String())
	}
}

func TestRecoveryRendersStandardError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	telemetry.Configure(&buf, "info")
	defer telemetry.Configure(os.Stdout, "info")

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "internal" {
		t.Fatalf("unexpected code: %s", body.Error.Code)
	}
	if !strings.Contains(buf.String(), `"msg":"panic"`) {
		t.Fatalf("expected panic log, got %s", buf.String())
	}
}

func TestRecoveryRendersErrorPageForBrowsers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	telemetry.Configure(&buf, "info")
	defer telemetry.Configure(os.Stdout, "info")

	router := gin.New()
	views.Install(router)
	router.Use(RequestID(), Recovery())
	router.GET("/visualization/:documentId", func(c *gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/visualization/7", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Error: Unexpected server error") {
		t.Fatalf("expected error page, got %s", resp.Body.String())
	}
	if !strings.Contains(buf.String(), `"document_id":"7"`) {
		t.Fatalf("expected document id in panic log, got %s", buf.String())
	}
}
