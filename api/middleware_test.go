package api

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
)

func gzipBody(t *testing.T, payload string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte(payload)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return &buf
}

func TestGzipRequestMiddleware(t *testing.T) {
	repo := &mockRepo{}
	e := echo.New()
	e.JSONSerializer = SonicSerializer{}
	e.Use(GzipRequestMiddleware())
	logger, _ := test.NewNullLogger()
	Register(e, repo, mockAuth{}, logger)

	body := gzipBody(t, `{"title":"Compressed","priority":"Low","category":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(repo.tasks) != 1 || repo.tasks[0].Title != "Compressed" {
		t.Fatalf("unexpected stored tasks: %+v", repo.tasks)
	}
}

func TestGzipRequestMiddlewareInvalidPayload(t *testing.T) {
	e := echo.New()
	e.Use(GzipRequestMiddleware())
	logger, _ := test.NewNullLogger()
	Register(e, &mockRepo{}, mockAuth{}, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString("not gzip"))
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGzipRequestMiddlewarePassThrough(t *testing.T) {
	repo := &mockRepo{}
	e := echo.New()
	e.JSONSerializer = SonicSerializer{}
	e.Use(GzipRequestMiddleware())
	logger, _ := test.NewNullLogger()
	Register(e, repo, mockAuth{}, logger)

	rec := doRequest(e, http.MethodPost, "/api/tasks", `{"title":"Plain","priority":"Low","category":""}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHasGzipEncoding(t *testing.T) {
	tests := map[string]bool{
		"":               false,
		"gzip":           true,
		"GZIP":           true,
		"br, gzip":       true,
		"deflate":        false,
		" gzip ":         true,
		"gzip, identity": true,
	}
	for header, want := range tests {
		if got := hasGzipEncoding(header); got != want {
			t.Fatalf("hasGzipEncoding(%q) = %v, want %v", header, got, want)
		}
	}
}
