package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hrmsync/internal/requestctx"
)

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Fatal("expected request id in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}

func TestRequestIDKeepsClientValue(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "client-123" || rec.Header().Get(RequestIDHeader) != "client-123" {
		t.Fatalf("expected client id to be echoed, got %q", seen)
	}
}

func TestRequestIDReplacesMalformedValue(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen == "" || seen == "bad id" {
		t.Fatalf("expected a generated id, got %q", seen)
	}
}

func TestRequestIDKeepsBatchID(t *testing.T) {
	var batch string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batch = GetBatchID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(requestctx.BatchIDHeader, "batch-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if batch != "batch-7" {
		t.Fatalf("expected batch id, got %q", batch)
	}
}
