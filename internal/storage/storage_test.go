package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "go-tree-inspector/internal/errors"
)

func TestHTTPImageFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		maxSize  int64
		wantErr  apperrors.ErrorType
		wantBody string
	}{
		{name: "ok", status: http.StatusOK, body: "PNGDATA", wantBody: "PNGDATA"},
		{name: "not found", status: http.StatusNotFound, wantErr: apperrors.ErrorTypeNotFound},
		{name: "forbidden", status: http.StatusForbidden, wantErr: apperrors.ErrorTypeNetwork},
		{name: "server error", status: http.StatusServiceUnavailable, wantErr: apperrors.ErrorTypeNetwork},
		{name: "too large", status: http.StatusOK, body: strings.Repeat("x", 64), maxSize: 16, wantErr: apperrors.ErrorTypeValidation},
		{name: "exactly at limit", status: http.StatusOK, body: strings.Repeat("x", 16), maxSize: 16, wantBody: strings.Repeat("x", 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			fetcher := NewHTTPImageFetcher(NewHTTPClient(5*time.Second), tt.maxSize)
			data, err := fetcher.Fetch(context.Background(), server.URL+"/bark.png")

			if requests != 1 {
				t.Errorf("Expected exactly one request, got %d", requests)
			}
			if tt.wantErr != "" {
				if !apperrors.IsType(err, tt.wantErr) {
					t.Fatalf("Expected %s error, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error %v", err)
			}
			if string(data) != tt.wantBody {
				t.Errorf("Expected body %q, got %q", tt.wantBody, data)
			}
		})
	}
}

func TestHTTPImageFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	fetcher := NewHTTPImageFetcher(NewHTTPClient(5*time.Second), 0)
	_, err := fetcher.Fetch(ctx, server.URL)
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestURLSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("img"))
	}))
	defer server.Close()

	src := NewURLSource(NewHTTPImageFetcher(server.Client(), 0), server.URL+"/oak.jpg")
	data, err := src.Acquire(context.Background())
	if err != nil || string(data) != "img" {
		t.Fatalf("Unexpected result %q, %v", data, err)
	}
	if !strings.HasPrefix(src.Describe(), "url:") {
		t.Errorf("Unexpected description %s", src.Describe())
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.png")
	if err := os.WriteFile(path, []byte("0123456789"), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := NewFileSource(path, 0).Acquire(context.Background())
	if err != nil || string(data) != "0123456789" {
		t.Fatalf("Unexpected result %q, %v", data, err)
	}

	if _, err := NewFileSource(path, 4).Acquire(context.Background()); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected size validation error, got %v", err)
	}

	_, err = NewFileSource(filepath.Join(dir, "missing.png"), 0).Acquire(context.Background())
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestBytesSource_RespectsCancelledContext(t *testing.T) {
	src := NewBytesSource("bark.jpg", []byte("abc"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	data, err := src.Acquire(context.Background())
	if err != nil || string(data) != "abc" {
		t.Errorf("Unexpected result %q, %v", data, err)
	}
	if src.Describe() != "upload:bark.jpg" {
		t.Errorf("Unexpected description %s", src.Describe())
	}
}

func TestParseBlobRef(t *testing.T) {
	tests := []struct {
		ref           string
		container     string
		blob          string
		expectInvalid bool
	}{
		{ref: "field-photos/2026/oak.jpg", container: "field-photos", blob: "2026/oak.jpg"},
		{ref: "/photos/a.png", container: "photos", blob: "a.png"},
		{ref: "photos", expectInvalid: true},
		{ref: "photos/", expectInvalid: true},
		{ref: "", expectInvalid: true},
	}

	for _, tt := range tests {
		c, b, err := ParseBlobRef(tt.ref)
		if tt.expectInvalid {
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error for %q, got %v", tt.ref, err)
			}
			continue
		}
		if err != nil || c != tt.container || b != tt.blob {
			t.Errorf("ParseBlobRef(%q) = %q, %q, %v", tt.ref, c, b, err)
		}
	}
}

func TestAzureBlobStore_Get(t *testing.T) {
	var gotContainer, gotBlob string
	store := &AzureBlobStore{
		open: func(ctx context.Context, container, blob string) (io.ReadCloser, error) {
			gotContainer, gotBlob = container, blob
			if blob == "missing.jpg" {
				return nil, errors.New("BlobNotFound")
			}
			return io.NopCloser(bytes.NewReader([]byte("blobdata"))), nil
		},
	}

	src, err := NewBlobSource(store, "photos/beech.jpg")
	if err != nil {
		t.Fatal(err)
	}
	data, err := src.Acquire(context.Background())
	if err != nil || string(data) != "blobdata" {
		t.Fatalf("Unexpected result %q, %v", data, err)
	}
	if gotContainer != "photos" || gotBlob != "beech.jpg" {
		t.Errorf("Unexpected blob address %s/%s", gotContainer, gotBlob)
	}
	if src.Describe() != "azure:photos/beech.jpg" {
		t.Errorf("Unexpected description %s", src.Describe())
	}

	if _, err := store.Get(context.Background(), "photos", "missing.jpg"); !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
		t.Errorf("Expected network error, got %v", err)
	}
}
