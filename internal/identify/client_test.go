package identify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "go-tree-inspector/internal/errors"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Expected multipart form, got %v", err)
		} else {
			if got := r.FormValue("organs"); got != OrganBark {
				t.Errorf("Expected organs=bark, got %q", got)
			}
			file, header, err := r.FormFile("images")
			if err != nil {
				t.Errorf("Expected images file, got %v", err)
			} else {
				data, _ := io.ReadAll(file)
				if string(data) != "photo-bytes" {
					t.Errorf("Unexpected upload %q", data)
				}
				if header.Filename != "oak.jpg" {
					t.Errorf("Unexpected filename %q", header.Filename)
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
}

func TestPlantIDClient_Identify(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"suggestions":[
		{"plant_name":"Quercus robur","probability":0.91,"plant_details":{"wiki_url":"https://en.wikipedia.org/wiki/Quercus_robur"}},
		{"plant_name":"Quercus petraea","probability":0.05,"plant_details":{"wiki_url":"https://en.wikipedia.org/wiki/Quercus_petraea"}}
	]}`)
	defer server.Close()

	client := NewPlantIDClient(server.Client(), server.URL, "test-key")
	got, err := client.Identify(context.Background(), []byte("photo-bytes"), "oak.jpg")
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	if got.Name != "Quercus robur" {
		t.Errorf("Expected top suggestion, got %s", got.Name)
	}
	if got.ReferenceURL != "https://en.wikipedia.org/wiki/Quercus_robur" {
		t.Errorf("Unexpected reference URL %s", got.ReferenceURL)
	}
	if got.Probability != 0.91 {
		t.Errorf("Unexpected probability %v", got.Probability)
	}
}

func TestPlantIDClient_NoSuggestions(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"suggestions":[]}`)
	defer server.Close()

	_, err := NewPlantIDClient(server.Client(), server.URL, "test-key").
		Identify(context.Background(), []byte("photo-bytes"), "oak.jpg")
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("Expected ErrNoMatch, got %v", err)
	}
}

func TestPlantIDClient_StatusError(t *testing.T) {
	server := newTestServer(t, http.StatusTooManyRequests, `{"error":"quota exceeded"}`)
	defer server.Close()

	_, err := NewPlantIDClient(server.Client(), server.URL, "test-key").
		Identify(context.Background(), []byte("photo-bytes"), "oak.jpg")

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %v", err)
	}
	if appErr.Message != "API Error: 429" {
		t.Errorf("Unexpected message %q", appErr.Message)
	}
	if appErr.Details != `{"error":"quota exceeded"}` {
		t.Errorf("Unexpected details %q", appErr.Details)
	}
}

func TestPlantIDClient_BadJSON(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `<html>`)
	defer server.Close()

	_, err := NewPlantIDClient(server.Client(), server.URL, "test-key").
		Identify(context.Background(), []byte("photo-bytes"), "oak.jpg")
	if !apperrors.IsType(err, apperrors.ErrorTypeProcessing) {
		t.Errorf("Expected processing error, got %v", err)
	}
}

func TestPlantIDClient_MissingKey(t *testing.T) {
	client := NewPlantIDClient(http.DefaultClient, "http://127.0.0.1:1", "  ")
	_, err := client.Identify(context.Background(), []byte("x"), "x.png")
	if !apperrors.IsType(err, apperrors.ErrorTypeUnavailable) {
		t.Errorf("Expected unavailable error, got %v", err)
	}
}

func TestPlantIDClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewPlantIDClient(server.Client(), server.URL, "test-key").Identify(ctx, []byte("x"), "")
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}
