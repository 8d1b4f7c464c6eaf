package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPFetcherGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "ddimport-test" {
			t.Errorf("User-Agent = %q, want %q", got, "ddimport-test")
		}
		switch r.URL.Path {
		case "/index.php/catalog/ddi/42":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<codeBook ID="x"/>`))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("a", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second, MaxRetries: 1, UserAgent: "ddimport-test", MaxBytes: 32})

	data, err := f.Get(context.Background(), srv.URL+"/index.php/catalog/ddi/42")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != `<codeBook ID="x"/>` {
		t.Errorf("Get() = %q", data)
	}

	_, err = f.Get(context.Background(), srv.URL+"/missing")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Get(missing) error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusNotFound)
	}

	if _, err := f.Get(context.Background(), srv.URL+"/big"); err == nil {
		t.Error("Get(big) error = nil, want size error")
	}
}

func TestHTTPFetcherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second, MaxRetries: 1})
	if _, err := f.Get(context.Background(), srv.URL); err == nil {
		t.Error("Get() error = nil, want error for status 500")
	}
}

func TestHTTPFetcherBadURL(t *testing.T) {
	f := NewHTTPFetcher(Options{MaxRetries: 1})
	if _, err := f.Get(context.Background(), "://not a url"); err == nil {
		t.Error("Get() error = nil, want error")
	}
}
