package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"frisangecal/internal/config"
)

// fakeExtractor returns canned text and records what it was given.
type fakeExtractor struct {
	text     string
	err      error
	gotBytes []byte
	gotPath  string
}

func (f *fakeExtractor) FromBytes(ctx context.Context, data []byte) (string, error) {
	f.gotBytes = data
	return f.text, f.err
}

func (f *fakeExtractor) FromFile(ctx context.Context, path string) (string, error) {
	f.gotPath = path
	return f.text, f.err
}

func TestFetchOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()

	body, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL+"/cal.pdf")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "%PDF-1.4 body" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchBodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{"over limit", 8, true},
		{"exactly at limit", int64(len("%PDF-1.4 body")), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFetcher(time.Second)
			f.maxBody = tc.limit

			body, err := f.Fetch(context.Background(), srv.URL)
			if tc.wantErr {
				if !errors.Is(err, ErrFetch) {
					t.Fatalf("err = %v, want ErrFetch", err)
				}
				if body != nil {
					t.Errorf("truncated body returned: %q", body)
				}
				return
			}
			if err != nil || string(body) != "%PDF-1.4 body" {
				t.Errorf("Fetch = %q, %v", body, err)
			}
		})
	}
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewFetcher(50*time.Millisecond).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func TestFetchEmptyURL(t *testing.T) {
	if _, err := NewFetcher(time.Second).Fetch(context.Background(), ""); !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func TestRedactURL(t *testing.T) {
	tests := map[string]string{
		"https://frisange.lu/wp-content/uploads/cal.pdf?x=1": "https://frisange.lu/...(redacted)",
		"http://localhost:8080":                              "http://localhost:8080/...(redacted)",
		"not a url":                                          "...(redacted)",
	}
	for in, want := range tests {
		if got := redactURL(in); got != want {
			t.Errorf("redactURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTikaExtractor(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tika" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Accept") == "" {
			t.Error("missing Accept header")
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte("CALENDRIER ÉCOLOGIQUE 2023\n"))
	}))
	defer srv.Close()

	x := NewTikaExtractor(srv.URL+"/", time.Second)

	text, err := x.FromBytes(context.Background(), []byte("pdf-bytes"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if text != "CALENDRIER ÉCOLOGIQUE 2023\n" || gotBody != "pdf-bytes" {
		t.Errorf("text = %q, body = %q", text, gotBody)
	}

	path := filepath.Join(t.TempDir(), "cal.pdf")
	if err := os.WriteFile(path, []byte("file-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := x.FromFile(context.Background(), path); err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if gotBody != "file-bytes" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestTikaExtractorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unprocessable", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	x := NewTikaExtractor(srv.URL, time.Second)
	if _, err := x.FromBytes(context.Background(), []byte("x")); !errors.Is(err, ErrExtract) {
		t.Errorf("status error = %v, want ErrExtract", err)
	}
	if _, err := x.FromFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); !errors.Is(err, ErrExtract) {
		t.Errorf("missing file error = %v, want ErrExtract", err)
	}
}

func TestPDFExtractorRejectsNonPDF(t *testing.T) {
	var x PDFExtractor
	if _, err := x.FromBytes(context.Background(), []byte("this is definitely not a pdf document")); !errors.Is(err, ErrExtract) {
		t.Errorf("FromBytes err = %v, want ErrExtract", err)
	}
	if _, err := x.FromFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); !errors.Is(err, ErrExtract) {
		t.Errorf("FromFile err = %v, want ErrExtract", err)
	}
}

func TestNewAcquirer(t *testing.T) {
	cfg := config.Default()
	a, err := NewAcquirer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Extractor.(PDFExtractor); !ok {
		t.Errorf("default extractor = %T", a.Extractor)
	}

	cfg.Extractor = config.ExtractorTika
	a, err = NewAcquirer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Extractor.(*TikaExtractor); !ok {
		t.Errorf("tika extractor = %T", a.Extractor)
	}

	cfg.Extractor = "ocr"
	if _, err := NewAcquirer(cfg); err == nil {
		t.Error("expected error for unknown extractor")
	}
}

func TestAcquireFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("raw pdf"))
	}))
	defer srv.Close()

	fx := &fakeExtractor{text: "document text"}
	a := &Acquirer{Fetcher: NewFetcher(time.Second), Extractor: fx}

	cfg := config.Default()
	cfg.URL = srv.URL
	text, err := a.Acquire(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if text != "document text" || string(fx.gotBytes) != "raw pdf" {
		t.Errorf("text = %q, extractor got %q", text, fx.gotBytes)
	}
	if fx.gotPath != "" {
		t.Errorf("file path used in url mode: %q", fx.gotPath)
	}
}

func TestAcquireFromPath(t *testing.T) {
	fx := &fakeExtractor{text: "document text"}
	a := &Acquirer{Fetcher: NewFetcher(time.Second), Extractor: fx}

	cfg := config.Default()
	cfg.PDFPath = "/data/cal.pdf"
	if _, err := a.Acquire(context.Background(), cfg); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if fx.gotPath != "/data/cal.pdf" || fx.gotBytes != nil {
		t.Errorf("path = %q, bytes = %q", fx.gotPath, fx.gotBytes)
	}
}

func TestAcquireErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	fx := &fakeExtractor{err: ErrExtract}
	a := &Acquirer{Fetcher: NewFetcher(time.Second), Extractor: fx}

	cfg := config.Default()
	cfg.URL = srv.URL
	if _, err := a.Acquire(context.Background(), cfg); !errors.Is(err, ErrFetch) {
		t.Errorf("url err = %v, want ErrFetch", err)
	}
	if fx.gotBytes != nil {
		t.Error("extractor called after failed fetch")
	}

	cfg = config.Default()
	cfg.PDFPath = "cal.pdf"
	if _, err := a.Acquire(context.Background(), cfg); !errors.Is(err, ErrExtract) {
		t.Errorf("path err = %v, want ErrExtract", err)
	}

	if _, err := a.Acquire(context.Background(), config.Default()); err == nil {
		t.Error("expected error with no source")
	}
}
