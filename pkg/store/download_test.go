package store

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDownload(t *testing.T) {
	body := []byte("release tarball bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	checksum, err := Checksum(ChecksumSHA256, body)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	s := NewMemory()
	d := NewDownloader(WithHTTPClient(srv.Client()), WithLogger(discardLogger()))
	blob, err := d.Download(ctx, s, srv.URL, checksum)
	if err != nil {
		t.Fatal(err)
	}
	data, err := blob.Bytes(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(body) {
		t.Errorf("got %q", data)
	}
}

func TestDownloadChecksumMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("unexpected content"))
	}))
	defer srv.Close()

	checksum, err := Checksum(ChecksumSHA256, []byte("expected content"))
	if err != nil {
		t.Fatal(err)
	}

	d := NewDownloader(WithHTTPClient(srv.Client()), WithLogger(discardLogger()))
	if _, err := d.Download(context.Background(), NewMemory(), srv.URL, checksum); err == nil {
		t.Error("want error for checksum mismatch")
	}
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	body := []byte("eventually available")
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "try later", http.StatusInternalServerError)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	checksum, err := Checksum(ChecksumBlake3, body)
	if err != nil {
		t.Fatal(err)
	}

	d := NewDownloader(WithHTTPClient(srv.Client()), WithAttempts(5),
		WithBackoff(time.Millisecond), WithLogger(discardLogger()))
	blob, err := d.Download(context.Background(), NewMemory(), srv.URL, checksum)
	if err != nil {
		t.Fatal(err)
	}
	if blob == nil {
		t.Fatal("no blob")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestDownloadDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader(WithHTTPClient(srv.Client()), WithAttempts(5), WithLogger(discardLogger()))
	if _, err := d.Download(context.Background(), NewMemory(), srv.URL, "sha256:00"); err == nil {
		t.Error("want error for 404")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 4xx)", got)
	}
}

func TestDownloadExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDownloader(WithHTTPClient(srv.Client()), WithAttempts(2),
		WithBackoff(time.Millisecond), WithLogger(discardLogger()))
	if _, err := d.Download(context.Background(), NewMemory(), srv.URL, "sha256:00"); err == nil {
		t.Error("want error after exhausting attempts")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
}
