package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/weftbuild/weft/pkg/object"
)

// Downloader fetches external content into blobs. The zero value is not
// usable; create one with NewDownloader.
type Downloader struct {
	client   *http.Client
	attempts int
	backoff  time.Duration
	log      *slog.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) { d.client = c }
}

// WithAttempts sets the maximum number of attempts per download.
func WithAttempts(n int) DownloaderOption {
	return func(d *Downloader) { d.attempts = n }
}

// WithBackoff sets the initial retry backoff; it doubles per retry.
func WithBackoff(d time.Duration) DownloaderOption {
	return func(dl *Downloader) { dl.backoff = d }
}

// WithLogger sets the logger for retry reporting.
func WithLogger(log *slog.Logger) DownloaderOption {
	return func(d *Downloader) { d.log = log }
}

// NewDownloader creates a Downloader with up to three attempts per
// download by default.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client:   http.DefaultClient,
		attempts: 3,
		backoff:  time.Second,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches the URL, verifies the content against the expected
// checksum ("algorithm:hexdigest"), and returns it as a blob. Network
// errors, HTTP 429, and HTTP 5xx responses are retried with exponential
// backoff; 4xx client errors are not.
func (d *Downloader) Download(ctx context.Context, s object.Storage, url, checksum string) (*object.Blob, error) {
	data, err := d.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	if err := VerifyChecksum(checksum, data); err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	return object.NewClient(s).NewBlob(ctx, object.Bytes(data))
}

func (d *Downloader) fetch(ctx context.Context, url string) ([]byte, error) {
	backoff := d.backoff
	var lastErr error
	for attempt := 0; attempt < d.attempts; attempt++ {
		if attempt > 0 {
			d.log.Warn("download retry", "url", url, "attempt", attempt+1, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
		data, retryable, err := d.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (d *Downloader) fetchOnce(ctx context.Context, url string) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, true, fmt.Errorf("status %s", resp.Status)
	default:
		return nil, false, fmt.Errorf("status %s", resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, true, err
	}
	return buf.Bytes(), false, nil
}
