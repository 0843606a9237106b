package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/weftbuild/weft/pkg/object"
	"github.com/weftbuild/weft/pkg/store"
)

// Client talks the object exchange protocol against a remote endpoint.
type Client struct {
	base string
	http *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientHTTP sets the HTTP client used for requests.
func WithClientHTTP(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// NewClient creates a Client for the given base URL, which must include
// a scheme and host.
func NewClient(base string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("remote URL %q must include scheme and host", base)
	}
	c := &Client{base: u.String(), http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) objectURL(id object.ID) string {
	return c.base + objectsPath + string(id)
}

// Has reports whether the remote holds the object.
func (c *Client) Has(ctx context.Context, id object.ID) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.objectURL(id), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("remote has %s: %w", id, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("remote has %s: status %s", id, resp.Status)
	}
}

// Get fetches and decodes one object.
func (c *Client) Get(ctx context.Context, id object.ID) (object.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote get %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("remote get %s: %w", id, object.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote get %s: status %s", id, resp.Status)
	}
	encoded, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote get %s: %w", id, err)
	}
	kind, err := id.Kind()
	if err != nil {
		return nil, err
	}
	if got := store.ComputeID(kind, encoded); got != id {
		return nil, fmt.Errorf("remote get %s: content hash mismatch (got %s)", id, got)
	}
	payload, err := store.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("remote get %s: %w", id, err)
	}
	return payload, nil
}

// Put encodes and uploads one object. The local storage supplies child
// ids during encoding.
func (c *Client) Put(ctx context.Context, s object.Storage, id object.ID, payload object.Payload) error {
	encoded, err := store.Encode(ctx, s, payload)
	if err != nil {
		return fmt.Errorf("remote put %s: %w", id, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(id), bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote put %s: %w", id, err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote put %s: status %s", id, resp.Status)
	}
	return nil
}
