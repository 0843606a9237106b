package object

// Client constructs objects against a Storage. Construction itself is
// in-memory; the storage is consulted only when an argument arrives as an
// id-only handle whose payload is needed (for example merging a loaded
// directory or sizing an unloaded blob child).
type Client struct {
	storage Storage
}

// NewClient returns a Client backed by s.
func NewClient(s Storage) *Client {
	return &Client{storage: s}
}

// Storage returns the client's backing storage.
func (c *Client) Storage() Storage {
	return c.storage
}
