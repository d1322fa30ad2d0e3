// Package client is a minimal synchronous RESP client: dial an address,
// send one command, read one reply. Used by the root redikv CLI and by
// tests that drive the server end-to-end without a subprocess.
package client

import (
	"fmt"
	"net"
	"time"

	"github.com/mickamy/redikv/internal/resp"
)

// Client is a single persistent connection to a redikv server.
type Client struct {
	conn   net.Conn
	reader *resp.ConnectionReader
}

// Dial connects to addr and returns a ready-to-use Client.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: dialing %s: %w", addr, err)
	}
	return &Client{conn: conn, reader: resp.NewConnectionReader(conn)}, nil
}

// SetDeadline forwards to the underlying connection; used by callers that
// want a bounded Do.
func (c *Client) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// Do sends words as a single RESP Array of BulkStrings and returns the
// server's one reply frame.
func (c *Client) Do(words ...string) (resp.Frame, error) {
	elems := make([]resp.Frame, len(words))
	for i, w := range words {
		elems[i] = resp.NewBulkStringFromText(w)
	}
	if _, err := c.conn.Write(resp.Encode(resp.NewArray(elems...))); err != nil {
		return resp.Frame{}, fmt.Errorf("client: write: %w", err)
	}

	frame, err := c.reader.ReadFrame()
	if err != nil {
		return resp.Frame{}, fmt.Errorf("client: read reply: %w", err)
	}
	return frame, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
