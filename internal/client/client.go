// Package client is a small synchronous client for the memkv wire protocol.
package client

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"

	"github.com/ananthvk/memkv/internal/resp"
)

var ErrNoCommand = errors.New("client: no command given")

// Client sends one request at a time over a single connection. It is not safe
// for concurrent use.
type Client struct {
	conn    io.ReadWriteCloser
	decoder *resp.Decoder
	writer  *bufio.Writer
}

// Dial connects to the server at addr
func Dial(ctx context.Context, addr string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// New wraps an established connection
func New(conn io.ReadWriteCloser) *Client {
	return &Client{
		conn:    conn,
		decoder: resp.NewDecoder(conn),
		writer:  bufio.NewWriter(conn),
	}
}

// Do sends the command made of args, each as a bulk string, and waits for the
// reply. Error replies are returned as values, a non-nil error means the
// connection is unusable.
func (c *Client) Do(args ...string) (resp.Value, error) {
	values := make([]resp.Value, len(args))
	for i, arg := range args {
		values[i] = resp.BulkStringFromString(arg)
	}
	return c.DoValues(values...)
}

// DoValues is like Do but sends the arguments as given
func (c *Client) DoValues(args ...resp.Value) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, ErrNoCommand
	}
	if err := resp.Serialize(resp.Array(args...), c.writer); err != nil {
		return resp.Value{}, err
	}
	if err := c.writer.Flush(); err != nil {
		return resp.Value{}, err
	}
	return c.decoder.Next()
}

func (c *Client) Close() error {
	return c.conn.Close()
}
