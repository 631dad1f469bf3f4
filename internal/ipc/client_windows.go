//go:build windows

package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	winio "github.com/Microsoft/go-winio"
)

// Client is a connection to a running engine session's IPC pipe, used by
// cmd/windhawkctl.
type Client struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

// Dial connects to the engine session owning pid.
func Dial(pid uint32) (*Client, error) {
	timeout := 2 * time.Second
	conn, err := winio.DialPipe(PipeName(pid), &timeout)
	if err != nil {
		return nil, fmt.Errorf("ipc: dialing %s: %w", PipeName(pid), err)
	}
	return &Client{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(bufio.NewReader(conn)),
	}, nil
}

// Call sends cmd and waits for its matching response.
func (c *Client) Call(cmd Command) (Response, error) {
	req := NewRequest(cmd)
	if err := c.enc.Encode(req); err != nil {
		return Response{}, fmt.Errorf("ipc: sending request: %w", err)
	}
	var resp Response
	if err := c.dec.Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("ipc: reading response: %w", err)
	}
	if resp.ID != req.ID {
		return Response{}, fmt.Errorf("ipc: response id %q does not match request id %q", resp.ID, req.ID)
	}
	return resp, nil
}

// Close releases the connection.
func (c *Client) Close() error { return c.conn.Close() }
