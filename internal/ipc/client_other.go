//go:build !windows

package ipc

import "github.com/ramensoftware/windhawk-go/api"

// Client is the non-Windows stub.
type Client struct{}

func Dial(pid uint32) (*Client, error) { return nil, api.ErrUnsupportedPlatform }

func (c *Client) Call(cmd Command) (Response, error) { return Response{}, api.ErrUnsupportedPlatform }

func (c *Client) Close() error { return api.ErrUnsupportedPlatform }
