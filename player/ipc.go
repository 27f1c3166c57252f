// Package player drives the external playback engine: its process lifecycle and its JSON IPC channel.
package player

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/samber/mo"
)

// DefaultTimeout bounds every command round trip.
const DefaultTimeout = 2 * time.Second

// request is the JSON line sent to the engine.
type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// Response is one JSON reply line from the engine.
type Response struct {
	Data      any    `json:"data"`
	Error     string `json:"error"`
	Status    string `json:"status"`
	RequestID int64  `json:"request_id"`
	Event     string `json:"event"`
}

func (r *Response) failed() (string, bool) {
	if r.Status == "error" {
		if r.Error != "" {
			return r.Error, true
		}
		return "error", true
	}
	if r.Error != "" && r.Error != "success" {
		return r.Error, true
	}
	return "", false
}

// Conn is a persistent connection to the engine's IPC socket.
// Commands are serialized: one request is in flight at a time.
type Conn struct {
	path    string
	timeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	nextID int64
}

// NewConn returns a client for the socket at path. It connects lazily.
func NewConn(path string) *Conn {
	return &Conn{path: path, timeout: DefaultTimeout}
}

// Path returns the socket path.
func (c *Conn) Path() string {
	return c.path
}

// Close drops the underlying connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reset()
}

func (c *Conn) reset() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.reader = nil, nil
	return err
}

func (c *Conn) dial() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", c.path, c.timeout)
	if err != nil {
		return err
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Send issues one command and waits for its reply.
// A missing socket file fails with ErrEngineUnavailable before anything is sent.
// A connection closed without a reply counts as success with no data.
func (c *Conn) Send(args ...any) (*Response, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrCommandFailed)
	}
	verb := fmt.Sprint(args[0])

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.path); err != nil {
		_ = c.reset()
		return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, c.path)
	}

	if err := c.dial(); err != nil {
		return nil, fmt.Errorf("%w: %s: connect: %v", ErrCommandFailed, verb, err)
	}

	c.nextID++
	id := c.nextID

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: marshal: %v", ErrCommandFailed, verb, err)
	}

	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		_ = c.reset()
		return nil, fmt.Errorf("%w: %s: %v", ErrCommandFailed, verb, err)
	}

	if _, err := c.conn.Write(append(payload, '\n')); err != nil {
		_ = c.reset()
		return nil, fmt.Errorf("%w: %s: write: %v", ErrCommandFailed, verb, err)
	}

	for {
		line, err := c.reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)

		if err != nil && len(line) == 0 {
			_ = c.reset()
			if errors.Is(err, io.EOF) {
				return &Response{}, nil
			}
			return nil, fmt.Errorf("%w: %s: read: %v", ErrCommandFailed, verb, err)
		}
		if len(line) == 0 {
			continue
		}

		var resp Response
		if jsonErr := json.Unmarshal(line, &resp); jsonErr != nil {
			return nil, fmt.Errorf("%w: %s: %q", ErrProtocol, verb, string(line))
		}

		// Events and replies to abandoned requests share the stream.
		if resp.Event != "" || (resp.RequestID != 0 && resp.RequestID != id) {
			if err != nil {
				_ = c.reset()
				return &Response{}, nil
			}
			continue
		}

		if msg, failed := resp.failed(); failed {
			return &resp, &CommandError{Verb: verb, Message: msg}
		}
		return &resp, nil
	}
}

// GetProperty returns the property value, or None when the engine reports an error for it.
// Transport faults are still returned.
func (c *Conn) GetProperty(name string) (mo.Option[any], error) {
	resp, err := c.Send("get_property", name)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			return mo.None[any](), nil
		}
		return mo.None[any](), err
	}
	if resp.Data == nil {
		return mo.None[any](), nil
	}
	return mo.Some(resp.Data), nil
}

// SetProperty assigns a property value.
func (c *Conn) SetProperty(name string, value any) error {
	_, err := c.Send("set_property", name, value)
	return err
}

// FloatProperty reads a numeric property. Non-numeric values count as absent.
func FloatProperty(get func(string) (mo.Option[any], error), name string) (mo.Option[float64], error) {
	v, err := get(name)
	if err != nil {
		return mo.None[float64](), err
	}
	f, ok := v.OrEmpty().(float64)
	if !ok {
		return mo.None[float64](), nil
	}
	return mo.Some(f), nil
}

// BoolProperty reads a boolean property. Non-boolean values count as absent.
func BoolProperty(get func(string) (mo.Option[any], error), name string) (mo.Option[bool], error) {
	v, err := get(name)
	if err != nil {
		return mo.None[bool](), err
	}
	b, ok := v.OrEmpty().(bool)
	if !ok {
		return mo.None[bool](), nil
	}
	return mo.Some(b), nil
}
