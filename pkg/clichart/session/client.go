package session

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/clichart/pkg/clichart/config"
	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

// DefaultResponseTimeout bounds the wait for each answer from the server.
const DefaultResponseTimeout = 10 * time.Second

// ResponseError is an answer other than OK.
type ResponseError struct {
	Response string
}

func (e *ResponseError) Error() string { return e.Response }

// Is maps the answer's category back onto the sentinel errors.
func (e *ResponseError) Is(target error) bool {
	switch target {
	case internalerr.ErrInvalidOptions:
		return strings.HasPrefix(e.Response, "Invalid argument: ")
	case internalerr.ErrInvalidData:
		return strings.HasPrefix(e.Response, "Invalid data")
	}
	return false
}

// Client drives a chart server over one connection, so that many charts
// can be made without starting a process for each.
type Client struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
}

// Dial connects to a chart server and waits for its greeting. A zero
// timeout means DefaultResponseTimeout.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c, err := NewClient(ctx, conn, timeout)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient wraps an open connection and reads the greeting.
func NewClient(ctx context.Context, conn net.Conn, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}
	c := &Client{conn: conn, r: bufio.NewReader(conn), timeout: timeout}
	if err := c.exchange(ctx, ""); err != nil {
		return nil, err
	}
	return c, nil
}

// Command sends one command and waits for OK.
func (c *Client) Command(ctx context.Context, command, arg string) error {
	line := command
	if arg != "" {
		line += " " + arg
	}
	return c.exchange(ctx, line)
}

// Generate makes one chart. Settings are option names, long or short, with
// their arguments; a flag is sent only when its argument is empty or true.
// With clearFirst the server's options are reset beforehand, otherwise the
// settings add to those of earlier calls.
func (c *Client) Generate(ctx context.Context, settings []config.Setting, clearFirst bool) error {
	if clearFirst {
		if err := c.Command(ctx, "clear", ""); err != nil {
			return err
		}
	}
	for _, s := range settings {
		def, ok := config.Lookup(s.Name)
		if !ok {
			return &config.OptionsError{Msg: "Unrecognised option: " + s.Name}
		}
		arg := s.Arg
		if !def.Kind.TakesArg() {
			if on, err := strconv.ParseBool(arg); arg != "" && (err != nil || !on) {
				continue
			}
			arg = ""
		}
		if err := c.Command(ctx, def.Name(), arg); err != nil {
			return err
		}
	}
	return c.Command(ctx, "go", "")
}

// SetServerTimeout asks the server to end the session after this long
// without a command.
func (c *Client) SetServerTimeout(ctx context.Context, d time.Duration) error {
	return c.Command(ctx, "timeout", strconv.Itoa(int(d/time.Second)))
}

// Close says quit and closes the connection.
func (c *Client) Close() error {
	c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	fmt.Fprintln(c.conn, "quit")
	return c.conn.Close()
}

// exchange sends line, unless empty, and reads one answer.
func (c *Client) exchange(ctx context.Context, line string) error {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { c.conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	if line != "" {
		if _, err := fmt.Fprintln(c.conn, line); err != nil {
			return c.wrap(ctx, err)
		}
	}
	resp, err := c.r.ReadString('\n')
	if err != nil {
		return c.wrap(ctx, fmt.Errorf("no response received: %w", err))
	}
	resp = strings.TrimSpace(resp)
	if !strings.HasPrefix(resp, responseOK) {
		return &ResponseError{Response: resp}
	}
	return nil
}

func (c *Client) wrap(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
