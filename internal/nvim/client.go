// Package nvim is a small typed client for the Neovim API calls the
// picomap server needs.
package nvim

import (
	"context"
	"fmt"
)

// Caller issues a request and decodes its result. *rpc.Conn satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, result any, args ...any) error
}

// Client wraps a Caller with typed API methods.
type Client struct {
	c Caller
}

// NewClient returns a client issuing requests through c.
func NewClient(c Caller) *Client {
	return &Client{c: c}
}

// WindowConfig is the float configuration accepted by nvim_open_win and
// nvim_win_set_config.
type WindowConfig struct {
	Relative  string `msgpack:"relative"`
	Anchor    string `msgpack:"anchor,omitempty"`
	Width     int    `msgpack:"width"`
	Height    int    `msgpack:"height"`
	Row       int    `msgpack:"row"`
	Col       int    `msgpack:"col"`
	Focusable bool   `msgpack:"focusable"`
	Style     string `msgpack:"style,omitempty"`
}

// Mode is the result of nvim_get_mode.
type Mode struct {
	Mode     string `msgpack:"mode"`
	Blocking bool   `msgpack:"blocking"`
}

// Visual reports whether the mode is characterwise, linewise or blockwise
// visual mode.
func (m Mode) Visual() bool {
	switch m.Mode {
	case "v", "V", "\x16":
		return true
	}
	return false
}

// CurrentWindow returns the current window.
func (c *Client) CurrentWindow(ctx context.Context) (Window, error) {
	var w Window
	err := c.c.Call(ctx, "nvim_get_current_win", &w)
	return w, err
}

// SetCurrentWindow makes win the current window.
func (c *Client) SetCurrentWindow(ctx context.Context, win Window) error {
	return c.c.Call(ctx, "nvim_set_current_win", nil, &win)
}

// CurrentBuffer returns the current buffer.
func (c *Client) CurrentBuffer(ctx context.Context) (Buffer, error) {
	var b Buffer
	err := c.c.Call(ctx, "nvim_get_current_buf", &b)
	return b, err
}

// BufferLineCount returns the number of lines in buf.
func (c *Client) BufferLineCount(ctx context.Context, buf Buffer) (int, error) {
	return c.callInt(ctx, "nvim_buf_line_count", &buf)
}

// WindowHeight returns the height of win in rows.
func (c *Client) WindowHeight(ctx context.Context, win Window) (int, error) {
	return c.callInt(ctx, "nvim_win_get_height", &win)
}

// WindowWidth returns the width of win in columns.
func (c *Client) WindowWidth(ctx context.Context, win Window) (int, error) {
	return c.callInt(ctx, "nvim_win_get_width", &win)
}

// WindowPosition returns the 0-based screen row and column of win.
func (c *Client) WindowPosition(ctx context.Context, win Window) (row, col int, err error) {
	return c.callPair(ctx, "nvim_win_get_position", &win)
}

// WindowCursor returns the cursor of win as a 1-based line and 0-based
// column.
func (c *Client) WindowCursor(ctx context.Context, win Window) (line, col int, err error) {
	return c.callPair(ctx, "nvim_win_get_cursor", &win)
}

// Eval evaluates a Vimscript expression into result.
func (c *Client) Eval(ctx context.Context, expr string, result any) error {
	return c.c.Call(ctx, "nvim_eval", result, expr)
}

// EvalInt evaluates a Vimscript expression that yields a number.
func (c *Client) EvalInt(ctx context.Context, expr string) (int, error) {
	var v int64
	if err := c.Eval(ctx, expr, &v); err != nil {
		return 0, err
	}
	return toInt(v)
}

// Var reads the global variable g:name into result.
func (c *Client) Var(ctx context.Context, name string, result any) error {
	return c.c.Call(ctx, "nvim_get_var", result, name)
}

// Mode returns the current editor mode.
func (c *Client) Mode(ctx context.Context) (Mode, error) {
	var m Mode
	err := c.c.Call(ctx, "nvim_get_mode", &m)
	return m, err
}

// CreateBuffer creates a new buffer.
func (c *Client) CreateBuffer(ctx context.Context, listed, scratch bool) (Buffer, error) {
	var b Buffer
	err := c.c.Call(ctx, "nvim_create_buf", &b, listed, scratch)
	return b, err
}

// SetBufferLines replaces the whole contents of buf with lines.
func (c *Client) SetBufferLines(ctx context.Context, buf Buffer, lines []string) error {
	if lines == nil {
		lines = []string{}
	}
	return c.c.Call(ctx, "nvim_buf_set_lines", nil, &buf, 0, -1, false, lines)
}

// OpenWindow opens a floating window showing buf.
func (c *Client) OpenWindow(ctx context.Context, buf Buffer, enter bool, cfg WindowConfig) (Window, error) {
	var w Window
	err := c.c.Call(ctx, "nvim_open_win", &w, &buf, enter, cfg)
	return w, err
}

// SetWindowConfig reconfigures a floating window.
func (c *Client) SetWindowConfig(ctx context.Context, win Window, cfg WindowConfig) error {
	return c.c.Call(ctx, "nvim_win_set_config", nil, &win, cfg)
}

// CloseWindow closes win.
func (c *Client) CloseWindow(ctx context.Context, win Window, force bool) error {
	return c.c.Call(ctx, "nvim_win_close", nil, &win, force)
}

// SetWindowOption sets a window-local option.
func (c *Client) SetWindowOption(ctx context.Context, win Window, name string, value any) error {
	return c.c.Call(ctx, "nvim_set_option_value", nil, name, value, map[string]any{"win": int64(win)})
}

// SetBufferOption sets a buffer-local option.
func (c *Client) SetBufferOption(ctx context.Context, buf Buffer, name string, value any) error {
	return c.c.Call(ctx, "nvim_set_option_value", nil, name, value, map[string]any{"buf": int64(buf)})
}

func (c *Client) callInt(ctx context.Context, method string, args ...any) (int, error) {
	var v int64
	if err := c.c.Call(ctx, method, &v, args...); err != nil {
		return 0, err
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", method, err)
	}
	return n, nil
}

func (c *Client) callPair(ctx context.Context, method string, args ...any) (int, int, error) {
	var pair []int64
	if err := c.c.Call(ctx, method, &pair, args...); err != nil {
		return 0, 0, err
	}
	if len(pair) != 2 {
		return 0, 0, fmt.Errorf("%s: expected 2 values, got %d", method, len(pair))
	}
	a, err := toInt(pair[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", method, err)
	}
	b, err := toInt(pair[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", method, err)
	}
	return a, b, nil
}
