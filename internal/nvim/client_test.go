package nvim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type call struct {
	method string
	args   []any
}

// fakeCaller answers calls from a canned table, round-tripping each result
// through msgpack the way a real connection would.
type fakeCaller struct {
	results map[string]any
	errs    map[string]error
	calls   []call
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{results: map[string]any{}, errs: map[string]error{}}
}

func (f *fakeCaller) Call(_ context.Context, method string, result any, args ...any) error {
	f.calls = append(f.calls, call{method: method, args: args})
	if err := f.errs[method]; err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	raw, err := msgpack.Marshal(f.results[method])
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(raw, result)
}

func (f *fakeCaller) last() call {
	return f.calls[len(f.calls)-1]
}

func TestHandleRoundTrip(t *testing.T) {
	w := Window(1001)
	raw, err := msgpack.Marshal(&w)
	require.NoError(t, err)

	var got Window
	require.NoError(t, msgpack.Unmarshal(raw, &got))
	assert.Equal(t, w, got)

	b := Buffer(7)
	raw, err = msgpack.Marshal(&b)
	require.NoError(t, err)
	var gotBuf Buffer
	require.NoError(t, msgpack.Unmarshal(raw, &gotBuf))
	assert.Equal(t, b, gotBuf)
	assert.Equal(t, "Buffer:7", gotBuf.String())
}

func TestCurrentWindowAndBuffer(t *testing.T) {
	f := newFakeCaller()
	win, buf := Window(1000), Buffer(3)
	f.results["nvim_get_current_win"] = &win
	f.results["nvim_get_current_buf"] = &buf
	c := NewClient(f)
	ctx := context.Background()

	gotWin, err := c.CurrentWindow(ctx)
	require.NoError(t, err)
	assert.Equal(t, win, gotWin)

	gotBuf, err := c.CurrentBuffer(ctx)
	require.NoError(t, err)
	assert.Equal(t, buf, gotBuf)
}

func TestIntegerQueries(t *testing.T) {
	f := newFakeCaller()
	f.results["nvim_buf_line_count"] = 120
	f.results["nvim_win_get_height"] = 40
	f.results["nvim_win_get_width"] = 80
	f.results["nvim_eval"] = 17
	c := NewClient(f)
	ctx := context.Background()

	n, err := c.BufferLineCount(ctx, Buffer(1))
	require.NoError(t, err)
	assert.Equal(t, 120, n)

	h, err := c.WindowHeight(ctx, Window(1000))
	require.NoError(t, err)
	assert.Equal(t, 40, h)

	w, err := c.WindowWidth(ctx, Window(1000))
	require.NoError(t, err)
	assert.Equal(t, 80, w)

	top, err := c.EvalInt(ctx, "line('w0')")
	require.NoError(t, err)
	assert.Equal(t, 17, top)
	assert.Equal(t, []any{"line('w0')"}, f.last().args)
}

func TestPairQueries(t *testing.T) {
	f := newFakeCaller()
	f.results["nvim_win_get_cursor"] = []int{12, 4}
	f.results["nvim_win_get_position"] = []int{1, 0}
	c := NewClient(f)
	ctx := context.Background()

	line, col, err := c.WindowCursor(ctx, Window(1000))
	require.NoError(t, err)
	assert.Equal(t, 12, line)
	assert.Equal(t, 4, col)

	row, col, err := c.WindowPosition(ctx, Window(1000))
	require.NoError(t, err)
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)
}

func TestPairQueryRejectsWrongArity(t *testing.T) {
	f := newFakeCaller()
	f.results["nvim_win_get_cursor"] = []int{12}
	_, _, err := NewClient(f).WindowCursor(context.Background(), Window(1000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 values")
}

func TestMode(t *testing.T) {
	f := newFakeCaller()
	f.results["nvim_get_mode"] = map[string]any{"mode": "V", "blocking": false}
	m, err := NewClient(f).Mode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "V", m.Mode)
	assert.True(t, m.Visual())

	assert.True(t, Mode{Mode: "\x16"}.Visual())
	assert.False(t, Mode{Mode: "n"}.Visual())
	assert.False(t, Mode{Mode: "i"}.Visual())
}

func TestOpenWindowSendsConfig(t *testing.T) {
	f := newFakeCaller()
	win := Window(1002)
	f.results["nvim_open_win"] = &win
	c := NewClient(f)

	cfg := WindowConfig{Relative: "editor", Anchor: "NE", Width: 2, Height: 30, Row: 0, Col: 80, Style: "minimal"}
	got, err := c.OpenWindow(context.Background(), Buffer(4), false, cfg)
	require.NoError(t, err)
	assert.Equal(t, win, got)

	args := f.last().args
	require.Len(t, args, 3)
	assert.Equal(t, false, args[1])
	assert.Equal(t, cfg, args[2])

	raw, err := msgpack.Marshal(cfg)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, msgpack.Unmarshal(raw, &m))
	assert.Equal(t, "editor", m["relative"])
	assert.Equal(t, "NE", m["anchor"])
	assert.Equal(t, false, m["focusable"])
}

func TestOptionScopes(t *testing.T) {
	f := newFakeCaller()
	c := NewClient(f)
	ctx := context.Background()

	require.NoError(t, c.SetWindowOption(ctx, Window(1002), "winblend", 20))
	assert.Equal(t, "nvim_set_option_value", f.last().method)
	assert.Equal(t, []any{"winblend", 20, map[string]any{"win": int64(1002)}}, f.last().args)

	require.NoError(t, c.SetBufferOption(ctx, Buffer(4), "filetype", "picomap"))
	assert.Equal(t, []any{"filetype", "picomap", map[string]any{"buf": int64(4)}}, f.last().args)
}

func TestSetBufferLinesReplacesWholeBuffer(t *testing.T) {
	f := newFakeCaller()
	require.NoError(t, NewClient(f).SetBufferLines(context.Background(), Buffer(4), nil))
	args := f.last().args
	require.Len(t, args, 5)
	assert.Equal(t, 0, args[1])
	assert.Equal(t, -1, args[2])
	assert.Equal(t, []string{}, args[4])
}

func TestCallErrorsPropagate(t *testing.T) {
	f := newFakeCaller()
	boom := errors.New("boom")
	f.errs["nvim_win_get_height"] = boom
	_, err := NewClient(f).WindowHeight(context.Background(), Window(1000))
	assert.ErrorIs(t, err, boom)
}
