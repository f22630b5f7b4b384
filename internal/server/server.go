// Package server drives the picomap side panel from editor events.
package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"picomap/internal/config"
	"picomap/internal/highlight"
	"picomap/internal/message"
	"picomap/internal/nvim"
	"picomap/internal/picomap"
	"picomap/internal/rpc"
	"picomap/internal/trace"
)

// shutdownTimeout bounds the editor calls made after the event loop stops.
const shutdownTimeout = 2 * time.Second

// Editor is the subset of the Neovim API the server uses. *nvim.Client
// satisfies it.
type Editor interface {
	CurrentWindow(ctx context.Context) (nvim.Window, error)
	SetCurrentWindow(ctx context.Context, win nvim.Window) error
	CurrentBuffer(ctx context.Context) (nvim.Buffer, error)
	BufferLineCount(ctx context.Context, buf nvim.Buffer) (int, error)
	WindowHeight(ctx context.Context, win nvim.Window) (int, error)
	WindowWidth(ctx context.Context, win nvim.Window) (int, error)
	WindowPosition(ctx context.Context, win nvim.Window) (row, col int, err error)
	WindowCursor(ctx context.Context, win nvim.Window) (line, col int, err error)
	EvalInt(ctx context.Context, expr string) (int, error)
	Var(ctx context.Context, name string, result any) error
	Mode(ctx context.Context) (nvim.Mode, error)
	CreateBuffer(ctx context.Context, listed, scratch bool) (nvim.Buffer, error)
	SetBufferLines(ctx context.Context, buf nvim.Buffer, lines []string) error
	OpenWindow(ctx context.Context, buf nvim.Buffer, enter bool, cfg nvim.WindowConfig) (nvim.Window, error)
	SetWindowConfig(ctx context.Context, win nvim.Window, cfg nvim.WindowConfig) error
	CloseWindow(ctx context.Context, win nvim.Window, force bool) error
	SetWindowOption(ctx context.Context, win nvim.Window, name string, value any) error
	SetBufferOption(ctx context.Context, buf nvim.Buffer, name string, value any) error
}

// Server owns the highlighters, the scratch buffer and the floating window.
type Server struct {
	editor Editor
	cfg    config.Config
	tracer trace.Tracer

	changes *highlight.ChangeHighlighter
	diags   *highlight.DiagnosticsHighlighter

	buf     nvim.Buffer
	hasBuf  bool
	win     nvim.Window
	hasWin  bool
	lastLen int
	runID   uint64
}

// New returns a server with empty highlighters.
func New(editor Editor, cfg config.Config, tracer trace.Tracer) *Server {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Server{
		editor:  editor,
		cfg:     cfg,
		tracer:  tracer,
		changes: highlight.NewChangeHighlighter(),
		diags:   highlight.NewDiagnosticsHighlighter(),
	}
}

// Window returns the floating window handle while it is open.
func (s *Server) Window() (nvim.Window, bool) { return s.win, s.hasWin }

// Run creates the scratch buffer and handles events one at a time until ctx
// is done or events is closed. The window is closed on exit.
func (s *Server) Run(ctx context.Context, events <-chan rpc.Notification) (err error) {
	span := trace.Begin(s.tracer, trace.ScopeServer, "run", 0)
	s.runID = span.ID()
	defer func() {
		if cerr := s.shutdown(ctx); cerr != nil && err == nil {
			err = cerr
		}
		span.End("")
	}()

	if err := s.ensureBuffer(ctx); err != nil {
		return ignoreClosed(err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.Handle(ctx, ev); err != nil {
				if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
					return nil
				}
				trace.Error(s.tracer, trace.ScopeServer, ev.Method, err)
				return ignoreClosed(err)
			}
		}
	}
}

// ignoreClosed treats a connection that went away mid-request as a normal
// shutdown.
func ignoreClosed(err error) error {
	if errors.Is(err, rpc.ErrClosed) {
		return nil
	}
	return err
}

// Handle dispatches a single event. Malformed payloads are traced and
// skipped; editor failures are returned.
func (s *Server) Handle(ctx context.Context, ev rpc.Notification) error {
	kind := message.ParseKind(ev.Method)
	span := trace.Begin(s.tracer, trace.ScopeEvent, kind.String(), s.runID)
	if kind == message.KindUnknown {
		span.WithExtra("method", ev.Method)
	}

	var err error
	switch kind {
	case message.KindSync:
		err = s.sync(ctx, ev)
	case message.KindShow:
		err = s.show(ctx)
	case message.KindResize:
		err = s.resize(ctx)
	case message.KindClose:
		err = s.close(ctx)
	default:
		span.End("ignored")
		return nil
	}

	if errors.Is(err, message.ErrMalformed) {
		trace.Error(s.tracer, trace.ScopeEvent, kind.String(), err)
		span.End("skipped")
		return nil
	}
	span.End("")
	return err
}

func (s *Server) ensureBuffer(ctx context.Context) error {
	if s.hasBuf {
		return nil
	}
	buf, err := s.editor.CreateBuffer(ctx, false, true)
	if err != nil {
		return fmt.Errorf("create buffer: %w", err)
	}
	s.buf, s.hasBuf = buf, true
	return nil
}

// view is the editor state a render depends on.
type view struct {
	win    nvim.Window
	length int
	height int
	mod    picomap.Modifier
}

func (s *Server) sync(ctx context.Context, ev rpc.Notification) error {
	payload, err := message.DecodeSync(ev.Params)
	if err != nil {
		return err
	}
	v, err := s.queryView(ctx, true)
	if err != nil {
		return err
	}

	span := trace.Begin(s.tracer, trace.ScopeRender, "highlight", 0)
	s.diags.Sync(v.length, payload.Diagnostics())
	s.changes.Sync(v.length, payload.Changes())
	s.lastLen = v.length
	span.End(strconv.Itoa(len(payload.Locations)) + " locations, " + strconv.Itoa(len(payload.Hunks)) + " hunks")

	return s.render(ctx, v)
}

func (s *Server) resize(ctx context.Context) error {
	v, err := s.queryView(ctx, false)
	if err != nil {
		return err
	}
	if s.hasWin {
		g, err := s.queryGeometry(ctx, v.win)
		if err != nil {
			return err
		}
		if err := s.editor.SetWindowConfig(ctx, s.win, s.windowConfig(g)); err != nil {
			return fmt.Errorf("resize window: %w", err)
		}
	}
	v.length = s.lastLen
	return s.render(ctx, v)
}

// queryView reads the current window geometry. The modifier includes the
// visual selection only when withSelection is set.
func (s *Server) queryView(ctx context.Context, withSelection bool) (view, error) {
	win, err := s.editor.CurrentWindow(ctx)
	if err != nil {
		return view{}, err
	}
	buf, err := s.editor.CurrentBuffer(ctx)
	if err != nil {
		return view{}, err
	}
	length, err := s.editor.BufferLineCount(ctx, buf)
	if err != nil {
		return view{}, err
	}
	height, err := s.editor.WindowHeight(ctx, win)
	if err != nil {
		return view{}, err
	}
	cursor, _, err := s.editor.WindowCursor(ctx, win)
	if err != nil {
		return view{}, err
	}
	top, err := s.editor.EvalInt(ctx, "line('w0')")
	if err != nil {
		return view{}, err
	}

	visibleTop := top - 1
	mod := picomap.NewModifier(cursor-1, picomap.Frame{Top: visibleTop, Bottom: visibleTop + height})
	if withSelection {
		mode, err := s.editor.Mode(ctx)
		if err != nil {
			return view{}, err
		}
		if mode.Visual() {
			start, err := s.editor.EvalInt(ctx, "line('v')")
			if err != nil {
				return view{}, err
			}
			mod = mod.WithSelection(picomap.Frame{Top: start - 1, Bottom: cursor - 1})
		}
	}
	return view{win: win, length: length, height: height, mod: mod}, nil
}

func (s *Server) render(ctx context.Context, v view) error {
	if err := s.ensureBuffer(ctx); err != nil {
		return err
	}
	span := trace.Begin(s.tracer, trace.ScopeRender, "render", 0)
	p := picomap.New(s.changes.Highlight(), s.diags.Highlight(), v.mod)
	p.Smoothing = s.cfg.Render.SmoothingMode()
	lines := p.Lines(v.length, v.height)
	span.End(strconv.Itoa(len(lines)) + " rows")

	if err := s.editor.SetBufferLines(ctx, s.buf, lines); err != nil {
		return fmt.Errorf("write buffer: %w", err)
	}
	return nil
}

// geometry is the screen placement of the window the panel docks to.
type geometry struct {
	row, col      int
	width, height int
}

func (s *Server) queryGeometry(ctx context.Context, win nvim.Window) (geometry, error) {
	row, col, err := s.editor.WindowPosition(ctx, win)
	if err != nil {
		return geometry{}, err
	}
	width, err := s.editor.WindowWidth(ctx, win)
	if err != nil {
		return geometry{}, err
	}
	height, err := s.editor.WindowHeight(ctx, win)
	if err != nil {
		return geometry{}, err
	}
	return geometry{row: row, col: col, width: width, height: height}, nil
}

// windowConfig places the panel along the right edge of the docked window.
func (s *Server) windowConfig(g geometry) nvim.WindowConfig {
	return nvim.WindowConfig{
		Relative: "editor",
		Anchor:   s.cfg.Window.Anchor,
		Width:    s.cfg.Window.Width,
		Height:   max(g.height, 1),
		Row:      g.row,
		Col:      g.col + g.width,
		Style:    "minimal",
	}
}

func (s *Server) show(ctx context.Context) error {
	if err := s.ensureBuffer(ctx); err != nil {
		return err
	}
	current, err := s.editor.CurrentWindow(ctx)
	if err != nil {
		return err
	}
	g, err := s.queryGeometry(ctx, current)
	if err != nil {
		return err
	}
	cfg := s.windowConfig(g)

	if s.hasWin {
		if err := s.editor.SetWindowConfig(ctx, s.win, cfg); err != nil {
			return fmt.Errorf("update window: %w", err)
		}
		return nil
	}

	win, err := s.editor.OpenWindow(ctx, s.buf, false, cfg)
	if err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	s.win, s.hasWin = win, true
	trace.Point(s.tracer, trace.ScopeServer, "window", "opened "+win.String())

	if err := s.editor.SetWindowOption(ctx, win, "winhl", s.cfg.Window.Winhl); err != nil {
		return fmt.Errorf("set winhl: %w", err)
	}
	if err := s.editor.SetWindowOption(ctx, win, "winblend", s.winblend(ctx)); err != nil {
		return fmt.Errorf("set winblend: %w", err)
	}
	if err := s.editor.SetBufferOption(ctx, s.buf, "filetype", s.cfg.Window.Filetype); err != nil {
		return fmt.Errorf("set filetype: %w", err)
	}
	return s.editor.SetCurrentWindow(ctx, current)
}

// winblend prefers g:picomap_winblend over the configured value.
func (s *Server) winblend(ctx context.Context) int {
	var v int64
	if err := s.editor.Var(ctx, "picomap_winblend", &v); err != nil {
		return s.cfg.Window.Winblend
	}
	return int(min(max(v, 0), 100))
}

func (s *Server) close(ctx context.Context) error {
	if !s.hasWin {
		return nil
	}
	win := s.win
	s.win, s.hasWin = 0, false
	if err := s.editor.CloseWindow(ctx, win, true); err != nil {
		return fmt.Errorf("close window: %w", err)
	}
	trace.Point(s.tracer, trace.ScopeServer, "window", "closed "+win.String())
	return nil
}

// shutdown closes the window on a context detached from ctx's cancellation,
// so an interrupted run still cleans up after itself.
func (s *Server) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return ignoreClosed(s.close(ctx))
}
