package rpc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/vmihailenco/msgpack/v5"

	"picomap/internal/trace"
)

// ErrClosed is returned by calls on a connection that stopped serving.
var ErrClosed = errors.New("rpc: connection closed")

// Options configures a Conn.
type Options struct {
	Tracer trace.Tracer
}

// Conn is a MessagePack-RPC connection.
type Conn struct {
	dec    *msgpack.Decoder
	out    *bufio.Writer
	enc    *msgpack.Encoder
	sendMu sync.Mutex

	mu      sync.Mutex
	nextID  atomic.Uint32
	pending map[uint32]chan *response
	queue   []Notification
	drained bool
	wake    chan struct{}
	notes   chan Notification

	done      chan struct{}
	closeOnce sync.Once
	tracer    trace.Tracer
}

// NewConn returns a connection reading from r and writing to w.
func NewConn(r io.Reader, w io.Writer, opts Options) *Conn {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	out := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(out)
	enc.UseCompactInts(true)
	return &Conn{
		dec:     msgpack.NewDecoder(bufio.NewReader(r)),
		out:     out,
		enc:     enc,
		pending: make(map[uint32]chan *response),
		wake:    make(chan struct{}, 1),
		notes:   make(chan Notification),
		done:    make(chan struct{}),
		tracer:  tracer,
	}
}

// Notifications delivers inbound notifications in order. It is closed when
// Serve returns and all queued notifications have been delivered, or when
// the Serve context is cancelled.
func (c *Conn) Notifications() <-chan Notification {
	return c.notes
}

// Done is closed once the connection stops serving.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Serve reads messages until the peer closes the stream, a read fails, or
// ctx is cancelled. A clean end of stream returns nil. Serve must be called
// exactly once.
func (c *Conn) Serve(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- c.readLoop() }()
	go c.pump(ctx)

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
	}
	c.shutdown()
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil
	}
	return err
}

func (c *Conn) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.drained = true
		c.mu.Unlock()
		c.signal()
	})
}

// Call invokes method on the peer with args and decodes the result into
// result, which may be nil to discard it.
func (c *Conn) Call(ctx context.Context, method string, result any, args ...any) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	id := c.nextID.Add(1)
	ch := make(chan *response, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if args == nil {
		args = []any{}
	}
	trace.Point(c.tracer, trace.ScopeRPC, method, "call #"+strconv.FormatUint(uint64(id), 10))
	if err := c.send([]any{typeRequest, id, method, args}); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case resp := <-ch:
		return resp.decode(method, result)
	case <-c.done:
		// the response may have arrived just before the stream ended
		select {
		case resp := <-ch:
			return resp.decode(method, result)
		default:
			return ErrClosed
		}
	}
}

// Notify sends a notification to the peer.
func (c *Conn) Notify(ctx context.Context, method string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	if args == nil {
		args = []any{}
	}
	trace.Point(c.tracer, trace.ScopeRPC, method, "notify")
	return c.send([]any{typeNotification, method, args})
}

func (c *Conn) send(msg []any) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := c.enc.Encode(msg); err != nil {
		return err
	}
	return c.out.Flush()
}

func (c *Conn) readLoop() error {
	for {
		n, err := c.dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		kind, err := c.dec.DecodeInt()
		if err != nil {
			return fmt.Errorf("rpc: decode message type: %w", err)
		}
		switch {
		case kind == typeRequest && n == 4:
			err = c.readRequest()
		case kind == typeResponse && n == 4:
			err = c.readResponse()
		case kind == typeNotification && n == 3:
			err = c.readNotification()
		default:
			return fmt.Errorf("rpc: malformed message (type %d, %d elements)", kind, n)
		}
		if err != nil {
			return err
		}
	}
}

func (c *Conn) readRequest() error {
	id, err := c.dec.DecodeUint32()
	if err != nil {
		return fmt.Errorf("rpc: decode request id: %w", err)
	}
	method, err := c.dec.DecodeString()
	if err != nil {
		return fmt.Errorf("rpc: decode request method: %w", err)
	}
	if err := c.dec.Skip(); err != nil {
		return fmt.Errorf("rpc: decode request params: %w", err)
	}
	trace.Point(c.tracer, trace.ScopeRPC, method, "unhandled request #"+strconv.FormatUint(uint64(id), 10))
	return c.send([]any{typeResponse, id, []any{0, "method not found: " + method}, nil})
}

func (c *Conn) readResponse() error {
	id, err := c.dec.DecodeUint32()
	if err != nil {
		return fmt.Errorf("rpc: decode response id: %w", err)
	}
	errRaw, err := c.dec.DecodeRaw()
	if err != nil {
		return fmt.Errorf("rpc: decode response error: %w", err)
	}
	result, err := c.dec.DecodeRaw()
	if err != nil {
		return fmt.Errorf("rpc: decode response result: %w", err)
	}

	c.mu.Lock()
	ch, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if !ok {
		trace.Point(c.tracer, trace.ScopeRPC, "response", "no pending call #"+strconv.FormatUint(uint64(id), 10))
		return nil
	}
	ch <- &response{err: decodeError(errRaw), result: result}
	return nil
}

func (c *Conn) readNotification() error {
	method, err := c.dec.DecodeString()
	if err != nil {
		return fmt.Errorf("rpc: decode notification method: %w", err)
	}
	params, err := c.dec.DecodeRaw()
	if err != nil {
		return fmt.Errorf("rpc: decode notification params: %w", err)
	}
	trace.Point(c.tracer, trace.ScopeRPC, method, "notification")

	c.mu.Lock()
	c.queue = append(c.queue, Notification{Method: method, Params: params})
	c.mu.Unlock()
	c.signal()
	return nil
}

func (c *Conn) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// pump forwards queued notifications to the consumer without ever holding
// up the read loop.
func (c *Conn) pump(ctx context.Context) {
	defer close(c.notes)
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			drained := c.drained
			c.mu.Unlock()
			if drained {
				return
			}
			select {
			case <-c.wake:
				continue
			case <-ctx.Done():
				return
			}
		}
		n := c.queue[0]
		c.queue[0] = Notification{}
		c.queue = c.queue[1:]
		c.mu.Unlock()

		select {
		case c.notes <- n:
		case <-ctx.Done():
			return
		}
	}
}
