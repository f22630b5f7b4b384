package rpc

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

type peer struct {
	w   *io.PipeWriter
	enc *msgpack.Encoder
	dec *msgpack.Decoder
}

func newTestConn(t *testing.T) (*Conn, *peer, <-chan error) {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	conn := NewConn(inR, outW, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- conn.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		inW.Close()
		outR.Close()
	})

	dec := msgpack.NewDecoder(outR)
	dec.UseLooseInterfaceDecoding(true)
	return conn, &peer{w: inW, enc: msgpack.NewEncoder(inW), dec: dec}, errc
}

func (p *peer) read(t *testing.T) []any {
	t.Helper()
	v, err := p.dec.DecodeInterface()
	if err != nil {
		t.Fatalf("peer read: %v", err)
	}
	msg, ok := v.([]any)
	if !ok {
		t.Fatalf("peer read: expected array, got %T", v)
	}
	return msg
}

func (p *peer) write(t *testing.T, msg ...any) {
	t.Helper()
	if err := p.enc.Encode(msg); err != nil {
		t.Fatalf("peer write: %v", err)
	}
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	}
	return -1
}

func TestCallRoundTrip(t *testing.T) {
	conn, p, _ := newTestConn(t)

	type result struct {
		val string
		err error
	}
	done := make(chan result, 1)
	go func() {
		var got string
		err := conn.Call(context.Background(), "nvim_eval", &got, "line('w0')")
		done <- result{got, err}
	}()

	msg := p.read(t)
	if len(msg) != 4 || asInt(msg[0]) != typeRequest {
		t.Fatalf("unexpected request: %#v", msg)
	}
	if msg[2] != "nvim_eval" {
		t.Fatalf("unexpected method: %v", msg[2])
	}
	args, ok := msg[3].([]any)
	if !ok || len(args) != 1 || args[0] != "line('w0')" {
		t.Fatalf("unexpected args: %#v", msg[3])
	}
	p.write(t, typeResponse, msg[1], nil, "12")

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("call: %v", r.err)
		}
		if r.val != "12" {
			t.Fatalf("expected 12, got %q", r.val)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("call did not complete")
	}
}

func TestCallErrorResponse(t *testing.T) {
	conn, p, _ := newTestConn(t)

	done := make(chan error, 1)
	go func() { done <- conn.Call(context.Background(), "nvim_win_close", nil, 1000, true) }()

	msg := p.read(t)
	p.write(t, typeResponse, msg[1], []any{1, "Invalid window id: 1000"}, nil)

	err := <-done
	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if rpcErr.Type != 1 || rpcErr.Message != "Invalid window id: 1000" {
		t.Fatalf("unexpected error: %+v", rpcErr)
	}
}

func TestNotificationsDoNotBlockCalls(t *testing.T) {
	conn, p, _ := newTestConn(t)

	done := make(chan error, 1)
	go func() { done <- conn.Call(context.Background(), "nvim_get_current_win", nil) }()

	msg := p.read(t)
	for i := 0; i < 32; i++ {
		p.write(t, typeNotification, "sync", []any{[]any{}, []any{}})
	}
	p.write(t, typeResponse, msg[1], nil, 1000)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("call: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("call blocked behind undelivered notifications")
	}

	for i := 0; i < 32; i++ {
		select {
		case n := <-conn.Notifications():
			if n.Method != "sync" {
				t.Fatalf("unexpected method %q", n.Method)
			}
			var params []any
			if err := msgpack.Unmarshal(n.Params, &params); err != nil || len(params) != 2 {
				t.Fatalf("unexpected params: %v %v", params, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("notification %d not delivered", i)
		}
	}
}

func TestPeerRequestGetsError(t *testing.T) {
	_, p, _ := newTestConn(t)

	p.write(t, typeRequest, 7, "picomap_version", []any{})

	msg := p.read(t)
	if asInt(msg[0]) != typeResponse || asInt(msg[1]) != 7 {
		t.Fatalf("unexpected response: %#v", msg)
	}
	errParts, ok := msg[2].([]any)
	if !ok || len(errParts) != 2 || errParts[1] != "method not found: picomap_version" {
		t.Fatalf("unexpected error slot: %#v", msg[2])
	}
	if msg[3] != nil {
		t.Fatalf("expected nil result, got %#v", msg[3])
	}
}

func TestServeEndsOnEOF(t *testing.T) {
	conn, p, errc := newTestConn(t)

	p.write(t, typeNotification, "show", []any{})
	p.w.Close()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop on EOF")
	}

	n, ok := <-conn.Notifications()
	if !ok || n.Method != "show" {
		t.Fatalf("queued notification lost: %v %v", n, ok)
	}
	if _, ok := <-conn.Notifications(); ok {
		t.Fatal("notifications should be closed")
	}
	if err := conn.Call(context.Background(), "nvim_command", nil, "q"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestServeRejectsMalformedMessage(t *testing.T) {
	_, p, errc := newTestConn(t)

	// A complete frame, so the peer is not left blocked mid-write.
	p.write(t, 5)

	select {
	case err := <-errc:
		if err == nil {
			t.Fatal("expected error for malformed message")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not fail")
	}
}

func TestCallHonoursContext(t *testing.T) {
	conn, p, _ := newTestConn(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- conn.Call(ctx, "nvim_get_mode", nil) }()

	p.read(t)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
