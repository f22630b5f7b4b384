package rpc

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	typeRequest      = 0
	typeResponse     = 1
	typeNotification = 2
)

// Notification is a message from the peer that expects no response.
type Notification struct {
	Method string
	Params msgpack.RawMessage
}

// Error is an error response from the peer. Neovim reports errors as
// [type, message]; anything else ends up verbatim in Message.
type Error struct {
	Type    int64
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Type, e.Message)
}

type response struct {
	err    error
	result msgpack.RawMessage
}

func (r *response) decode(method string, result any) error {
	if r.err != nil {
		return fmt.Errorf("%s: %w", method, r.err)
	}
	if result != nil {
		if err := msgpack.Unmarshal(r.result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// decodeError turns the error slot of a response into an error, or nil when
// the slot holds msgpack nil.
func decodeError(raw msgpack.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	dec := msgpack.NewDecoder(bytes.NewReader(raw))
	dec.UseLooseInterfaceDecoding(true)
	v, err := dec.DecodeInterface()
	if err != nil {
		return fmt.Errorf("decode error response: %w", err)
	}
	if v == nil {
		return nil
	}
	if parts, ok := v.([]any); ok && len(parts) == 2 {
		e := &Error{Message: stringify(parts[1])}
		switch n := parts[0].(type) {
		case int64:
			e.Type = n
		case uint64:
			if t, err := safecast.Conv[int64](n); err == nil {
				e.Type = t
			}
		}
		return e
	}
	return &Error{Message: stringify(v)}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}
