package nvim

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Neovim transmits handles as msgpack extension types whose payload is a
// msgpack integer.
const (
	extBuffer int8 = 0
	extWindow int8 = 1
)

func init() {
	msgpack.RegisterExt(extBuffer, (*Buffer)(nil))
	msgpack.RegisterExt(extWindow, (*Window)(nil))
}

// Buffer is a buffer handle.
type Buffer int64

// Window is a window handle.
type Window int64

func (b *Buffer) MarshalMsgpack() ([]byte, error) { return msgpack.Marshal(int64(*b)) }

func (b *Buffer) UnmarshalMsgpack(data []byte) error {
	v, err := decodeHandle(data)
	*b = Buffer(v)
	return err
}

func (w *Window) MarshalMsgpack() ([]byte, error) { return msgpack.Marshal(int64(*w)) }

func (w *Window) UnmarshalMsgpack(data []byte) error {
	v, err := decodeHandle(data)
	*w = Window(v)
	return err
}

func (b Buffer) String() string { return fmt.Sprintf("Buffer:%d", int64(b)) }
func (w Window) String() string { return fmt.Sprintf("Window:%d", int64(w)) }

func decodeHandle(data []byte) (int64, error) {
	var v int64
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decode handle: %w", err)
	}
	return v, nil
}

// toInt narrows an editor-reported integer.
func toInt(v int64) (int, error) {
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0, fmt.Errorf("value %d out of range: %w", v, err)
	}
	return n, nil
}
