package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
	// KindError records a failure. Emitted at every level except off.
	KindError
	KindHeartbeat // periodic liveness signal
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindError:
		return "error"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeServer covers process lifecycle: start, shutdown, config.
	ScopeServer Scope = iota + 1
	// ScopeEvent covers one inbound editor event (sync, show, resize, close).
	ScopeEvent
	// ScopeRender covers highlighter sync, scaling and formatting.
	ScopeRender
	ScopeRPC // individual msgpack-rpc messages
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeServer:
		return "server"
	case ScopeEvent:
		return "event"
	case ScopeRender:
		return "render"
	case ScopeRPC:
		return "rpc"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	Name     string            // e.g. "sync", "nvim_buf_set_lines"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
	Duration time.Duration     // span duration, set on KindSpanEnd
}
