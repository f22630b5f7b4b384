package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff    Level = iota // no tracing
	LevelError               // only failures
	LevelEvent               // server lifecycle + editor events
	LevelDetail              // render stages
	LevelDebug               // everything including rpc messages
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelEvent:
		return "event"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "event":
		return LevelEvent, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|event|detail|debug)", s)
	}
}

// ShouldEmit returns true if the given scope should emit at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelOff, LevelError:
		return false
	case LevelEvent:
		return scope <= ScopeEvent
	case LevelDetail:
		return scope <= ScopeRender
	case LevelDebug:
		return true
	}
	return false
}

// accepts reports whether a tracer at level l records ev.
func (l Level) accepts(ev *Event) bool {
	switch ev.Kind {
	case KindError:
		return l >= LevelError
	case KindHeartbeat:
		return l > LevelOff
	default:
		return l.ShouldEmit(ev.Scope)
	}
}
