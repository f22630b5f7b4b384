// Package message decodes the events the editor plugin sends to picomap.
package message

import (
	"bytes"
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"

	"picomap/internal/highlight"
)

// ErrMalformed is wrapped by every payload decoding error.
var ErrMalformed = errors.New("malformed payload")

// Kind identifies an event by its notification name.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSync
	KindShow
	KindClose
	KindResize
)

// ParseKind maps a notification name to a Kind. Unrecognized names yield
// KindUnknown.
func ParseKind(name string) Kind {
	switch name {
	case "sync":
		return KindSync
	case "show":
		return KindShow
	case "close":
		return KindClose
	case "resize":
		return KindResize
	}
	return KindUnknown
}

func (k Kind) String() string {
	switch k {
	case KindSync:
		return "sync"
	case KindShow:
		return "show"
	case KindClose:
		return "close"
	case KindResize:
		return "resize"
	default:
		return "unknown"
	}
}

// LocationType is the quickfix entry type of a location.
type LocationType uint8

const (
	TypeUnknown LocationType = iota
	TypeWarning
	TypeError
)

func parseLocationType(s string) LocationType {
	switch s {
	case "W":
		return TypeWarning
	case "E":
		return TypeError
	}
	return TypeUnknown
}

// Location is one entry of the editor's location list.
type Location struct {
	Line int // 1-based
	Type LocationType
	Text string
}

// Diagnostic converts the location into a 0-based diagnostic.
func (l Location) Diagnostic() highlight.Diagnostic {
	level := highlight.LevelNone
	switch l.Type {
	case TypeWarning:
		level = highlight.LevelWarning
	case TypeError:
		level = highlight.LevelDanger
	}
	return highlight.Diagnostic{Line: l.Line - 1, Text: norm.NFC.String(l.Text), Level: level}
}

// Hunk is a changed region reported by the VCS integration.
type Hunk struct {
	Line   int // 1-based first line in the current buffer
	Length int
}

// Change converts the hunk into a 0-based change. Deletions report line 0,
// which clamps to the first line.
func (h Hunk) Change() highlight.Change {
	start := h.Line - 1
	if start < 0 {
		start = 0
	}
	return highlight.Change{Start: start, Length: h.Length}
}

// SyncPayload holds the parameters of a sync event.
type SyncPayload struct {
	Locations []Location
	Hunks     []Hunk
}

// Diagnostics converts every location.
func (p SyncPayload) Diagnostics() []highlight.Diagnostic {
	out := make([]highlight.Diagnostic, 0, len(p.Locations))
	for _, l := range p.Locations {
		out = append(out, l.Diagnostic())
	}
	return out
}

// Changes converts every hunk.
func (p SyncPayload) Changes() []highlight.Change {
	out := make([]highlight.Change, 0, len(p.Hunks))
	for _, h := range p.Hunks {
		out = append(out, h.Change())
	}
	return out
}

// DecodeSync decodes sync params of the form [locations, hunks].
func DecodeSync(params msgpack.RawMessage) (SyncPayload, error) {
	v, err := decodeLoose(params)
	if err != nil {
		return SyncPayload{}, err
	}
	args, ok := v.([]any)
	if !ok {
		return SyncPayload{}, fmt.Errorf("%w: sync params are not an array", ErrMalformed)
	}
	if len(args) < 2 {
		return SyncPayload{}, fmt.Errorf("%w: sync expects 2 params, got %d", ErrMalformed, len(args))
	}

	var p SyncPayload
	locs, err := asArray(args[0], "locations")
	if err != nil {
		return SyncPayload{}, err
	}
	for i, item := range locs {
		loc, err := decodeLocation(item)
		if err != nil {
			return SyncPayload{}, fmt.Errorf("location %d: %w", i, err)
		}
		p.Locations = append(p.Locations, loc)
	}

	hunks, err := asArray(args[1], "hunks")
	if err != nil {
		return SyncPayload{}, err
	}
	for i, item := range hunks {
		h, err := decodeHunk(item)
		if err != nil {
			return SyncPayload{}, fmt.Errorf("hunk %d: %w", i, err)
		}
		p.Hunks = append(p.Hunks, h)
	}
	return p, nil
}

func decodeLoose(raw msgpack.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty params", ErrMalformed)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(raw))
	dec.UseLooseInterfaceDecoding(true)
	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return v, nil
}

func asArray(v any, what string) ([]any, error) {
	switch arr := v.(type) {
	case []any:
		return arr, nil
	case nil:
		return nil, nil
	case map[string]any:
		// vim encodes an empty list as an empty dictionary in some paths
		if len(arr) == 0 {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is not an array", ErrMalformed, what)
}

func decodeLocation(v any) (Location, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Location{}, fmt.Errorf("%w: not a map", ErrMalformed)
	}
	lnum, err := intField(m, "lnum")
	if err != nil {
		return Location{}, err
	}
	typ, err := stringField(m, "type")
	if err != nil {
		return Location{}, err
	}
	text, err := stringField(m, "text")
	if err != nil {
		return Location{}, err
	}
	return Location{Line: lnum, Type: parseLocationType(typ), Text: text}, nil
}

func decodeHunk(v any) (Hunk, error) {
	arr, ok := v.([]any)
	if !ok {
		return Hunk{}, fmt.Errorf("%w: not an array", ErrMalformed)
	}
	if len(arr) < 4 {
		return Hunk{}, fmt.Errorf("%w: expected 4 elements, got %d", ErrMalformed, len(arr))
	}
	line, err := toInt(arr[2], "to")
	if err != nil {
		return Hunk{}, err
	}
	length, err := toInt(arr[3], "to_count")
	if err != nil {
		return Hunk{}, err
	}
	return Hunk{Line: line, Length: length}, nil
}

func intField(m map[string]any, key string) (int, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrMalformed, key)
	}
	return toInt(v, key)
}

func stringField(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrMalformed, key)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", fmt.Errorf("%w: %q is %T, want string", ErrMalformed, key, v)
}

func toInt(v any, what string) (int, error) {
	var (
		n   int
		err error
	)
	switch x := v.(type) {
	case int64:
		n, err = safecast.Conv[int](x)
	case uint64:
		n, err = safecast.Conv[int](x)
	default:
		return 0, fmt.Errorf("%w: %q is %T, want integer", ErrMalformed, what, v)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMalformed, what, err)
	}
	return n, nil
}
