// Package protocol defines the JSON frames exchanged over the event channel.
//
// Every frame is an object with a "type" discriminator and flat named fields.
// Inbound frames are parsed lazily: handlers pull the fields they require and
// any missing, null or mistyped required field is reported as ErrProtocol.
package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	json "github.com/goccy/go-json"

	"github.com/dkeye/voicelink/internal/core"
)

var ErrProtocol = errors.New("protocol violation")

// Inbound event types.
const (
	TypeJoin         = "join"
	TypeSetHost      = "setHost"
	TypeID           = "id"
	TypeLeave        = "leave"
	TypeVAD          = "VAD"
	TypeJoinLobby    = "join_lobby"
	TypeLobby        = "lobby"
	TypeRemoveLobby  = "remove_lobby"
	TypeSignal       = "signal"
	TypeLobbyBrowser = "lobbybrowser"
	TypePing         = "ping"
)

// Message is a parsed inbound frame.
type Message struct {
	Type   string
	fields map[string]json.RawMessage
}

// Parse decodes the envelope of an inbound frame.
func Parse(data []byte) (*Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: bad json: %v", ErrProtocol, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: frame is not an object", ErrProtocol)
	}
	m := &Message{fields: fields}
	typ, err := m.String("type")
	if err != nil {
		return nil, err
	}
	m.Type = typ
	return m, nil
}

func (m *Message) required(name string) (json.RawMessage, error) {
	raw, ok := m.fields[name]
	if !ok || isNull(raw) {
		return nil, fmt.Errorf("%w: missing %q", ErrProtocol, name)
	}
	return raw, nil
}

func (m *Message) String(name string) (string, error) {
	raw, err := m.required(name)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %q is not a string", ErrProtocol, name)
	}
	return s, nil
}

// Int accepts any JSON number without a fractional part.
func (m *Message) Int(name string) (int, error) {
	raw, err := m.required(name)
	if err != nil {
		return 0, err
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrProtocol, name)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrProtocol, name)
	}
	return int(f), nil
}

func (m *Message) Bool(name string) (bool, error) {
	raw, err := m.required(name)
	if err != nil {
		return false, err
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", ErrProtocol, name)
	}
	return b, nil
}

// OptBool returns false for an absent or null field.
func (m *Message) OptBool(name string) (bool, error) {
	raw, ok := m.fields[name]
	if !ok || isNull(raw) {
		return false, nil
	}
	return m.Bool(name)
}

// Payload returns a required field that must also carry a value: false, zero
// and the empty string are rejected along with null.
func (m *Message) Payload(name string) (json.RawMessage, error) {
	raw, err := m.required(name)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(trimmed, []byte("false")), bytes.Equal(trimmed, []byte(`""`)):
		return nil, fmt.Errorf("%w: %q is empty", ErrProtocol, name)
	case len(trimmed) > 0 && (trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9')):
		var n float64
		if err := json.Unmarshal(trimmed, &n); err == nil && n == 0 {
			return nil, fmt.Errorf("%w: %q is empty", ErrProtocol, name)
		}
	}
	return raw, nil
}

// Object decodes a required JSON object field into v.
func (m *Message) Object(name string, v any) error {
	raw, err := m.required(name)
	if err != nil {
		return err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: %q is not an object", ErrProtocol, name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrProtocol, name, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Encode marshals an outbound event into a frame.
func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return core.Frame(b), nil
}
