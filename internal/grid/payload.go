// Package grid models the sortable applications grid: the app cards, the drag
// payload a card hands to drop targets, and the ordering strategy used when a
// card is dragged onto another position.
package grid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// PayloadType tags payloads that originate from the applications grid.
	PayloadType = "APP_GRID_ITEM"
	// PayloadMIME is the transfer key carrying the JSON payload.
	PayloadMIME = "application/json"
	// FallbackMIME carries the bare app name for consumers that do not speak JSON.
	FallbackMIME = "text/plain"
)

var (
	ErrMalformed      = errors.New("grid: malformed drag payload")
	ErrSchemaMismatch = errors.New("grid: drag payload schema mismatch")
)

// DragPayload identifies the dragged entry and where it came from.
type DragPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// DecodeErrorKind classifies a DecodeError.
type DecodeErrorKind int

const (
	Malformed DecodeErrorKind = iota + 1
	SchemaMismatch
)

func (k DecodeErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case SchemaMismatch:
		return "schema_mismatch"
	default:
		return "unknown"
	}
}

// DecodeError is returned by DecodePayload. It matches ErrMalformed or
// ErrSchemaMismatch with errors.Is depending on Kind.
type DecodeError struct {
	Kind   DecodeErrorKind
	Reason string
	err    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("grid: decode drag payload: %s", e.Kind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

func (e *DecodeError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case Malformed:
		return target == ErrMalformed
	case SchemaMismatch:
		return target == ErrSchemaMismatch
	default:
		return false
	}
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// EncodePayload serializes the payload for appName.
func EncodePayload(appName string) string {
	// Marshalling a struct of two strings cannot fail.
	raw, _ := json.Marshal(DragPayload{Name: appName, Type: PayloadType})
	return string(raw)
}

// DecodePayload parses a payload produced by EncodePayload. Any input that is
// not JSON is Malformed; JSON of the wrong shape is a SchemaMismatch.
func DecodePayload(raw string) (DragPayload, error) {
	data := []byte(raw)
	if !json.Valid(data) {
		return DragPayload{}, &DecodeError{Kind: Malformed, Reason: "not valid json"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return DragPayload{}, &DecodeError{Kind: SchemaMismatch, Reason: "not a json object"}
	}

	name, ok := stringField(fields, "name")
	if !ok {
		return DragPayload{}, &DecodeError{Kind: SchemaMismatch, Reason: "name must be a string"}
	}
	typ, ok := stringField(fields, "type")
	if !ok || typ != PayloadType {
		return DragPayload{}, &DecodeError{Kind: SchemaMismatch, Reason: fmt.Sprintf("type must be %q", PayloadType)}
	}

	return DragPayload{Name: name, Type: typ}, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Effect is the set of transfer operations a drag source allows.
type Effect uint8

const (
	EffectNone Effect = 0
	EffectCopy Effect = 1 << 0
	EffectMove Effect = 1 << 1

	EffectCopyMove = EffectCopy | EffectMove
)

// Allows reports whether every operation in op is permitted.
func (e Effect) Allows(op Effect) bool {
	return op != EffectNone && e&op == op
}

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectCopy:
		return "copy"
	case EffectMove:
		return "move"
	case EffectCopyMove:
		return "copyMove"
	default:
		return fmt.Sprintf("effect(%d)", uint8(e))
	}
}

// ParseEffect maps a browser effectAllowed value onto Effect. Link
// permissions are ignored. An empty or "uninitialized" value allows both
// copy and move, as browsers do.
func ParseEffect(s string) (Effect, error) {
	switch s {
	case "", "uninitialized", "all", "copyMove":
		return EffectCopyMove, nil
	case "copy", "copyLink":
		return EffectCopy, nil
	case "move", "linkMove":
		return EffectMove, nil
	case "none", "link":
		return EffectNone, nil
	default:
		return EffectNone, fmt.Errorf("grid: unknown effect %q", s)
	}
}
