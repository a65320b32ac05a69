package grid

import (
	"errors"
	"fmt"
)

var ErrTransferClosed = errors.New("grid: transfer already consumed or discarded")

type transferState int

const (
	transferOpen transferState = iota
	transferConsumed
	transferDiscarded
)

// Transfer is the data channel of a single drag gesture. The drag source
// fills it when the gesture begins; exactly one drop target consumes it.
// After Consume or Discard every read fails with ErrTransferClosed.
//
// A Transfer belongs to one gesture and is not safe for concurrent use.
type Transfer struct {
	data   map[string]string
	types  []string
	effect Effect
	state  transferState
}

func NewTransfer() *Transfer {
	return &Transfer{data: make(map[string]string, 2)}
}

// SetData stores value under mime, replacing any previous value.
func (t *Transfer) SetData(mime, value string) error {
	if t.state != transferOpen {
		return ErrTransferClosed
	}
	if mime == "" {
		return errors.New("grid: transfer mime type is empty")
	}
	if _, ok := t.data[mime]; !ok {
		t.types = append(t.types, mime)
	}
	t.data[mime] = value
	return nil
}

func (t *Transfer) SetEffectAllowed(effect Effect) {
	t.effect = effect
}

func (t *Transfer) EffectAllowed() Effect {
	return t.effect
}

// Types lists the populated keys in the order they were written.
func (t *Transfer) Types() []string {
	out := make([]string, len(t.types))
	copy(out, t.types)
	return out
}

// Open reports whether the transfer can still be consumed.
func (t *Transfer) Open() bool {
	return t.state == transferOpen
}

// Consume reads the value stored under mime and closes the transfer.
func (t *Transfer) Consume(mime string) (string, bool, error) {
	if t.state != transferOpen {
		return "", false, ErrTransferClosed
	}
	value, ok := t.data[mime]
	t.close(transferConsumed)
	return value, ok, nil
}

// ConsumePayload consumes the JSON payload entry and decodes it. A transfer
// without a payload entry decodes as Malformed.
func (t *Transfer) ConsumePayload() (DragPayload, error) {
	raw, ok, err := t.Consume(PayloadMIME)
	if err != nil {
		return DragPayload{}, err
	}
	if !ok {
		return DragPayload{}, &DecodeError{Kind: Malformed, Reason: fmt.Sprintf("no %s entry", PayloadMIME)}
	}
	return DecodePayload(raw)
}

// Discard closes the transfer without reading it.
func (t *Transfer) Discard() {
	if t.state == transferOpen {
		t.close(transferDiscarded)
	}
}

func (t *Transfer) close(state transferState) {
	t.state = state
	t.data = nil
	t.types = nil
}
