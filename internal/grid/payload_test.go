package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Sales", "CRM", "", "Visa Application", `quote"d`, "ünïcode ✓", "a\nb"} {
		raw := EncodePayload(name)
		got, err := DecodePayload(raw)
		require.NoError(t, err, "raw=%s", raw)
		require.Equal(t, name, got.Name)
		require.Equal(t, PayloadType, got.Type)
	}
}

func TestEncodePayloadShape(t *testing.T) {
	t.Parallel()

	require.JSONEq(t, `{"name":"Sales","type":"APP_GRID_ITEM"}`, EncodePayload("Sales"))
}

func TestDecodePayloadMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "{", "not json", `{"name":"x",}`, "Sales"} {
		_, err := DecodePayload(raw)
		require.Error(t, err, "raw=%q", raw)
		require.True(t, errors.Is(err, ErrMalformed), "raw=%q err=%v", raw, err)
		require.False(t, errors.Is(err, ErrSchemaMismatch), "raw=%q", raw)

		var de *DecodeError
		require.True(t, errors.As(err, &de))
		require.Equal(t, Malformed, de.Kind)
	}
}

func TestDecodePayloadSchemaMismatch(t *testing.T) {
	t.Parallel()

	cases := []string{
		`{}`,
		`null`,
		`[]`,
		`"APP_GRID_ITEM"`,
		`42`,
		`{"type":"APP_GRID_ITEM"}`,
		`{"name":null,"type":"APP_GRID_ITEM"}`,
		`{"name":7,"type":"APP_GRID_ITEM"}`,
		`{"name":"Sales"}`,
		`{"name":"Sales","type":"SIDEBAR_ITEM"}`,
		`{"name":"Sales","type":1}`,
	}
	for _, raw := range cases {
		_, err := DecodePayload(raw)
		require.Error(t, err, "raw=%q", raw)
		require.True(t, errors.Is(err, ErrSchemaMismatch), "raw=%q err=%v", raw, err)
		require.False(t, errors.Is(err, ErrMalformed), "raw=%q", raw)
	}
}

func TestDecodePayloadIgnoresExtraFields(t *testing.T) {
	t.Parallel()

	got, err := DecodePayload(`{"name":"CRM","type":"APP_GRID_ITEM","extra":true}`)
	require.NoError(t, err)
	require.Equal(t, DragPayload{Name: "CRM", Type: PayloadType}, got)
}

func TestEffect(t *testing.T) {
	t.Parallel()

	require.True(t, EffectCopyMove.Allows(EffectCopy))
	require.True(t, EffectCopyMove.Allows(EffectMove))
	require.True(t, EffectCopyMove.Allows(EffectCopyMove))
	require.False(t, EffectCopy.Allows(EffectMove))
	require.False(t, EffectCopyMove.Allows(EffectNone))
	require.Equal(t, "copyMove", EffectCopyMove.String())
}

func TestParseEffect(t *testing.T) {
	t.Parallel()

	cases := map[string]Effect{
		"":              EffectCopyMove,
		"uninitialized": EffectCopyMove,
		"all":           EffectCopyMove,
		"copyMove":      EffectCopyMove,
		"copy":          EffectCopy,
		"copyLink":      EffectCopy,
		"move":          EffectMove,
		"linkMove":      EffectMove,
		"none":          EffectNone,
		"link":          EffectNone,
	}
	for in, want := range cases {
		got, err := ParseEffect(in)
		require.NoError(t, err, "in=%q", in)
		require.Equal(t, want, got, "in=%q", in)
	}

	_, err := ParseEffect("teleport")
	require.Error(t, err)
}
