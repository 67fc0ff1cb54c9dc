package jsonx

import (
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-11-10T14:30:00Z", time.Date(2024, 11, 10, 14, 30, 0, 0, time.UTC)},
		{"2024-11-10T14:30:00.123456789Z", time.Date(2024, 11, 10, 14, 30, 0, 123456789, time.UTC)},
		{"2024-11-10T14:30:00", time.Date(2024, 11, 10, 14, 30, 0, 0, time.UTC)},
		{"2024-11-12", time.Date(2024, 11, 12, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	_, err := ParseTime("yesterday")
	require.Error(t, err)
}

func TestDecoders(t *testing.T) {
	d := jx.DecodeStr(`[850, 12.6, null, "x", null, true, null, "2024-11-12", ""]`)

	var got []any
	i := 0
	require.NoError(t, d.Arr(func(d *jx.Decoder) error {
		var (
			v   any
			err error
		)
		switch i {
		case 0, 1, 2:
			v, err = Int64(d)
		case 3, 4:
			v, err = Str(d)
		case 5, 6:
			v, err = Bool(d)
		case 7, 8:
			v, err = OptTime(d)
		}
		i++
		got = append(got, v)
		return err
	}))

	require.Len(t, got, 9)
	assert.Equal(t, int64(850), got[0])
	assert.Equal(t, int64(13), got[1])
	assert.Equal(t, int64(0), got[2])
	assert.Equal(t, "x", got[3])
	assert.Equal(t, "", got[4])
	assert.Equal(t, true, got[5])
	assert.Equal(t, false, got[6])
	require.NotNil(t, got[7])
	assert.Nil(t, got[8])
}

func TestEncoders(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC)

	var e jx.Encoder
	e.ObjStart()
	Field(&e, "a", "x")
	FieldOmitEmpty(&e, "b", "")
	IntField(&e, "c", 42)
	TimeField(&e, "d", ts)
	OptTimeField(&e, "e", nil)
	e.ObjEnd()

	assert.JSONEq(t, `{"a":"x","c":42,"d":"2025-01-02T03:04:05.000000006Z"}`, e.String())
}

func TestEmpty(t *testing.T) {
	assert.True(t, Empty(nil))
	assert.True(t, Empty([]byte(" \n\t")))
	assert.False(t, Empty([]byte("[]")))
}
