package adapter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{`12.5`, 12.5},
		{`"12.50"`, 12.5},
		{`" 7 "`, 7},
		{`""`, 0},
		{`null`, 0},
		{`"abc"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var v struct {
				N flexNumber `json:"n"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"n":`+tt.input+`}`), &v))
			assert.Equal(t, tt.want, v.N.Float())
		})
	}
}

func TestFlexString(t *testing.T) {
	var v struct {
		A flexString `json:"a"`
		B flexString `json:"b"`
		C flexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 9876543210, "b": "AWB-1", "c": null}`), &v))
	assert.Equal(t, flexString("9876543210"), v.A)
	assert.Equal(t, flexString("AWB-1"), v.B)
	assert.Equal(t, flexString(""), v.C)
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 10, 18, 16, 30, 0, 0, time.UTC)

	assert.True(t, want.Equal(parseTime("2026-10-18T16:30:00Z", time.UTC)))
	assert.True(t, want.Equal(parseTime("2026-10-18T22:00:00+05:30", time.UTC)))
	assert.True(t, want.Equal(parseTime("2026-10-18T16:30:00", time.UTC)))
	assert.True(t, want.Equal(parseTime("2026-10-18 16:30:00", time.UTC)))
	assert.True(t, want.Equal(parseTime("18 Oct 2026, 04:30 PM", time.UTC)))
	assert.True(t, parseTime("", time.UTC).IsZero())
	assert.True(t, parseTime("yesterday", time.UTC).IsZero())

	// Zoneless layouts are read in the given location; explicit offsets win.
	assert.True(t, want.Equal(parseTime("18 Oct 2026, 10:00 PM", shiprocketZone)))
	assert.True(t, want.Equal(parseTime("2026-10-18 22:00:00", shiprocketZone)))
	assert.True(t, want.Equal(parseTime("2026-10-18T16:30:00Z", shiprocketZone)))
	assert.Equal(t, time.UTC, parseTime("2026-10-18 22:00:00", shiprocketZone).Location())
}
