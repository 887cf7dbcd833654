package freee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextTypes(t *testing.T) {
	tests := []struct {
		name    string
		punches []ClockType
		want    []ClockType
	}{
		{"nothing yet", nil, []ClockType{ClockIn}},
		{"clocked in", []ClockType{ClockIn}, []ClockType{ClockOut, BreakBegin}},
		{"on break", []ClockType{ClockIn, BreakBegin}, []ClockType{BreakEnd}},
		{"back from break", []ClockType{ClockIn, BreakBegin, BreakEnd}, []ClockType{ClockOut, BreakBegin}},
		{"clocked out", []ClockType{ClockIn, ClockOut}, []ClockType{ClockIn}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]TimeClock, len(tt.punches))
			for i, p := range tt.punches {
				entries[i] = TimeClock{Type: p}
			}
			assert.Equal(t, tt.want, NextTypes(entries))
		})
	}
}

func TestNextTypes_NoClockInWhileClockedIn(t *testing.T) {
	entries := []TimeClock{{Type: ClockIn}}
	assert.NotContains(t, NextTypes(entries), ClockIn)
}

func TestDate(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	// 00:30 JST on the 18th is still the 17th in UTC; the local date wins.
	d := Date(time.Date(2026, 10, 18, 0, 30, 0, 0, jst))
	assert.Equal(t, "2026-10-18", formatDate(d))
}

func TestClockTypeLabels(t *testing.T) {
	for _, ct := range ClockTypes {
		assert.True(t, ct.Valid())
		assert.NotEqual(t, string(ct), ct.Label())
		assert.NotEmpty(t, ct.Command())
	}
	assert.False(t, ClockType("lunch").Valid())
}
