package formatting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"

	"github.com/florianilch/kintai/internal/freee"
)

var jst = time.FixedZone("JST", 9*60*60)

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 18, hour, minute, 0, 0, jst)
}

func TestPrinter_TimeClocks(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, false, jst)

	edited := at(8, 55)
	p.TimeClocks(at(12, 0), at(12, 30), []freee.TimeClock{
		{Type: freee.ClockIn, Datetime: at(9, 0), OriginalDatetime: &edited},
		{Type: freee.BreakBegin, Datetime: at(12, 0), Note: "lunch"},
	})

	got := out.String()
	assert.Contains(t, got, "Punches on 2026-10-18")
	assert.Contains(t, got, "09:00 (edited)")
	assert.Contains(t, got, "lunch")
	assert.Less(t, strings.Index(got, "Clock in"), strings.Index(got, "Break begin"))
	assert.Contains(t, got, "Next: break-end (Break end)")
	assert.NotContains(t, got, "\x1b[", "no escape codes without color")
}

func TestPrinter_TimeClocksEmpty(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out, false, jst).TimeClocks(at(7, 0), at(7, 0), nil)

	assert.Contains(t, out.String(), "No punches recorded on 2026-10-18")
	assert.Contains(t, out.String(), "Next: in (Clock in)")
}

func TestPrinter_TimeClocksPastDayHasNoSuggestion(t *testing.T) {
	var out bytes.Buffer
	yesterday := at(9, 0).AddDate(0, 0, -1)
	NewPrinter(&out, false, jst).TimeClocks(yesterday, at(9, 0), []freee.TimeClock{
		{Type: freee.ClockIn, Datetime: yesterday},
	})

	assert.Contains(t, out.String(), "Punches on 2026-10-17")
	assert.NotContains(t, out.String(), "Next:")
}

func TestPrinter_TimeClocksTodayInPrinterZone(t *testing.T) {
	var out bytes.Buffer
	// 23:30 UTC on the 17th is already the 18th in JST
	lateUTC := time.Date(2026, 10, 17, 23, 30, 0, 0, time.UTC)
	NewPrinter(&out, false, jst).TimeClocks(at(0, 0), lateUTC, nil)

	assert.Contains(t, out.String(), "Next: in (Clock in)")
}

func TestPrinter_Punch(t *testing.T) {
	var out bytes.Buffer
	// Rendered in the printer's zone, not the one the API answered with
	NewPrinter(&out, false, jst).Punch(freee.TimeClock{Type: freee.ClockOut, Datetime: at(18, 30).UTC()})

	assert.Equal(t, "Clock out recorded at 18:30\n", out.String())
}

func TestPrinter_Color(t *testing.T) {
	text.EnableColors()

	var out bytes.Buffer
	NewPrinter(&out, true, jst).Success("done")

	assert.Contains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), "done")
}

func TestPrinter_Companies(t *testing.T) {
	var out bytes.Buffer
	own := int64(7)
	NewPrinter(&out, false, jst).Companies([]freee.Company{
		{ID: 10, Name: "Acme", Role: "self_only", EmployeeID: &own},
		{ID: 11, Name: "Other"},
	})

	got := out.String()
	assert.Contains(t, got, "Acme")
	assert.Contains(t, got, "self_only")
	assert.Contains(t, got, " 7 ")
	assert.Contains(t, got, " - ")
}

func TestPrinter_AvailableTypes(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out, false, jst).AvailableTypes(at(10, 0), []freee.ClockType{freee.ClockOut, freee.BreakBegin})

	assert.Equal(t, "Available on 2026-10-18: out (Clock out), break-begin (Break begin)\n", out.String())
}

func TestSpin_NonTerminalRunsPlainly(t *testing.T) {
	var out bytes.Buffer
	got, err := Spin(&out, "working", func() (int, error) { return 42, nil })

	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Empty(t, out.String())
}
