// Package formatting renders command output for humans.
package formatting

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/florianilch/kintai/internal/freee"
)

// Printer writes tables and status lines to out. Colors are only used when
// enabled, so output piped to a file stays plain.
type Printer struct {
	out      io.Writer
	color    bool
	location *time.Location
}

// NewPrinter creates a Printer that renders times in location.
func NewPrinter(out io.Writer, color bool, location *time.Location) *Printer {
	if location == nil {
		location = time.Local
	}
	return &Printer{out: out, color: color, location: location}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *Printer) paint(colors text.Colors, s string) string {
	if !p.color {
		return s
	}
	return colors.Sprint(s)
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	return t
}

// Success prints a green status line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(text.Colors{text.FgGreen}, fmt.Sprintf(format, args...)))
}

// Info prints a plain line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Warn prints a yellow line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(text.Colors{text.FgYellow}, fmt.Sprintf(format, args...)))
}

// Punch prints the confirmation for a recorded punch.
func (p *Printer) Punch(entry freee.TimeClock) {
	at := entry.Datetime
	if at.IsZero() {
		p.Success("%s recorded", entry.Type.Label())
		return
	}
	p.Success("%s recorded at %s", entry.Type.Label(), at.In(p.location).Format("15:04"))
}

// TimeClocks prints the punches of one day. The punches that may follow are
// suggested only when date falls on today.
func (p *Printer) TimeClocks(date, today time.Time, entries []freee.TimeClock) {
	day := date.In(p.location).Format(time.DateOnly)

	if len(entries) == 0 {
		p.Warn("No punches recorded on %s", day)
	} else {
		fmt.Fprintf(p.out, "Punches on %s\n", day)

		t := p.newTable()
		t.AppendHeader(table.Row{"#", "Type", "Time", "Note"})
		for i, entry := range entries {
			t.AppendRow(table.Row{i + 1, entry.Type.Label(), p.clock(entry), entry.Note})
		}
		t.Render()
	}

	if day == today.In(p.location).Format(time.DateOnly) {
		p.Info("Next: %s", p.commands(freee.NextTypes(entries)))
	}
}

// AvailableTypes prints the punch types the provider accepts right now.
func (p *Printer) AvailableTypes(date time.Time, types []freee.ClockType) {
	day := date.In(p.location).Format(time.DateOnly)
	if len(types) == 0 {
		p.Warn("No punches available on %s", day)
		return
	}
	p.Info("Available on %s: %s", day, p.commands(types))
}

// Companies prints the companies of the signed-in user.
func (p *Printer) Companies(companies []freee.Company) {
	t := p.newTable()
	t.AppendHeader(table.Row{"#", "Company ID", "Name", "Role", "Your employee ID"})
	for i, c := range companies {
		t.AppendRow(table.Row{i + 1, c.ID, companyName(c), c.Role, optionalID(c.EmployeeID)})
	}
	t.Render()
}

// Employees prints the employees of a company.
func (p *Printer) Employees(employees []freee.Employee) {
	t := p.newTable()
	t.AppendHeader(table.Row{"#", "Employee ID", "Number", "Name", "Email"})
	for i, e := range employees {
		t.AppendRow(table.Row{i + 1, e.ID, e.Num, e.DisplayName, e.Email})
	}
	t.Render()
}

func (p *Printer) clock(entry freee.TimeClock) string {
	s := entry.Datetime.In(p.location).Format("15:04")
	if entry.OriginalDatetime != nil && !entry.OriginalDatetime.Equal(entry.Datetime) {
		s += p.paint(text.Colors{text.FgHiBlack}, " (edited)")
	}
	return s
}

func (p *Printer) commands(types []freee.ClockType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = p.paint(text.Colors{text.Bold}, t.Command()) + " (" + t.Label() + ")"
	}
	return strings.Join(names, ", ")
}

func companyName(c freee.Company) string {
	if c.DisplayName != "" && c.DisplayName != c.Name {
		return c.Name + " / " + c.DisplayName
	}
	return c.Name
}

func optionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}
