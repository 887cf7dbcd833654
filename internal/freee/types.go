package freee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ClockType is the kind of a time clock punch.
type ClockType string

const (
	ClockIn    ClockType = "clock_in"
	ClockOut   ClockType = "clock_out"
	BreakBegin ClockType = "break_begin"
	BreakEnd   ClockType = "break_end"
)

// ClockTypes lists all punch kinds in display order.
var ClockTypes = []ClockType{ClockIn, ClockOut, BreakBegin, BreakEnd}

// Valid reports whether t is a known punch kind.
func (t ClockType) Valid() bool {
	switch t {
	case ClockIn, ClockOut, BreakBegin, BreakEnd:
		return true
	}
	return false
}

// Label returns a human-readable name.
func (t ClockType) Label() string {
	switch t {
	case ClockIn:
		return "Clock in"
	case ClockOut:
		return "Clock out"
	case BreakBegin:
		return "Break begin"
	case BreakEnd:
		return "Break end"
	}
	return string(t)
}

// Command returns the CLI subcommand that records this punch.
func (t ClockType) Command() string {
	switch t {
	case ClockIn:
		return "in"
	case ClockOut:
		return "out"
	case BreakBegin:
		return "break-begin"
	case BreakEnd:
		return "break-end"
	}
	return ""
}

// TimeClock is a recorded punch.
type TimeClock struct {
	ID               int64      `json:"id"`
	Date             Day        `json:"date"`
	Type             ClockType  `json:"type"`
	Datetime         time.Time  `json:"datetime"`
	OriginalDatetime *time.Time `json:"original_datetime,omitempty"`
	Note             string     `json:"note,omitempty"`
}

// Day is a calendar date in a response. freee sends "2006-01-02", a full
// timestamp or null depending on the endpoint; null and "" decode to zero.
type Day struct {
	openapi_types.Date
}

func (d *Day) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Day{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Day{}
		return nil
	}

	if t, err := time.Parse(openapi_types.DateFormat, s); err == nil {
		d.Date = openapi_types.Date{Time: t}
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Date = Date(t)
	return nil
}

// PunchRequest records a punch for the base date. Datetime is optional;
// freee uses the current time when it is empty.
type PunchRequest struct {
	CompanyID int64              `json:"company_id"`
	Type      ClockType          `json:"type"`
	BaseDate  openapi_types.Date `json:"base_date"`
	Datetime  string             `json:"datetime,omitempty"`
}

// PunchDatetimeFormat is the layout freee expects for PunchRequest.Datetime.
const PunchDatetimeFormat = "2006-01-02 15:04:05"

// User is the authenticated freee user.
type User struct {
	ID        int64     `json:"id"`
	Companies []Company `json:"companies"`
}

// Company is a company the user belongs to.
type Company struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	// EmployeeID is the user's own employee record in this company, if any.
	EmployeeID *int64 `json:"employee_id,omitempty"`
}

// Employee is an employee of a company.
type Employee struct {
	ID          int64  `json:"id"`
	Num         string `json:"num,omitempty"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

// timeClockList accepts both a bare array and {"items": [...]}.
type timeClockList []TimeClock

func (l *timeClockList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []TimeClock
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var wrapped struct {
		Items []TimeClock `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Items
	return nil
}

// availableTypesResponse accepts both "available_types" and "types".
type availableTypesResponse struct {
	AvailableTypes []ClockType `json:"available_types"`
	Types          []ClockType `json:"types"`
	BaseDate       Day         `json:"base_date"`
}

func (r availableTypesResponse) types() []ClockType {
	if r.AvailableTypes != nil {
		return r.AvailableTypes
	}
	return r.Types
}

// punchResponse accepts a punch wrapped in "employee_time_clock" or bare.
type punchResponse struct {
	EmployeeTimeClock *TimeClock `json:"employee_time_clock"`
	TimeClock
}

func (r punchResponse) timeClock() TimeClock {
	if r.EmployeeTimeClock != nil {
		return *r.EmployeeTimeClock
	}
	return r.TimeClock
}

type employeesResponse struct {
	Employees  []Employee `json:"employees"`
	TotalCount int        `json:"total_count,omitempty"`
}

// errorResponse covers freee's error bodies: {"message": ...} or
// {"status_code": 400, "errors": [{"type": ..., "messages": [...]}]}.
type errorResponse struct {
	Message string `json:"message"`
	Errors  []struct {
		Type     string          `json:"type"`
		Messages json.RawMessage `json:"messages"`
	} `json:"errors"`
}
