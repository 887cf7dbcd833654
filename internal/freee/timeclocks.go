package freee

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Date converts t to a calendar date in t's location.
func Date(t time.Time) openapi_types.Date {
	y, m, d := t.Date()
	return openapi_types.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func formatDate(d openapi_types.Date) string {
	return d.Format(openapi_types.DateFormat)
}

// Punch records a time clock punch for the employee.
func (c *Client) Punch(ctx context.Context, employeeID int64, req PunchRequest) (TimeClock, error) {
	if !req.Type.Valid() {
		return TimeClock{}, fmt.Errorf("unknown time clock type %q", req.Type)
	}

	var resp punchResponse
	path := fmt.Sprintf("employees/%d/time_clocks", employeeID)
	if err := c.Call(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return TimeClock{}, err
	}

	return resp.timeClock(), nil
}

// TimeClocks returns the employee's punches on date, oldest first.
func (c *Client) TimeClocks(ctx context.Context, employeeID, companyID int64, date openapi_types.Date) ([]TimeClock, error) {
	var list timeClockList
	path := fmt.Sprintf("employees/%d/time_clocks", employeeID)
	query := Params{
		{Name: "company_id", Value: companyID},
		{Name: "from_date", Value: formatDate(date)},
		{Name: "to_date", Value: formatDate(date)},
	}
	if err := c.Call(ctx, http.MethodGet, path, query, nil, &list); err != nil {
		return nil, err
	}

	entries := []TimeClock(list)
	slices.SortStableFunc(entries, func(a, b TimeClock) int {
		return a.Datetime.Compare(b.Datetime)
	})
	return entries, nil
}

// AvailableTypes returns the punch kinds the employee may record on date.
func (c *Client) AvailableTypes(ctx context.Context, employeeID, companyID int64, date openapi_types.Date) ([]ClockType, error) {
	var resp availableTypesResponse
	path := fmt.Sprintf("employees/%d/time_clocks/available_types", employeeID)
	query := Params{
		{Name: "company_id", Value: companyID},
		{Name: "date", Value: formatDate(date)},
	}
	if err := c.Call(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}

	return resp.types(), nil
}

// NextTypes derives which punches follow a day's entries. Entries must be
// sorted oldest first.
func NextTypes(entries []TimeClock) []ClockType {
	if len(entries) == 0 {
		return []ClockType{ClockIn}
	}

	switch entries[len(entries)-1].Type {
	case ClockIn, BreakEnd:
		return []ClockType{ClockOut, BreakBegin}
	case BreakBegin:
		return []ClockType{BreakEnd}
	default:
		return []ClockType{ClockIn}
	}
}
