package freee

import (
	"context"
	"net/http"
)

// employeesPageSize is the largest page the employees endpoint returns.
const employeesPageSize = 100

// Me returns the authenticated user and their companies.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.Call(ctx, http.MethodGet, "users/me", nil, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Employees returns the first page of the company's employees.
func (c *Client) Employees(ctx context.Context, companyID int64) ([]Employee, error) {
	var resp employeesResponse
	query := Params{
		{Name: "company_id", Value: companyID},
		{Name: "limit", Value: employeesPageSize},
	}
	if err := c.Call(ctx, http.MethodGet, "employees", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Employees, nil
}
