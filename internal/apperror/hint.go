package apperror

import (
	"errors"
)

// Hint returns the remediation for err, or an empty string when the user
// cannot do anything beyond reading the message.
func Hint(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return ""
	}

	switch appErr.Kind {
	case KindConfig:
		if errors.Is(appErr, ErrEmployeeNotSelected) {
			return "run 'kintai info' to select your company and employee"
		}
		return "run 'kintai setup' to configure the client credentials"
	case KindAuth:
		return "run 'kintai auth' to sign in again"
	case KindPermission:
		return "check the app's scopes (hr.time_clocks, hr.employees) and your role in the company"
	default:
		return ""
	}
}

// ErrEmployeeNotSelected marks configuration errors caused by missing
// company or employee ids rather than missing client credentials.
var ErrEmployeeNotSelected = errors.New("company and employee are not selected")
