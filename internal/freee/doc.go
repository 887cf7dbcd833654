// Package freee is a small client for the freee HR API endpoints used for
// time clocks: the current user, employees, punches and available punch
// types.
//
// Responses are decoded into explicit types. The client authenticates with
// a TokenProvider; if the API answers 401 the token is refreshed once and
// the request retried once. Other failures are classified with apperror.
package freee
