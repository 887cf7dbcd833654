package oauth

import (
	"golang.org/x/oauth2"
)

const (
	// DefaultAuthURL is freee's authorization endpoint.
	DefaultAuthURL = "https://accounts.secure.freee.co.jp/public_api/authorize"

	// DefaultTokenURL is freee's token endpoint.
	DefaultTokenURL = "https://accounts.secure.freee.co.jp/public_api/token"

	// RedirectURIOutOfBand makes freee display the authorization code
	// instead of redirecting.
	RedirectURIOutOfBand = "urn:ietf:wg:oauth:2.0:oob"
)

// Endpoint defines the OAuth2 endpoints for freee accounts.
var Endpoint = oauth2.Endpoint{
	AuthURL:   DefaultAuthURL,
	TokenURL:  DefaultTokenURL,
	AuthStyle: oauth2.AuthStyleInHeader,
}

// Scopes are the permissions required for time clock operations.
// offline_access is needed to receive a refresh token.
var Scopes = []string{"hr.time_clocks", "hr.employees", "offline_access"}
