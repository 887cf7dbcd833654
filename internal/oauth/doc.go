// Package oauth implements the freee OAuth2 authorization-code and
// refresh-token grants.
//
// freee issues a new refresh token on every refresh, so callers must persist
// the returned record each time. Client credentials are sent with HTTP Basic
// authentication.
//
// # Obtaining a code
//
// The default redirect URI is the out-of-band URN: freee shows the code in
// the browser and the user pastes it into the terminal. When the app is
// registered with a loopback redirect such as http://127.0.0.1:8765/callback,
// CallbackServer receives the code directly:
//
//	srv, _ := oauth.NewCallbackServer(redirectURI, state)
//	errCh, _ := srv.Start(ctx)
//	code, err := srv.Wait(ctx, errCh)
//	_ = srv.Shutdown(ctx)
//
// # Errors
//
// Rejections from the token endpoint (invalid or expired code, revoked
// refresh token) are reported as apperror.KindAuth; the user must run the
// interactive authorization again.
package oauth
