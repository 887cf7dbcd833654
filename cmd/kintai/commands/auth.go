package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/florianilch/kintai/internal/apperror"
	"github.com/florianilch/kintai/internal/formatting"
	"github.com/florianilch/kintai/internal/oauth"
	"github.com/florianilch/kintai/internal/store"
)

// callbackTimeout bounds how long auth waits for the browser redirect.
const callbackTimeout = 5 * time.Minute

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in to freee and store the token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "code",
				Usage: "authorization code, skips the browser step",
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "print the authorization URL without opening a browser (implied when stdin is not a terminal)",
			},
		},
		Action: withRuntime(authAction),
	}
}

func authAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	code := cmd.String("code")
	if code == "" {
		var err error
		openBrowser := !cmd.Bool("no-browser") && rt.prompt.Interactive()
		if code, err = obtainCode(ctx, rt, openBrowser); err != nil {
			return err
		}
	}

	token, err := formatting.Spin(rt.stderr, "Exchanging authorization code...", func() (store.Token, error) {
		return rt.app.Authorize(ctx, code)
	})
	if err != nil {
		return err
	}

	if token.ExpiresAt.IsZero() {
		rt.printer.Success("Signed in")
	} else {
		rt.printer.Success("Signed in, access token valid until %s", token.ExpiresAt.In(rt.app.Location()).Format(time.DateTime))
	}
	rt.printer.Info("Next: run 'kintai info' to select your company and employee")
	return nil
}

// obtainCode sends the user to the authorization URL and returns the code,
// either from the loopback redirect or typed in by the user.
func obtainCode(ctx context.Context, rt *runtime, openBrowser bool) (string, error) {
	state := uuid.NewString()
	authURL, err := rt.app.AuthCodeURL(ctx, state)
	if err != nil {
		return "", err
	}

	if oauth.IsLoopbackRedirect(rt.app.RedirectURI()) {
		return receiveCode(ctx, rt, authURL, state, openBrowser)
	}

	showAuthURL(ctx, rt, authURL, openBrowser)
	code, err := rt.prompt.Line("Authorization code", "")
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", apperror.Auth("no authorization code entered")
	}
	return code, nil
}

func receiveCode(ctx context.Context, rt *runtime, authURL, state string, openBrowser bool) (string, error) {
	server, err := oauth.NewCallbackServer(rt.app.RedirectURI(), state)
	if err != nil {
		return "", err
	}

	errCh, err := server.Start(ctx)
	if err != nil {
		return "", fmt.Errorf("starting callback server: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.WarnContext(ctx, "callback server shutdown failed", "error", err)
		}
	}()

	showAuthURL(ctx, rt, authURL, openBrowser)
	rt.printer.Info("Waiting for the redirect to %s ...", rt.app.RedirectURI())

	waitCtx, cancel := context.WithTimeout(ctx, callbackTimeout)
	defer cancel()
	return server.Wait(waitCtx, errCh)
}

func showAuthURL(ctx context.Context, rt *runtime, authURL string, openBrowser bool) {
	rt.printer.Info("Open this URL to authorize kintai:\n\n  %s\n", authURL)
	if !openBrowser {
		return
	}
	if err := oauth.OpenBrowser(authURL); err != nil {
		slog.DebugContext(ctx, "could not open browser", "error", err)
	}
}
