package commands

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/kintai/internal/app"
	"github.com/florianilch/kintai/internal/prompt"
)

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Store the OAuth client id and secret",
		Description: "Asks for values not given as flags. An empty answer keeps the stored value.\n" +
			"Create the app in the freee developer console with the scopes hr.time_clocks and hr.employees.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "client-id",
				Usage: "OAuth client id",
			},
			&cli.StringFlag{
				Name:  "client-secret",
				Usage: "OAuth client secret",
			},
		},
		Action: withRuntime(setupAction),
	}
}

func setupAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	current, err := rt.app.StoredConfig(ctx)
	if err != nil {
		return err
	}

	input := app.SetupInput{
		ClientID:     cmd.String("client-id"),
		ClientSecret: cmd.String("client-secret"),
	}
	if input.ClientID == "" {
		if input.ClientID, err = optional(rt.prompt.Line("Client ID", current.ClientID)); err != nil {
			return err
		}
	}
	if input.ClientSecret == "" {
		if input.ClientSecret, err = optional(rt.prompt.Secret("Client secret", current.ClientSecret != "")); err != nil {
			return err
		}
	}

	if _, err := rt.app.Setup(ctx, input); err != nil {
		return err
	}

	rt.printer.Success("Configuration saved")
	rt.printer.Info("Next: run 'kintai auth' to sign in")
	return nil
}

// optional treats running out of input as an empty answer.
func optional(answer string, err error) (string, error) {
	if errors.Is(err, prompt.ErrNoInput) {
		return "", nil
	}
	return answer, err
}
