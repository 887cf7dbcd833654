package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/kintai/internal/app"
	"github.com/florianilch/kintai/internal/apperror"
	"github.com/florianilch/kintai/internal/freee"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	if err := loadDotenv(dotenvFile); err != nil {
		return err
	}
	return newRootCommand().Run(ctx, args)
}

// ReportError prints err and, if there is one, the remediation hint.
func ReportError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
	if hint := apperror.Hint(err); hint != "" {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "kintai",
		Usage:   "freee HR time clock from the command line",
		Version: app.Version,
		Description: "Getting started:\n" +
			"  kintai setup   # store the OAuth client id and secret\n" +
			"  kintai auth    # sign in to freee\n" +
			"  kintai info    # select company and employee\n" +
			"  kintai in      # clock in",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to settings file (TOML)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "log-exporter",
				Usage: "additional log export (none|stdout|otlp-http|otlp-grpc)",
				Value: string(app.DefaultConfigLogExporter),
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "directory holding config.json and token.json",
				Value: app.DefaultConfigDataDir,
			},
			&cli.StringFlag{
				Name:  "timezone",
				Usage: "IANA time zone deciding the calendar day",
				Value: app.DefaultConfigTimezone,
			},
			&cli.StringFlag{
				Name:  "api--base-url",
				Usage: "freee HR API base URL",
				Value: app.DefaultConfigAPIBaseURL,
			},
			&cli.DurationFlag{
				Name:  "api--timeout",
				Usage: "timeout for each API request",
				Value: app.DefaultConfigAPITimeout,
			},
			&cli.StringFlag{
				Name:  "oauth--auth-url",
				Usage: "OAuth authorization endpoint",
				Value: app.DefaultConfigOAuthAuthURL,
			},
			&cli.StringFlag{
				Name:  "oauth--token-url",
				Usage: "OAuth token endpoint",
				Value: app.DefaultConfigOAuthTokenURL,
			},
			&cli.StringFlag{
				Name:  "oauth--redirect-uri",
				Usage: "redirect URI registered for the app; a loopback http URL receives the code automatically",
				Value: app.DefaultConfigOAuthRedirectURI,
			},
			&cli.StringFlag{
				Name:  "storage--token",
				Usage: "token storage (file|keyring)",
				Value: string(app.DefaultConfigStorageToken),
			},
		},
		Commands: commands(),
	}
}

func commands() []*cli.Command {
	cmds := []*cli.Command{setupCommand(), authCommand(), infoCommand()}
	for _, clockType := range freee.ClockTypes {
		cmds = append(cmds, punchCommand(clockType))
	}
	return append(cmds, statusCommand(), availableCommand())
}
