package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/kintai/internal/app"
	"github.com/florianilch/kintai/internal/formatting"
	"github.com/florianilch/kintai/internal/observability"
	"github.com/florianilch/kintai/internal/prompt"
)

// runtime holds what an action needs besides its flags.
type runtime struct {
	app     *app.App
	printer *formatting.Printer
	prompt  *prompt.Prompter
	stdout  io.Writer
	stderr  io.Writer
}

type runtimeAction func(ctx context.Context, cmd *cli.Command, rt *runtime) error

// withRuntime loads settings, sets up logging and builds the app before
// running action.
func withRuntime(action runtimeAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		root := cmd.Root()
		stdin := readerOr(root.Reader, os.Stdin)
		stdout := writerOr(root.Writer, os.Stdout)
		stderr := writerOr(root.ErrWriter, os.Stderr)

		cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Set up observability before creating app
		shutdown, err := observability.Instrument(ctx, observability.Options{
			Level:    cfg.LogLevel,
			Format:   string(cfg.LogFormat),
			Exporter: string(cfg.LogExporter),
			Writer:   stderr,
		})
		if err != nil {
			return fmt.Errorf("failed to set up observability layer: %w", err)
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				fmt.Fprintf(stderr, "warning: flushing logs: %v\n", err)
			}
		}()

		application, err := app.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}

		return action(ctx, cmd, &runtime{
			app:     application,
			printer: formatting.NewPrinter(stdout, formatting.IsTerminal(stdout), application.Location()),
			prompt:  prompt.New(stdin, stdout),
			stdout:  stdout,
			stderr:  stderr,
		})
	}
}

func readerOr(r io.Reader, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func writerOr(w io.Writer, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
