package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/kintai/internal/formatting"
	"github.com/florianilch/kintai/internal/freee"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the punches of a day",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yesterday",
				Aliases: []string{"y"},
				Usage:   "show yesterday",
			},
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "show the given day (YYYY-MM-DD), wins over --yesterday",
			},
		},
		Action: withRuntime(statusAction),
	}
}

func statusAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	today := rt.app.Today()
	date, err := statusDate(cmd.String("date"), cmd.Bool("yesterday"), today)
	if err != nil {
		return err
	}

	entries, err := formatting.Spin(rt.stderr, "Fetching punches...", func() ([]freee.TimeClock, error) {
		return rt.app.TimeClocks(ctx, date)
	})
	if err != nil {
		return err
	}

	rt.printer.TimeClocks(date, today, entries)
	return nil
}

// statusDate resolves the day to show. An explicit date wins over yesterday.
func statusDate(date string, yesterday bool, today time.Time) (time.Time, error) {
	switch {
	case date != "":
		d, err := time.ParseInLocation(time.DateOnly, date, today.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
		}
		return d, nil
	case yesterday:
		return today.AddDate(0, 0, -1), nil
	default:
		return today, nil
	}
}

func availableCommand() *cli.Command {
	return &cli.Command{
		Name:   "available",
		Usage:  "List the punches that can be recorded now",
		Action: withRuntime(availableAction),
	}
}

func availableAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	today := rt.app.Today()
	types, err := formatting.Spin(rt.stderr, "Fetching available punches...", func() ([]freee.ClockType, error) {
		return rt.app.AvailableTypes(ctx, today)
	})
	if err != nil {
		return err
	}

	rt.printer.AvailableTypes(today, types)
	return nil
}
