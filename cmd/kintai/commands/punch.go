package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/kintai/internal/formatting"
	"github.com/florianilch/kintai/internal/freee"
)

func punchCommand(clockType freee.ClockType) *cli.Command {
	return &cli.Command{
		Name:  clockType.Command(),
		Usage: "Record a " + strings.ToLower(clockType.Label()) + " punch",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "at",
				Usage: "time of the punch today (HH:MM), defaults to now",
			},
		},
		Action: withRuntime(func(ctx context.Context, cmd *cli.Command, rt *runtime) error {
			return punchAction(ctx, cmd, rt, clockType)
		}),
	}
}

func punchAction(ctx context.Context, cmd *cli.Command, rt *runtime, clockType freee.ClockType) error {
	var at *time.Time
	if value := cmd.String("at"); value != "" {
		t, err := parseClock(value, rt.app.Today())
		if err != nil {
			return err
		}
		at = &t
	}

	entry, err := formatting.Spin(rt.stderr, "Recording "+strings.ToLower(clockType.Label())+"...", func() (freee.TimeClock, error) {
		return rt.app.Punch(ctx, clockType, at)
	})
	if err != nil {
		return fmt.Errorf("%s failed: %w", strings.ToLower(clockType.Label()), err)
	}

	if entry.Datetime.IsZero() {
		if at != nil {
			entry.Datetime = *at
		} else {
			entry.Datetime = rt.app.Today()
		}
	}
	if entry.Type == "" {
		entry.Type = clockType
	}

	rt.printer.Punch(entry)
	return nil
}

// parseClock returns HH:MM on the day of today.
func parseClock(value string, today time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	return time.Date(today.Year(), today.Month(), today.Day(), t.Hour(), t.Minute(), 0, 0, today.Location()), nil
}
