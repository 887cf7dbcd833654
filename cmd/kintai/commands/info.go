package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/kintai/internal/apperror"
	"github.com/florianilch/kintai/internal/formatting"
	"github.com/florianilch/kintai/internal/freee"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Select the company and employee punches are recorded for",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "company",
				Usage: "company id, skips the company prompt",
			},
			&cli.IntFlag{
				Name:  "employee",
				Usage: "employee id, skips the employee prompt",
			},
		},
		Action: withRuntime(infoAction),
	}
}

func infoAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	user, err := formatting.Spin(rt.stderr, "Fetching companies...", func() (freee.User, error) {
		return rt.app.Me(ctx)
	})
	if err != nil {
		return err
	}
	if len(user.Companies) == 0 {
		return apperror.Permission(0, "the signed-in user belongs to no company")
	}

	rt.printer.Info("Companies:")
	rt.printer.Companies(user.Companies)

	company, err := selectCompany(rt, user.Companies, int64(cmd.Int("company")))
	if err != nil {
		return err
	}

	employeeID, err := selectEmployee(ctx, rt, company, int64(cmd.Int("employee")))
	if err != nil {
		return err
	}

	if _, err := rt.app.SelectEmployee(ctx, company.ID, employeeID); err != nil {
		return err
	}

	rt.printer.Success("Saved company %d and employee %d", company.ID, employeeID)
	rt.printer.Info("Ready: 'kintai in' clocks in, 'kintai out' clocks out, 'kintai status' shows today's punches")
	return nil
}

func selectCompany(rt *runtime, companies []freee.Company, wanted int64) (freee.Company, error) {
	if wanted != 0 {
		i := slices.IndexFunc(companies, func(c freee.Company) bool { return c.ID == wanted })
		if i < 0 {
			return freee.Company{}, apperror.Config("company %d is not one of your companies", wanted)
		}
		return companies[i], nil
	}

	if len(companies) == 1 {
		return companies[0], nil
	}

	choice, err := rt.prompt.Choose("Select company", len(companies), 1)
	if err != nil {
		return freee.Company{}, err
	}
	return companies[choice-1], nil
}

// selectEmployee picks the employee in company. Listing employees needs an
// admin role; other users fall back to their own employee id.
func selectEmployee(ctx context.Context, rt *runtime, company freee.Company, wanted int64) (int64, error) {
	if wanted != 0 {
		return wanted, nil
	}

	employees, err := formatting.Spin(rt.stderr, "Fetching employees...", func() ([]freee.Employee, error) {
		return rt.app.Employees(ctx, company.ID)
	})
	if err != nil {
		if company.EmployeeID != nil && apperror.Is(err, apperror.KindPermission) {
			rt.printer.Warn("Cannot list employees (%v), using your own employee id %d", err, *company.EmployeeID)
			return *company.EmployeeID, nil
		}
		return 0, err
	}

	if len(employees) == 0 {
		if company.EmployeeID != nil {
			return *company.EmployeeID, nil
		}
		return 0, apperror.Config("company %d has no employees visible to you", company.ID)
	}

	rt.printer.Info("Employees:")
	rt.printer.Employees(employees)

	if len(employees) == 1 {
		return employees[0].ID, nil
	}

	def := 0
	if company.EmployeeID != nil {
		def = slices.IndexFunc(employees, func(e freee.Employee) bool { return e.ID == *company.EmployeeID }) + 1
	}

	choice, err := rt.prompt.Choose(fmt.Sprintf("Select yourself in %s", company.Name), len(employees), def)
	if err != nil {
		return 0, err
	}
	return employees[choice-1].ID, nil
}
