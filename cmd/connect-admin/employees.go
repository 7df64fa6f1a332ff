package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/leanchem/connect-api/internal/bootstrap"
	"github.com/leanchem/connect-api/internal/data"
	"github.com/leanchem/connect-api/internal/domain/model"
)

const migrationTimeout = 5 * time.Minute

func connectDB(ctx *commandContext) (*sql.DB, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: ctx.Config.Postgres,
		Logger:   ctx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return db, nil
}

func withEmployeeRepo(ctx *commandContext, fn func(repo *data.EmployeeRepo) error) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			ctx.Logger.Error("close database failed", "error", cerr)
		}
	}()
	return fn(data.NewEmployeeRepo(db))
}

func runMigrate(ctx *commandContext, _ []string) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			ctx.Logger.Error("close database failed", "error", cerr)
		}
	}()

	mctx, cancel := context.WithTimeout(ctx.Ctx, migrationTimeout)
	defer cancel()
	return bootstrap.RunMigrations(mctx, db, ctx.Logger)
}

func runEmployeeAdd(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("employee-add", flag.ContinueOnError)
	email := fs.String("email", "", "employee email (required)")
	name := fs.String("name", "", "employee display name (required)")
	role := fs.String("role", "", "role: admin, product manager, sales and stock, sales, logistic (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withEmployeeRepo(ctx, func(repo *data.EmployeeRepo) error {
		employee, err := repo.Create(ctx.Ctx, &model.CreateEmployeeRequest{
			Email: *email,
			Name:  *name,
			Role:  *role,
		})
		if err != nil {
			return err
		}
		return writef(os.Stdout, "added %s (%s) as %s\n", employee.Email, employee.Name, employee.Role)
	})
}

func runEmployeeList(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("employee-list", flag.ContinueOnError)
	limit := fs.Int("limit", 100, "maximum rows to print")
	offset := fs.Int("offset", 0, "rows to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withEmployeeRepo(ctx, func(repo *data.EmployeeRepo) error {
		employees, err := repo.List(ctx.Ctx, *limit, *offset)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		if err := writef(w, "EMAIL\tNAME\tROLE\tCREATED\n"); err != nil {
			return err
		}
		for _, e := range employees {
			if err := writef(w, "%s\t%s\t%s\t%s\n",
				e.Email, e.Name, e.Role, e.CreatedAt.Format(time.RFC3339)); err != nil {
				return err
			}
		}
		return w.Flush()
	})
}

func runEmployeeSetRole(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("employee-set-role", flag.ContinueOnError)
	email := fs.String("email", "", "employee email (required)")
	role := fs.String("role", "", "new role (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *role == "" {
		return errors.New("both -email and -role are required")
	}

	return withEmployeeRepo(ctx, func(repo *data.EmployeeRepo) error {
		employee, err := repo.Update(ctx.Ctx, *email, model.UpdateEmployeeRequest{Role: role})
		if err != nil {
			return err
		}
		return writef(os.Stdout, "%s is now %s\n", employee.Email, employee.Role)
	})
}

func runEmployeeRemove(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("employee-remove", flag.ContinueOnError)
	email := fs.String("email", "", "employee email (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	return withEmployeeRepo(ctx, func(repo *data.EmployeeRepo) error {
		deleted, err := repo.Delete(ctx.Ctx, *email)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("no employee with email %s", *email)
		}
		return writef(os.Stdout, "removed %s\n", *email)
	})
}

func runCheckEmployee(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("check-employee", flag.ContinueOnError)
	email := fs.String("email", "", "email to check (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	return withEmployeeRepo(ctx, func(repo *data.EmployeeRepo) error {
		status, err := repo.CheckEmployeeStatus(ctx.Ctx, model.NormalizeEmail(*email))
		if err != nil {
			return err
		}
		if !status.IsEmployee {
			return writef(os.Stdout, "%s is not a registered employee\n", *email)
		}
		return writef(os.Stdout, "%s: %s (%s)\n", status.Email, status.Name, status.Role)
	})
}
