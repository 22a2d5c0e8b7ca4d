package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appModels "github.com/unigate/admissions/internal/app/models"
	appRepos "github.com/unigate/admissions/internal/app/repositories"
	"github.com/unigate/admissions/internal/bootstrap"
	"github.com/unigate/admissions/internal/config"
	"github.com/unigate/admissions/internal/seed"
)

// env is what every subcommand needs once the config is loaded
type env struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

func connect() (*env, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, err
	}
	pool, err := bootstrap.ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, pool: pool, logger: lgr}, nil
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "admissionsctl",
		Short:         "Maintenance tasks for the admissions database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.AddCommand(
		newMigrateCmd(out),
		newSeedCmd(out),
		newRoleCmd(out, "grant-admin", "Give an account the admin role", true),
		newRoleCmd(out, "revoke-admin", "Take the admin role away from an account", false),
		newLookupsCmd(out),
	)
	return root
}

func newMigrateCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			defer e.close()

			if err := bootstrap.RunMigrations(cmd.Context(), e.pool, e.logger); err != nil {
				return err
			}
			success(out, "Migrations applied")
			return nil
		},
	}
}

func newSeedCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert default lookups and the configured admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			defer e.close()

			admin := seed.AdminAccount{Email: e.cfg.Admin.Email, Password: e.cfg.Admin.Password}
			if err := seed.CreateDefaultData(cmd.Context(), e.pool, admin, e.logger); err != nil {
				return err
			}
			success(out, "Default data is in place")
			return nil
		},
	}
}

func newRoleCmd(out io.Writer, use, short string, grant bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			defer e.close()

			repos := appRepos.NewRepositories(e.pool)
			return changeRole(cmd.Context(), out, repos.UserRepository, repos.RoleRepository, args[0], grant)
		},
	}
}

type userFinder interface {
	GetByEmail(ctx context.Context, email string) (*appModels.User, error)
}

type roleChanger interface {
	Assign(ctx context.Context, userID uuid.UUID, roleName string) error
	Revoke(ctx context.Context, userID uuid.UUID, roleName string) error
}

func changeRole(ctx context.Context, out io.Writer, users userFinder, roles roleChanger, email string, grant bool) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", email, err)
	}

	if grant {
		if err := roles.Assign(ctx, user.ID, appModels.RoleAdmin); err != nil {
			return err
		}
		success(out, "%s is now an admin", email)
		return nil
	}

	if err := roles.Revoke(ctx, user.ID, appModels.RoleAdmin); err != nil {
		return err
	}
	warning(out, "%s is no longer an admin", email)
	return nil
}

func newLookupsCmd(out io.Writer) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "lookups [slug]",
		Short: "Print the rows of a lookup table, or the table names without a slug",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			defer e.close()

			registry := appRepos.NewRepositories(e.pool).Lookups
			if len(args) == 0 {
				slugs := registry.Slugs()
				sort.Strings(slugs)
				for _, s := range slugs {
					fmt.Fprintln(out, s)
				}
				return nil
			}

			table, ok := registry.Table(args[0])
			if !ok {
				return fmt.Errorf("unknown lookup table %q", args[0])
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			rows, err := table.List(ctx, !all)
			if err != nil {
				return err
			}
			renderLookupTable(out, table.Definition(), rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive rows")
	return cmd
}

func success(out io.Writer, format string, a ...interface{}) {
	color.New(color.FgGreen).Fprintf(out, format+"\n", a...)
}

func warning(out io.Writer, format string, a ...interface{}) {
	color.New(color.FgYellow).Fprintf(out, format+"\n", a...)
}
