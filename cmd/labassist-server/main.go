package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/labassist/labassist/internal/config"
	"github.com/labassist/labassist/internal/domain/admin"
	"github.com/labassist/labassist/internal/domain/diagnostics"
	"github.com/labassist/labassist/internal/platform/auth"
	"github.com/labassist/labassist/internal/platform/db"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "labassist-server",
		Short:        "Lab records API server",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(adminCmd())
	root.AddCommand(classifyCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	withMigrator := func(fn func(ctx context.Context, m *db.Migrator, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return fn(cmd.Context(), db.NewMigrator(cfg.DatabaseURL), cmd.OutOrStdout())
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator, out io.Writer) error {
			if _, err := m.Up(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			v, err := m.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Database is at version %d.\n", v)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator, out io.Writer) error {
			if err := m.Down(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Rolled back one migration.")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator, out io.Writer) error {
			return m.Status(ctx)
		}),
	})
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "User administration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admin user if no users exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := admin.NewService(admin.NewLabRepo(pool), admin.NewUserRepo(pool), auth.NewIssuer(cfg.JWTSecretKey, cfg.TokenTTL))
			created, err := svc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created admin user %s.\n", cfg.AdminEmail)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Users already exist; nothing to do.")
			}
			return nil
		},
	})
	return cmd
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <value> [range]",
		Short: "Classify a test value against a reference range",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var status diagnostics.Status
			if len(args) == 2 {
				status = diagnostics.Classify(args[0], args[1])
			} else {
				status = diagnostics.ClassifyRange(args[0], nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}
