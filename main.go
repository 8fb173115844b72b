package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cppla/dualfetch/config"
	"github.com/cppla/dualfetch/database"
	"github.com/cppla/dualfetch/rest"
	"github.com/cppla/dualfetch/routes"
	"github.com/cppla/dualfetch/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dualfetch",
		Short:         "Blog served through an ORM and through PostgREST side by side",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logger early
			return utils.InitLogger(config.Load())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := config.InitDatabase()
				if err != nil {
					return err
				}
				if err := database.RunMigrations(db); err != nil {
					return err
				}
				utils.Sugar.Info("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the demo data set (idempotent)",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := config.InitDatabase()
				if err != nil {
					return err
				}
				if err := database.RunMigrations(db); err != nil {
					return err
				}
				res, err := database.Seed(db)
				if err != nil {
					return err
				}
				utils.Sugar.Infow("seed complete",
					"users", len(res.Users),
					"categories", len(res.Categories),
					"tags", len(res.Tags),
					"posts", len(res.Posts),
					"comments", res.Comments,
				)
				return nil
			},
		},
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg := config.Get()
	defer func() { _ = utils.Logger.Sync() }()

	db, err := config.InitDatabase()
	if err != nil {
		return err
	}

	opts := []rest.Option{rest.WithTimeout(time.Duration(cfg.PostgRESTTimeoutSec) * time.Second)}
	if cfg.PostgRESTSchema != "" {
		opts = append(opts, rest.WithSchema(cfg.PostgRESTSchema))
	}
	client := rest.NewClient(cfg.PostgRESTURL, opts...)

	r, err := routes.SetupRouter(db, client)
	if err != nil {
		return err
	}

	utils.Sugar.Infow("starting server", "port", cfg.AppPort, "postgrest", client.BaseURL(), "driver", cfg.DatabaseDriver)
	if err := utils.GraceServer(ctx, ":"+cfg.AppPort, r); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
