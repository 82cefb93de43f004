package main

import (
	"context"
	"fmt"
	"os"
	"time"

	configs "github.com/InventorsDev/inventor-backend-sub000/config"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/database"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inventors",
		Short:         "Inventors community backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedAdminCmd())
	return root
}

// bootstrap loads configuration and builds the logger every command needs.
func bootstrap() (*configs.Config, *logger.Logger, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(config)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return config, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			app, err := newApp(cmd.Context(), config, log)
			if err != nil {
				return err
			}
			return app.run()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create Postgres tables and Mongo indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			db, err := database.NewPostgresDB(config)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate postgres: %w", err)
			}

			client, mdb, err := database.NewMongoDB(ctx, config.Mongo)
			if err != nil {
				return err
			}
			defer database.CloseMongo(context.Background(), client)
			if err := database.EnsureMongoIndexes(ctx, mdb); err != nil {
				return fmt.Errorf("ensure mongo indexes: %w", err)
			}

			log.InfoWithContext(ctx, "Migrations applied").Log()
			return nil
		},
	}
}

func seedAdminCmd() *cobra.Command {
	var seed database.AdminSeed

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the bootstrap admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if seed.Password == "" {
				seed.Password = os.Getenv("ADMIN_PASSWORD")
			}
			if seed.Email == "" || len(seed.Password) < 8 {
				return fmt.Errorf("an email and a password of at least 8 characters are required")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client, mdb, err := database.NewMongoDB(ctx, config.Mongo)
			if err != nil {
				return err
			}
			defer database.CloseMongo(context.Background(), client)

			created, err := database.SeedAdmin(ctx, mdb, seed)
			if err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}

			log.InfoWithContext(ctx, "Admin seed finished").
				String("email", seed.Email).
				Bool("created", created).
				Log()
			return nil
		},
	}

	cmd.Flags().StringVar(&seed.Email, "email", os.Getenv("ADMIN_EMAIL"), "admin email")
	cmd.Flags().StringVar(&seed.Password, "password", "", "admin password (defaults to $ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&seed.FirstName, "first-name", "Admin", "admin first name")
	cmd.Flags().StringVar(&seed.LastName, "last-name", "Inventors", "admin last name")
	cmd.Flags().StringVar(&seed.Phone, "phone", "", "admin phone")
	return cmd
}
