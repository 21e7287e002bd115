package cmd

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-users/config"
	"github.com/vibast-solutions/ms-go-users/migrations"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) == 1 {
		command = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err = configureLogging(cfg); err != nil {
		return err
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logrus.WithField("command", command).Info("Running migrations")
	if err = migrations.Run(ctx, db, command); err != nil {
		logrus.WithError(err).WithField("command", command).Error("Migration failed")
		return err
	}
	logrus.WithField("command", command).Info("Migrations finished")
	return nil
}
