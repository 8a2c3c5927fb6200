package cmd

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tgshanahan/killbill-adyen-plugin/config"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Run: func(_ *cobra.Command, _ []string) {
		cfg, err := config.Load()
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load configuration")
		}

		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		if err := goose.SetDialect("mysql"); err != nil {
			logrus.WithError(err).Fatal("Failed to set migration dialect")
		}
		if err := goose.Up(db, migrationsDir); err != nil {
			logrus.WithError(err).Fatal("Migrations failed")
		}
		logrus.Info("Migrations applied")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "db/migrations", "Migrations directory")
}
