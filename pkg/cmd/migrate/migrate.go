package migrate

import (
	"github.com/spf13/cobra"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/cmd/cmdutil"
	"github.com/mpapenbr/simlap-service-go/pkg/config"
	dbmigrate "github.com/mpapenbr/simlap-service-go/pkg/db/migrate"
)

var rollback bool

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		Long: "Applies the embedded migrations to the database. " +
			"With --down all migrations are reverted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdutil.SetupLogger()
			cmdutil.WaitForDB(cmd.Context())
			return startMigration()
		},
	}
	cmd.Flags().BoolVar(&rollback,
		"down",
		false,
		"revert all migrations (drops all data)")
	return cmd
}

func startMigration() error {
	if rollback {
		log.Warn("Reverting all migrations")
		if err := dbmigrate.RollbackDb(config.DB); err != nil {
			log.Error("rollback failed", log.ErrorField(err))
			return err
		}
		log.Info("Migrations reverted")
		return nil
	}
	if err := dbmigrate.MigrateDb(config.DB); err != nil {
		log.Error("migration failed", log.ErrorField(err))
		return err
	}
	log.Info("Database is up to date")
	return nil
}
