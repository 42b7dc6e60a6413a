package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/expense-reimbursement/db"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "", "sql migrations directory on disk (default: migrations embedded in the binary)")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, lg, err := loadConfigAndLogger()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	defer conn.Close()

	goose.SetTableName("schema_migrations")

	dir := migrateDir
	if dir == "" {
		goose.SetBaseFS(db.Migrations)
		dir = db.MigrationsDir
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}

	lg.Info("running migrations", "command", command, "dir", dir)
	if err := goose.RunContext(ctx, command, conn, dir); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}
