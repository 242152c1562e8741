package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/safefam/api/config"
	"github.com/safefam/api/internal/repository/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE:  runMigrateUp,
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			RunE:  runMigrateStatus,
		},
	)
	return cmd
}

func openMigrator(cmd *cobra.Command) (*postgres.Migrator, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	setupLogger(cfg)

	db, err := postgres.NewDB(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewMigrator(db, cfg.Database.MigrationsDir), func() { db.Close() }, nil
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	m, closeDB, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	applied, err := m.Up(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	m, closeDB, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	statuses, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
	for _, s := range statuses {
		appliedAt := "pending"
		if s.Applied && s.AppliedAt != nil {
			appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, s.Name, appliedAt)
	}
	return w.Flush()
}
