package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/phrasebook/internal/config"
	"github.com/at-ishikawa/phrasebook/internal/database"
	"github.com/at-ishikawa/phrasebook/schemas"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("config.Load > %w", err)
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			files, err := fs.Glob(schemas.Migrations, "migrations/*.sql")
			if err != nil {
				return fmt.Errorf("fs.Glob > %w", err)
			}
			sort.Strings(files)

			for _, file := range files {
				contents, err := schemas.Migrations.ReadFile(file)
				if err != nil {
					return fmt.Errorf("Migrations.ReadFile(%s) > %w", file, err)
				}
				if _, err := db.ExecContext(cmd.Context(), string(contents)); err != nil {
					return fmt.Errorf("db.ExecContext(%s) > %w", file, err)
				}
				slog.Default().Info("applied migration", "file", file)
			}
			return nil
		},
	}
}
