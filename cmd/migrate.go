package cmd

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"gitlab.com/testpaper/papergen/db/migrations"
)

// NewMigrateCmd builds the migrate commands. open must not apply migrations itself.
func NewMigrateCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the sqlite schema",
		Long:  `Applies, rolls back and lists the embedded schema migrations. Only the sqlite driver has a schema.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			sqlDB, err := store.SQL()
			if err != nil {
				return err
			}
			if err := migrations.Up(sqlDB); err != nil {
				return err
			}
			return printVersion(cmd, sqlDB)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			sqlDB, err := store.SQL()
			if err != nil {
				return err
			}
			if err := migrations.Down(sqlDB); err != nil {
				return err
			}
			return printVersion(cmd, sqlDB)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List the migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			sqlDB, err := store.SQL()
			if err != nil {
				return err
			}
			statuses, err := migrations.Status(sqlDB)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Version", "Migration", "Status", "Applied At"})
			table.SetAutoFormatHeaders(false)
			for _, s := range statuses {
				appliedAt := ""
				if s.AppliedAt != nil {
					appliedAt = s.AppliedAt.Local().Format(time.DateTime)
				}
				table.Append([]string{strconv.FormatInt(s.Version, 10), filepath.Base(s.Name), s.Status, appliedAt})
			}
			table.Render()
			return nil
		},
	})

	return cmd
}

func printVersion(cmd *cobra.Command, db *sql.DB) error {
	v, err := migrations.Version(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", v)
	return nil
}
