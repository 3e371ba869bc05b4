package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"gitlab.com/testpaper/papergen/db/repositories"
	"gitlab.com/testpaper/papergen/models"
)

func NewSubjectCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage subjects",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(newSubjectAddCmd(open))
	cmd.AddCommand(newSubjectGetCmd(open))
	cmd.AddCommand(newSubjectListCmd(open))
	cmd.AddCommand(newSubjectCountCmd(open))
	cmd.AddCommand(newSubjectDeleteCmd(open))

	return cmd
}

func newSubjectAddCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")

			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			subject, err := store.Subjects.Save(cmd.Context(), models.Subject{Name: args[0], Description: description})
			if err != nil {
				return fmt.Errorf("could not create subject: %w", err)
			}

			printSubjects(cmd.OutOrStdout(), subject)
			return nil
		},
	}

	cmd.Flags().StringP("description", "d", "", "subject description")

	return cmd
}

func newSubjectGetCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Display a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			subject, err := store.Subjects.Get(cmd.Context(), ids[0])
			if err != nil {
				return fmt.Errorf("could not get subject %d: %w", ids[0], err)
			}

			printSubjects(cmd.OutOrStdout(), subject)
			return nil
		},
	}
}

func newSubjectListCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Display subjects page by page",
		Long: `Displays one page of subjects. Sort accepts "field" or "field,desc" and may be repeated.
With --all every subject is listed in a single table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")
			all, _ := cmd.Flags().GetBool("all")
			sortSpecs, _ := cmd.Flags().GetStringArray("sort")

			sort, err := repositories.ParseSort(sortSpecs...)
			if err != nil {
				return err
			}

			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if all {
				var subjects []models.Subject
				for subject, err := range store.Subjects.FindAll(cmd.Context(), sort) {
					if err != nil {
						return fmt.Errorf("could not list subjects: %w", err)
					}
					subjects = append(subjects, subject)
				}
				printSubjects(cmd.OutOrStdout(), subjects...)
				return nil
			}

			result, err := store.Subjects.FindPage(cmd.Context(), repositories.PageRequest(page, size, sort...))
			if err != nil {
				return fmt.Errorf("could not list subjects: %w", err)
			}

			printSubjects(cmd.OutOrStdout(), result.Content...)
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d subjects)\n",
				result.Number+1, result.TotalPages, result.TotalElements)
			return nil
		},
	}

	cmd.Flags().Int("page", 0, "zero-based page index")
	cmd.Flags().Int("size", repositories.DefaultPageSize, "page size")
	cmd.Flags().StringArray("sort", nil, "sort order, e.g. name,desc")
	cmd.Flags().BoolP("all", "a", false, "list every subject")

	return cmd
}

func newSubjectCountCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Display the number of subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.Subjects.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("could not count subjects: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
}

func newSubjectDeleteCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete subjects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if len(ids) == 1 {
				err = store.Subjects.DeleteByID(cmd.Context(), ids[0])
			} else {
				err = store.Subjects.DeleteAllByID(cmd.Context(), ids)
			}
			if err != nil {
				return fmt.Errorf("could not delete subjects: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d subject(s)\n", len(ids))
			return nil
		},
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid subject id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printSubjects(w io.Writer, subjects ...models.Subject) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Description", "Updated"})
	table.SetAutoFormatHeaders(false)

	for _, s := range subjects {
		table.Append([]string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			s.Description,
			s.UpdatedAt.Local().Format(time.DateTime),
		})
	}

	table.Render()
}
