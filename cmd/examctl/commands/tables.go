package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/yigit/prelimplanner/internal/app/models/dto"
)

func newTablesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Lists the populated exam tables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			tables, err := a.deps.ExamService.ListTables(cmd.Context())
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Table", "Semester", "Year", "Type", "Records", "Populated", "Artifact"})
			for _, info := range tables {
				t.AppendRow(table.Row{
					info.TableName, info.Semester, info.Year, info.ExamType,
					info.RecordCount, info.PopulatedAt.Local().Format(time.DateTime), info.ArtifactPath,
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.AddCommand(newDropTableCmd(opts))
	return cmd
}

func newDropTableCmd(opts *options) *cobra.Command {
	var year string
	cmd := &cobra.Command{
		Use:   "drop <semester> <prelim|final> [--year <year>]",
		Short: "Drops an exam table and removes it from the catalog.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			q := dto.TableQuery{Semester: args[0], ExamType: args[1], Year: year}
			if err := a.deps.ExamService.DropTable(cmd.Context(), q); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dropped %s %s exams\n", args[0], args[1])
			return nil
		},
	}
	addYearFlag(cmd, &year)
	return cmd
}
