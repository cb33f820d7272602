package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yigit/prelimplanner/internal/app/models"
	"github.com/yigit/prelimplanner/internal/app/models/dto"
)

func addYearFlag(cmd *cobra.Command, year *string) {
	cmd.Flags().StringVar(year, "year", "", "Table year; defaults to the most recently populated table.")
}

func newCoursesCmd(opts *options) *cobra.Command {
	var year string
	cmd := &cobra.Command{
		Use:   "courses <semester> <prelim|final> [--year <year>]",
		Short: "Lists the course codes stored for a semester.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			codes, err := a.deps.ExamService.ListCourses(cmd.Context(), dto.TableQuery{Semester: args[0], ExamType: args[1], Year: year})
			if err != nil {
				return err
			}
			for _, code := range codes {
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
	addYearFlag(cmd, &year)
	return cmd
}

func newExamsCmd(opts *options) *cobra.Command {
	var year string
	cmd := &cobra.Command{
		Use:   "exams <semester> <prelim|final> <course code>...",
		Short: "Prints the stored exams of one or more courses.",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			examType, err := models.ParseExamType(args[1])
			if err != nil {
				return err
			}
			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			q := dto.TableQuery{Semester: args[0], ExamType: string(examType), Year: year}
			records, err := a.deps.ExamService.FetchMany(cmd.Context(), q, args[2:])
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), examType, records)
			return nil
		},
	}
	addYearFlag(cmd, &year)
	return cmd
}
