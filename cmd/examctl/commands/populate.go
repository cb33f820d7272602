package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yigit/prelimplanner/internal/app/models"
	"github.com/yigit/prelimplanner/internal/app/models/dto"
)

func newPopulateCmd(opts *options) *cobra.Command {
	var (
		replace      bool
		fromArtifact string
	)
	cmd := &cobra.Command{
		Use:   "populate <semester> <prelim|final> [--replace] [--from-artifact <path>]",
		Short: "Scrapes an exam schedule and loads it into its table.",
		Args:  cobra.ExactArgs(2),
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

			var res *dto.PopulateResponse
			if fromArtifact != "" {
				scraped, err := a.deps.Scraper.ReadArtifact(fromArtifact, args[0], examType)
				if err != nil {
					return err
				}
				res, err = a.deps.ExamService.Import(cmd.Context(), scraped, replace)
				if err != nil {
					return err
				}
			} else {
				res, err = a.deps.ExamService.Populate(cmd.Context(), &dto.PopulateRequest{
					Semester: args[0],
					ExamType: string(examType),
					Replace:  replace,
				})
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d records into %s (%d total)\n", res.Inserted, res.TableName, res.Total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Delete the table's existing rows before loading.")
	cmd.Flags().StringVar(&fromArtifact, "from-artifact", "", "Load a saved artifact instead of fetching the registrar page.")
	return cmd
}
