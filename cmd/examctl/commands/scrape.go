package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/yigit/prelimplanner/internal/app/models"
	"github.com/yigit/prelimplanner/internal/app/scraper"
	"github.com/yigit/prelimplanner/internal/bootstrap"
)

func newScrapeCmd(opts *options) *cobra.Command {
	var fromArtifact string
	cmd := &cobra.Command{
		Use:   "scrape <semester> <prelim|final> [--from-artifact <path>]",
		Short: "Scrapes an exam schedule and prints the parsed records without storing them.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			examType, err := models.ParseExamType(args[1])
			if err != nil {
				return err
			}
			cfg, lgr, err := opts.load()
			if err != nil {
				return err
			}
			_, s, err := bootstrap.NewScraper(cfg, lgr)
			if err != nil {
				return err
			}

			var res *scraper.Result
			if fromArtifact != "" {
				res, err = s.ReadArtifact(fromArtifact, args[0], examType)
			} else {
				res, err = s.Scrape(cmd.Context(), args[0], examType)
			}
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&fromArtifact, "from-artifact", "", "Parse a saved artifact instead of fetching the registrar page.")
	return cmd
}

func printResult(out io.Writer, res *scraper.Result) {
	fmt.Fprintf(out, "%s (%d records, artifact %s)\n", res.Header, len(res.Records), res.ArtifactPath)
	printRecords(out, res.ExamType, res.Records)
}

func printRecords(out io.Writer, examType models.ExamType, records []models.ExamRecord) {
	t := newTable(out)
	header := table.Row{}
	for _, col := range examType.Columns() {
		header = append(header, col)
	}
	t.AppendHeader(header)

	for _, rec := range records {
		if examType == models.ExamTypeFinal {
			t.AppendRow(table.Row{rec.CourseCode, rec.ExamDate, rec.ExamTime, rec.TestType, rec.ExamLocations})
		} else {
			t.AppendRow(table.Row{rec.CourseCode, rec.ExamDate, rec.ExamLocations})
		}
	}
	t.Render()
}
