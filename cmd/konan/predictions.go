package main

import (
	"github.com/jrsteele09/go-konan-sdk/internal/output"
	"github.com/jrsteele09/go-konan-sdk/internal/utils"
	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/spf13/cobra"
)

type rawPageView struct {
	Count   int              `json:"count" yaml:"count"`
	Next    string           `json:"next" yaml:"next"`
	Results []map[string]any `json:"results" yaml:"results"`
}

func newPredictionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "predictions",
		Aliases: []string{"prediction"},
		Short:   "Browse a deployment's predictions",
	}

	list := &cobra.Command{
		Use:   "list DEPLOYMENT_UUID",
		Short: "List predictions, following pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			window, err := parseWindow(cmd)
			if err != nil {
				return err
			}
			maxPages, _ := cmd.Flags().GetInt("max-pages")
			raw, _ := cmd.Flags().GetBool("raw")
			s, err := connect(cmd)
			if err != nil {
				return err
			}

			if raw {
				page, err := s.GetPredictionsPage(cmd.Context(), args[0], window)
				if err != nil {
					return err
				}
				return p.Print(rawPageView{
					Count:   utils.Value(page.Count),
					Next:    utils.Value(page.Next),
					Results: page.Results,
				}, func() *output.Table {
					t := output.NewTable("COUNT", "RESULTS", "NEXT")
					t.AddRow(formatJSON(utils.Value(page.Count)), formatJSON(len(page.Results)), utils.ValueOr(page.Next, "-"))
					return t
				})
			}

			paginator, err := s.GetPredictions(cmd.Context(), args[0], window)
			if err != nil {
				return err
			}
			views := []predictionView{}
			pages := 0
			for items, err := range paginator.Pages(cmd.Context()) {
				if err != nil {
					return err
				}
				for _, item := range items {
					views = append(views, newPredictionView(item))
				}
				pages++
				if maxPages > 0 && pages >= maxPages {
					break
				}
			}
			return p.Print(views, func() *output.Table {
				t := output.NewTable("PREDICTION", "OUTPUT", "FEATURES", "FEEDBACK")
				for _, v := range views {
					t.AddRow(v.UUID, formatJSON(v.Output), formatJSON(v.Features), formatJSON(v.Feedback))
				}
				return t
			})
		},
	}

	addWindowFlags(list, false)
	list.Flags().Int("max-pages", 0, "stop after this many pages (0 follows every page)")
	list.Flags().Bool("raw", false, "print the first raw page instead of following pages")

	cmd.AddCommand(list)
	return cmd
}

func newPredictionView(p konan.Prediction) predictionView {
	return predictionView{UUID: p.UUID, Output: p.Output, Features: p.Features, Feedback: p.Feedback}
}
