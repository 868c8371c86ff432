package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jrsteele09/go-konan-sdk/internal/output"
	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type predictionView struct {
	UUID     string `json:"uuid" yaml:"uuid"`
	Output   any    `json:"output" yaml:"output"`
	Features any    `json:"features,omitempty" yaml:"features,omitempty"`
	Feedback any    `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

type metricView struct {
	Name  string `json:"metric_name" yaml:"metric_name"`
	Value any    `json:"metric_value" yaml:"metric_value"`
}

type feedbackView struct {
	Statuses []feedbackStatusView `json:"statuses" yaml:"statuses"`
	Success  int                  `json:"success" yaml:"success"`
	Failure  int                  `json:"failure" yaml:"failure"`
	Total    int                  `json:"total" yaml:"total"`
}

type feedbackStatusView struct {
	PredictionUUID string `json:"prediction_uuid" yaml:"prediction_uuid"`
	Status         int    `json:"status" yaml:"status"`
	Message        string `json:"message" yaml:"message"`
}

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict DEPLOYMENT_UUID",
		Short: "Run a prediction against a deployment's live model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			input, err := readInput(cmd)
			if err != nil {
				return err
			}
			s, err := connect(cmd)
			if err != nil {
				return err
			}

			uuid, out, err := s.Predict(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			return p.Print(predictionView{UUID: uuid, Output: out}, func() *output.Table {
				t := output.NewTable("PREDICTION", "OUTPUT")
				t.AddRow(uuid, formatJSON(out))
				return t
			})
		},
	}

	cmd.Flags().StringP("input", "i", "", "prediction input as JSON")
	cmd.Flags().StringP("file", "f", "", "file holding the prediction input as JSON")
	cmd.MarkFlagsMutuallyExclusive("input", "file")
	cmd.MarkFlagsOneRequired("input", "file")
	return cmd
}

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate DEPLOYMENT_UUID",
		Short: "Evaluate a deployment's live model over a time window",
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
			s, err := connect(cmd)
			if err != nil {
				return err
			}

			ms, err := s.Evaluate(cmd.Context(), args[0], window)
			if err != nil {
				return err
			}
			views := make([]metricView, 0, len(ms))
			for _, m := range ms {
				views = append(views, metricView{Name: m.Name(), Value: m.Value()})
			}
			return p.Print(views, func() *output.Table {
				t := output.NewTable("METRIC", "VALUE")
				for _, v := range views {
					t.AddRow(v.Name, formatJSON(v.Value))
				}
				return t
			})
		},
	}

	addWindowFlags(cmd, true)
	return cmd
}

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "feedback DEPLOYMENT_UUID",
		Short:   "Send ground truth for earlier predictions",
		Example: `  konan feedback 0b0f... --target 9c1e...=1.5 --target 77aa...='{"label":"cat"}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			targets, _ := cmd.Flags().GetStringArray("target")
			submissions, err := parseTargets(targets)
			if err != nil {
				return err
			}
			s, err := connect(cmd)
			if err != nil {
				return err
			}

			res, err := s.Feedback(cmd.Context(), args[0], submissions)
			if err != nil {
				return err
			}
			view := feedbackView{Success: res.Success, Failure: res.Failure, Total: res.Total}
			for _, st := range res.Statuses {
				view.Statuses = append(view.Statuses, feedbackStatusView(st))
			}
			if p.Format() == output.FormatTable && res.Failure > 0 {
				p.Warn("%d of %d feedbacks failed", res.Failure, res.Total)
			}
			return p.Print(view, func() *output.Table {
				t := output.NewTable("PREDICTION", "STATUS", "MESSAGE")
				for _, st := range view.Statuses {
					t.AddRow(st.PredictionUUID, fmt.Sprint(st.Status), st.Message)
				}
				return t
			})
		},
	}

	cmd.Flags().StringArray("target", nil, "PREDICTION_UUID=JSON target, repeatable")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func readInput(cmd *cobra.Command) (any, error) {
	raw, _ := cmd.Flags().GetString("input")
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "[readInput]")
		}
		raw = string(b)
	}
	var input any
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, errors.Wrap(err, "[readInput] input is not valid JSON")
	}
	return input, nil
}

// parseTargets splits uuid=value pairs. Values that are not JSON are sent as
// strings.
func parseTargets(targets []string) ([]konan.FeedbackSubmission, error) {
	submissions := make([]konan.FeedbackSubmission, 0, len(targets))
	for _, t := range targets {
		uuid, raw, ok := strings.Cut(t, "=")
		if !ok || uuid == "" {
			return nil, fmt.Errorf("invalid target %q, want PREDICTION_UUID=VALUE", t)
		}
		var target any
		if err := json.Unmarshal([]byte(raw), &target); err != nil {
			target = raw
		}
		submissions = append(submissions, konan.FeedbackSubmission{PredictionUUID: uuid, Target: target})
	}
	return submissions, nil
}

func addWindowFlags(cmd *cobra.Command, required bool) {
	cmd.Flags().String("start", "", "window start, RFC3339")
	cmd.Flags().String("end", "", "window end, RFC3339")
	if required {
		cmd.MarkFlagsRequiredTogether("start", "end")
		_ = cmd.MarkFlagRequired("start")
	}
}

func parseWindow(cmd *cobra.Command) (konan.TimeWindow, error) {
	var window konan.TimeWindow
	if start, _ := cmd.Flags().GetString("start"); start != "" {
		t, err := konan.ParseTime(start)
		if err != nil {
			return window, errors.Wrap(err, "[parseWindow] --start")
		}
		window.StartTime = t
	}
	if end, _ := cmd.Flags().GetString("end"); end != "" {
		t, err := konan.ParseTime(end)
		if err != nil {
			return window, errors.Wrap(err, "[parseWindow] --end")
		}
		window.EndTime = t
	}
	return window, nil
}

func formatJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return konan.FormatTime(t)
}
