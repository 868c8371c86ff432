package main

import (
	"fmt"

	"github.com/jrsteele09/go-konan-sdk/internal/output"
	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/spf13/cobra"
)

type modelView struct {
	UUID      string `json:"uuid" yaml:"uuid"`
	Name      string `json:"name" yaml:"name"`
	State     string `json:"state" yaml:"state"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

func newModelView(m konan.Model) modelView {
	return modelView{UUID: m.UUID, Name: m.Name, State: m.State.String(), CreatedAt: formatTime(m.CreatedAt)}
}

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model"},
		Short:   "Manage the models of a deployment",
	}
	cmd.AddCommand(
		newModelsListCmd(),
		newModelsCreateCmd(),
		newModelsDeleteCmd(),
		newModelsSwitchCmd(),
	)
	return cmd
}

func newModelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list DEPLOYMENT_UUID",
		Aliases: []string{"ls"},
		Short:   "List a deployment's models",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			s, err := connect(cmd)
			if err != nil {
				return err
			}

			models, err := s.GetModels(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			views := make([]modelView, 0, len(models))
			for _, m := range models {
				views = append(views, newModelView(m))
			}
			return p.Print(views, func() *output.Table {
				t := output.NewTable("UUID", "NAME", "STATE", "CREATED")
				for _, v := range views {
					t.AddRow(v.UUID, v.Name, v.State, v.CreatedAt)
				}
				return t
			})
		},
	}
}

func newModelsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create DEPLOYMENT_UUID NAME",
		Short: "Add a model to a deployment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			image, credentials := dockerFlags(cmd)
			state, _ := cmd.Flags().GetString("state")
			s, err := connect(cmd)
			if err != nil {
				return err
			}

			m, err := s.CreateModel(cmd.Context(), args[0], konan.ModelCreationRequest{
				Name:              args[1],
				DockerImage:       image,
				DockerCredentials: credentials,
				State:             konan.ParseModelState(state),
			})
			if err != nil {
				return err
			}
			view := newModelView(*m)
			if p.Format() == output.FormatTable {
				p.Success("Created %s model %s (%s)", view.State, view.Name, view.UUID)
				return nil
			}
			return p.Print(view, nil)
		},
	}

	addDockerFlags(cmd)
	cmd.Flags().String("state", konan.ModelStateChallenger.String(), "initial state (challenger|disabled)")
	return cmd
}

func newModelsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete MODEL_UUID",
		Short: "Delete a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			s, err := connect(cmd)
			if err != nil {
				return err
			}
			if _, err := s.DeleteModel(cmd.Context(), args[0]); err != nil {
				return err
			}
			p.Success("Deleted model %s", args[0])
			return nil
		},
	}
}

func newModelsSwitchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch DEPLOYMENT_UUID MODEL_UUID STATE",
		Short: "Move a model to live, challenger or disabled",
		Long: `Move a model to another state.

Demoting the live model needs --new-live, the model promoted in its place.
Promoting a model to live demotes the current live model to challenger.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			state := konan.ParseModelState(args[2])
			if state == konan.ModelStateOther {
				return fmt.Errorf("unknown model state %q", args[2])
			}
			newLive, _ := cmd.Flags().GetString("new-live")
			s, err := connect(cmd)
			if err != nil {
				return err
			}

			if err := s.SwitchModelState(cmd.Context(), args[0], args[1], state, newLive); err != nil {
				return err
			}
			p.Success("Model %s is now %s", args[1], state)
			return nil
		},
	}

	cmd.Flags().String("new-live", "", "model promoted when demoting the live model")
	return cmd
}
