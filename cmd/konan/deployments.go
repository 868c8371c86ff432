package main

import (
	"github.com/jrsteele09/go-konan-sdk/internal/output"
	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/spf13/cobra"
)

type deploymentView struct {
	UUID      string `json:"uuid" yaml:"uuid"`
	Name      string `json:"name" yaml:"name"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

type deploymentErrorView struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

type creationView struct {
	Deployment    deploymentView        `json:"deployment" yaml:"deployment"`
	Model         *modelView            `json:"model,omitempty" yaml:"model,omitempty"`
	Errors        []deploymentErrorView `json:"errors" yaml:"errors"`
	ContainerLogs any                   `json:"container_logs,omitempty" yaml:"container_logs,omitempty"`
}

func newDeploymentView(d konan.Deployment) deploymentView {
	return deploymentView{UUID: d.UUID, Name: d.Name, CreatedAt: formatTime(d.CreatedAt)}
}

func newDeploymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deployments",
		Aliases: []string{"deployment", "deploy"},
		Short:   "Create and delete deployments",
	}
	cmd.AddCommand(newDeploymentsCreateCmd(), newDeploymentsDeleteCmd())
	return cmd
}

func newDeploymentsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a deployment with an initial live model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			image, credentials := dockerFlags(cmd)
			modelName, _ := cmd.Flags().GetString("model-name")
			s, err := connect(cmd)
			if err != nil {
				return err
			}

			res, err := s.CreateDeployment(cmd.Context(), args[0], image, credentials, modelName)
			if err != nil {
				return err
			}

			view := creationView{
				Deployment:    newDeploymentView(res.Deployment),
				Errors:        []deploymentErrorView{},
				ContainerLogs: res.ContainerLogs,
			}
			if res.Model != nil {
				m := newModelView(*res.Model)
				view.Model = &m
			}
			for _, e := range res.Errors {
				view.Errors = append(view.Errors, deploymentErrorView{Field: e.Field.String(), Message: e.Message})
			}

			if p.Format() != output.FormatTable {
				return p.Print(view, nil)
			}
			p.Success("Created deployment %s (%s)", view.Deployment.Name, view.Deployment.UUID)
			if view.Model != nil {
				p.Info("Model %s (%s) is %s", view.Model.Name, view.Model.UUID, view.Model.State)
			}
			for _, e := range view.Errors {
				p.Warn("%s: %s", e.Field, e.Message)
			}
			return nil
		},
	}

	addDockerFlags(cmd)
	cmd.Flags().String("model-name", "", "initial model name (defaults to the deployment name)")
	return cmd
}

func newDeploymentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete DEPLOYMENT_UUID",
		Short: "Delete a deployment and its models",
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
			if _, err := s.DeleteDeployment(cmd.Context(), args[0]); err != nil {
				return err
			}
			p.Success("Deleted deployment %s", args[0])
			return nil
		},
	}
}

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a project, a deployment with no models",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			description, _ := cmd.Flags().GetString("description")
			s, err := connect(cmd)
			if err != nil {
				return err
			}

			d, err := s.CreateProject(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			view := newDeploymentView(*d)
			if p.Format() == output.FormatTable {
				p.Success("Created project %s (%s)", view.Name, view.UUID)
				return nil
			}
			return p.Print(view, nil)
		},
	}
	create.Flags().StringP("description", "d", "", "project description")

	cmd.AddCommand(create)
	return cmd
}

func addDockerFlags(cmd *cobra.Command) {
	cmd.Flags().String("image", "", "docker image URL")
	cmd.Flags().Int("port", 8000, "port the image exposes")
	cmd.Flags().String("docker-username", "", "registry username")
	cmd.Flags().String("docker-password", "", "registry password")
	_ = cmd.MarkFlagRequired("image")
	cmd.MarkFlagsRequiredTogether("docker-username", "docker-password")
}

func dockerFlags(cmd *cobra.Command) (konan.DockerImage, *konan.DockerCredentials) {
	url, _ := cmd.Flags().GetString("image")
	port, _ := cmd.Flags().GetInt("port")
	image := konan.DockerImage{URL: url, ExposedPort: port}

	username, _ := cmd.Flags().GetString("docker-username")
	if username == "" {
		return image, nil
	}
	password, _ := cmd.Flags().GetString("docker-password")
	return image, &konan.DockerCredentials{Username: username, Password: password}
}
