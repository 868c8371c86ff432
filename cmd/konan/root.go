package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/jrsteele09/go-konan-sdk/internal/config"
	"github.com/jrsteele09/go-konan-sdk/internal/logging"
	"github.com/jrsteele09/go-konan-sdk/internal/output"
	"github.com/jrsteele09/go-konan-sdk/sdk"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var ErrNoCredentials = errors.New("no credentials: set --api-key, or --email with a password")

// PasswordReaderFunc prompts for a password when none is configured.
var PasswordReaderFunc = readPassword

// globalFlags maps persistent flags onto their config keys.
var globalFlags = map[string]string{
	"api-url":  config.KeyAPIURL,
	"auth-url": config.KeyAuthURL,
	"email":    config.KeyEmail,
	"api-key":  config.KeyAPIKey,
	"verbose":  config.KeyVerbose,
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "konan",
		Short: "Konan CLI - manage deployments, models and predictions",
		Long: `konan talks to the Konan ML platform.

Credentials and URLs are read from konan.yaml (./ or ~/.konan), then from
KONAN_* environment variables, then from flags.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().String("config", "", "config file (default is ./konan.yaml or $HOME/.konan/konan.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", output.FormatTable, "output format (table|json|yaml)")
	rootCmd.PersistentFlags().String("api-url", sdk.DefaultAPIURL, "Konan API URL")
	rootCmd.PersistentFlags().String("auth-url", sdk.DefaultAuthURL, "Konan auth URL")
	rootCmd.PersistentFlags().String("email", "", "login email")
	rootCmd.PersistentFlags().String("api-key", "", "login API key, used instead of email and password")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every request")

	rootCmd.AddCommand(
		newLoginCmd(),
		newPredictCmd(),
		newEvaluateCmd(),
		newFeedbackCmd(),
		newDeploymentsCmd(),
		newProjectsCmd(),
		newModelsCmd(),
		newPredictionsCmd(),
	)
	return rootCmd
}

// loadConfig reads the config file and environment, with changed flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	opts := []config.Option{}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	for name, key := range globalFlags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if flag.Changed {
			opts = append(opts, config.WithOverride(key, flag.Value.String()))
		}
	}
	return config.New(opts...)
}

func newPrinter(cmd *cobra.Command) (*output.Printer, error) {
	format, _ := cmd.Flags().GetString("output")
	return output.New(cmd.OutOrStdout(), format)
}

// connect builds a logged in SDK from the command's configuration.
func connect(cmd *cobra.Command) (*sdk.KonanSDK, error) {
	c, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), c.GetLogLevel(), c.GetLogFormat())
	s := sdk.New(
		sdk.WithAPIURL(c.GetAPIURL()),
		sdk.WithAuthURL(c.GetAuthURL()),
		sdk.WithHTTPClient(&http.Client{Timeout: c.GetTimeout()}),
		sdk.WithLogger(logger),
		sdk.WithVerbose(c.GetVerbose()),
	)

	if err := login(cmd.Context(), s, c); err != nil {
		return nil, err
	}
	return s, nil
}

func login(ctx context.Context, s *sdk.KonanSDK, c config.SDKConfig) error {
	if key := c.GetAPIKey(); key != "" {
		return s.LoginWithAPIKey(ctx, key)
	}
	email := c.GetEmail()
	if email == "" {
		return ErrNoCredentials
	}
	password := c.GetPassword()
	if password == "" {
		var err error
		if password, err = PasswordReaderFunc(email); err != nil {
			return err
		}
	}
	return s.Login(ctx, email, password)
}

func readPassword(email string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoCredentials
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", email)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "[readPassword]")
	}
	return string(b), nil
}
