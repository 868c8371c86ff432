package main

import (
	"github.com/jrsteele09/go-konan-sdk/internal/output"
	"github.com/spf13/cobra"
)

type sessionView struct {
	Email          string `json:"email" yaml:"email"`
	FirstName      string `json:"first_name" yaml:"first_name"`
	LastName       string `json:"last_name" yaml:"last_name"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	AccessExpiry   string `json:"access_expiry" yaml:"access_expiry"`
	RefreshExpiry  string `json:"refresh_expiry" yaml:"refresh_expiry"`
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "login",
		Aliases: []string{"whoami"},
		Short:   "Log in and show the authenticated user",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			s, err := connect(cmd)
			if err != nil {
				return err
			}

			session := s.Session()
			if p.Format() == output.FormatTable {
				p.Success("Logged in as %s", session)
				p.Info("Name:         %s %s", session.FirstName, session.LastName)
				p.Info("Organization: %s", session.OrganizationID)
				p.Info("Expires:      %s", formatTime(session.AccessExpiry))
				return nil
			}
			return p.Print(sessionView{
				Email:          session.Email,
				FirstName:      session.FirstName,
				LastName:       session.LastName,
				OrganizationID: session.OrganizationID,
				AccessExpiry:   formatTime(session.AccessExpiry),
				RefreshExpiry:  formatTime(session.RefreshExpiry),
			}, nil)
		},
	}
}
