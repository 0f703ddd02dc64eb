// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/kinde-oss/kinde-go/auth"
)

func newAuthURLCmd(rf *rootFlags) *cobra.Command {
	var (
		register     bool
		createOrg    bool
		state        string
		orgCode      string
		orgName      string
		lang         string
		loginHint    string
		connectionId string
	)
	cmd := &cobra.Command{
		Use:   "auth-url",
		Short: "Print an authorization URL",
		Long: `auth-url prints the authorization URL of a login, registration or
organization creation, followed by the state and, for PKCE, the code
verifier needed to complete the exchange.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if register && createOrg {
				return fmt.Errorf("--register and --create-org are exclusive: %w", auth.ErrInvalidParameter)
			}
			opts := []auth.Option{
				auth.WithState(state),
				auth.WithOrgCode(orgCode),
				auth.WithOrgName(orgName),
				auth.WithLoginHint(loginHint),
				auth.WithConnectionId(connectionId),
			}
			if lang != "" {
				tag, err := language.Parse(lang)
				if err != nil {
					return fmt.Errorf("--lang %q: %w", lang, auth.ErrInvalidParameter)
				}
				opts = append(opts, auth.WithLang(tag))
			}

			c, err := rf.load(cmd)
			if err != nil {
				return err
			}
			var r *auth.Redirect
			switch {
			case register:
				r, err = c.Register(cmd.Context(), cliSessionID, opts...)
			case createOrg:
				r, err = c.CreateOrg(cmd.Context(), cliSessionID, opts...)
			default:
				var res *auth.LoginResult
				if res, err = c.Login(cmd.Context(), cliSessionID, opts...); err == nil {
					if res.Redirect == nil {
						return fmt.Errorf("grant type %q has no authorization URL: %w", c.Config().GrantType, auth.ErrUnsupportedGrantType)
					}
					r = res.Redirect
				}
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, r.URL)
			fmt.Fprintf(out, "state: %s\n", r.State)
			if r.CodeVerifier != "" {
				fmt.Fprintf(out, "code_verifier: %s\n", r.CodeVerifier)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&register, "register", false, "start on the registration page")
	f.BoolVar(&createOrg, "create-org", false, "register and create an organization")
	f.StringVar(&state, "state", "", "state to send; generated when empty")
	f.StringVar(&orgCode, "org-code", "", "organization to sign in to")
	f.StringVar(&orgName, "org-name", "", "name of the organization to create")
	f.StringVar(&lang, "lang", "", "BCP 47 language of the provider's pages")
	f.StringVar(&loginHint, "login-hint", "", "email or username to prefill")
	f.StringVar(&connectionId, "connection-id", "", "connection to authenticate with")
	return cmd
}
