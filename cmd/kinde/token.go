// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kinde-oss/kinde-go/auth"
)

func newTokenCmd(rf *rootFlags) *cobra.Command {
	var (
		audience string
		scope    string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Fetch a client credentials access token",
		Long: `token exchanges the configured client id and secret for an access token
and prints it. The grant type must be client_credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := rf.load(cmd)
			if err != nil {
				return err
			}
			if c.Config().GrantType != auth.ClientCredentials {
				return fmt.Errorf("token requires grant type %q, got %q: %w", auth.ClientCredentials, c.Config().GrantType, auth.ErrUnsupportedGrantType)
			}
			res, err := c.Login(cmd.Context(), cliSessionID, auth.WithAudience(audience), auth.WithScope(scope))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !asJSON {
				_, err = fmt.Fprintln(out, string(res.Token.AccessToken))
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"access_token": string(res.Token.AccessToken),
				"token_type":   res.Token.TokenType,
				"expires_in":   res.Token.ExpiresIn,
				"scope":        res.Token.Scope,
			})
		},
	}
	cmd.Flags().StringVar(&audience, "audience", "", "audience to request, overriding the configured one")
	cmd.Flags().StringVar(&scope, "scope", "", "scope to request, overriding the configured one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the token response as JSON")
	return cmd
}
