// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kinde-oss/kinde-go/auth"
)

func newClaimsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claims [token]",
		Short: "Decode a token's claims",
		Long: `claims prints the claims of a JWT as JSON. The token is read from stdin
when it's not given as an argument. The signature is not verified.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				token = string(b)
			}
			var claims map[string]interface{}
			if err := auth.UnmarshalClaims(strings.TrimSpace(token), &claims); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}
