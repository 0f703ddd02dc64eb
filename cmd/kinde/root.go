// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kinde-oss/kinde-go/auth"
	"github.com/kinde-oss/kinde-go/config"
	"github.com/kinde-oss/kinde-go/session/memory"
)

// cliSessionID is the session the commands keep their state under. The
// store is in memory so nothing outlives the process.
const cliSessionID = "cli"

type rootFlags struct {
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:   "kinde",
		Short: "Work with Kinde tokens from the command line",
		Long: `kinde fetches client credentials tokens, prints authorization URLs for
the authorization code and PKCE flows and decodes token claims.

Settings come from the --config YAML file, the --env-file files and
KINDE_* environment variables, in increasing order of precedence.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&f.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringSliceVar(&f.envFiles, "env-file", []string{".env"}, "env files to load before reading KINDE_* variables")

	cmd.AddCommand(
		newTokenCmd(&f),
		newAuthURLCmd(&f),
		newClaimsCmd(),
	)
	return cmd
}

// load reads the settings and creates a client and its logger.
func (f *rootFlags) load(cmd *cobra.Command) (*auth.Client, error) {
	if err := config.LoadEnvFiles(f.envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	ac, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	c, err := auth.NewClient(ac, memory.New(memory.DefaultTTL), auth.WithLogger(cfg.Logger("kinde", cmd.ErrOrStderr())))
	if err != nil {
		return nil, fmt.Errorf("unable to create client: %w", err)
	}
	return c, nil
}
