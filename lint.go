package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"reqcheck/checks"
	"reqcheck/requirements"
)

func newLintCmd() *cobra.Command {
	var configPath string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "lint FILE",
		Short: "Check a requirements manifest for problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *checks.Config
			if configPath != "" {
				c, err := checks.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = c
			}

			m, err := requirements.ParseFile(args[0])
			if err != nil {
				return err
			}
			log.Debug().Str("file", args[0]).Int("entries", len(m.Entries)).Msg("manifest parsed")

			issues := checks.Run(m, cfg)
			for _, issue := range issues {
				if quiet && issue.Severity != checks.SeverityError {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), issue)
			}
			if checks.HasErrors(issues) {
				return fmt.Errorf("%s: lint failed", args[0])
			}
			log.Info().Str("file", args[0]).Int("issues", len(issues)).Msg("lint passed")
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML lint configuration")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "only print error-severity issues")
	return cmd
}
