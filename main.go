package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var debug bool

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd := &cobra.Command{
		Use:   "reqcheck",
		Short: "Lint, format and convert pip-style requirements manifests",
		Long: `reqcheck works on requirements.txt-style dependency manifests:
one requirement per line, optional "#" comment, optional ";" environment
marker. It validates the syntax, flags duplicate or contradictory pins,
normalizes formatting and converts between the sibling Python manifest
formats (pyproject.toml, conda environment.yml).

It never installs anything and never talks to a package index.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newLintCmd(), newFmtCmd(), newConvertCmd(), newEvalCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
