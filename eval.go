package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"reqcheck/requirements"
)

func newEvalCmd() *cobra.Command {
	var pythonVersion string
	var platform string
	var extra string

	cmd := &cobra.Command{
		Use:   "eval FILE",
		Short: "Show which requirements apply in a given environment",
		Long: `Evaluates each requirement's environment marker against the given
interpreter version and platform and prints the requirements that apply.
Unconditional requirements always apply.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := requirements.ParseFile(args[0])
			if err != nil {
				return err
			}

			env := requirements.DefaultEnvironment(pythonVersion, platform)
			if extra != "" {
				env["extra"] = extra
			}

			for _, req := range m.Requirements() {
				active := true
				if req.Marker != nil {
					active, err = req.Marker.Eval(env)
					if err != nil {
						return fmt.Errorf("%s: line %d: %w", args[0], req.Line, err)
					}
				}
				if !active {
					log.Debug().Str("package", req.Name).Int("line", req.Line).Msg("marker excluded requirement")
					continue
				}
				r := *req
				r.Marker = nil
				r.Comment = ""
				fmt.Fprintln(cmd.OutOrStdout(), r.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pythonVersion, "python-version", "3.12", "interpreter version to evaluate against")
	cmd.Flags().StringVar(&platform, "platform", "linux", "sys.platform value: linux, darwin or win32")
	cmd.Flags().StringVar(&extra, "extra", "", "extra being installed, for markers like extra == \"docs\"")
	return cmd
}
