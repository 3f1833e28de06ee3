package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"reqcheck/convert"
	"reqcheck/requirements"
)

func newConvertCmd() *cobra.Command {
	var to string
	var output string
	var name string

	cmd := &cobra.Command{
		Use:   "convert FILE --to FORMAT",
		Short: "Convert between requirements, pyproject and conda formats",
		Long: `Reads a dependency manifest and writes it in another format. The
input format is taken from the file name (pyproject.toml, environment.yml
or *.yaml read their native formats, anything else parses as
requirements.txt). Target formats: requirements, pyproject, conda.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readManifest(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			var out []byte
			switch to {
			case "requirements":
				out = []byte(m.Format())
			case "pyproject":
				out, err = convert.ToPyProject(m, name)
			case "conda":
				var warnings []string
				out, warnings, err = convert.ToCondaEnv(m, name)
				for _, w := range warnings {
					log.Warn().Msg(w)
				}
			default:
				return fmt.Errorf("unknown target format %q (want requirements, pyproject or conda)", to)
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			log.Info().Str("from", args[0]).Str("to", output).Str("format", to).Msg("converted manifest")
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target format: requirements, pyproject or conda (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&name, "name", "", "project/environment name for pyproject and conda output")
	cmd.MarkFlagRequired("to")
	return cmd
}

// readManifest dispatches on the input file name.
func readManifest(path string) (*requirements.Manifest, error) {
	base := filepath.Base(path)
	switch {
	case base == "pyproject.toml" || strings.HasSuffix(base, ".toml"):
		return convert.FromPyProject(path)
	case base == "environment.yml" || strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".yaml"):
		return convert.FromCondaEnv(path)
	default:
		return requirements.ParseFile(path)
	}
}
