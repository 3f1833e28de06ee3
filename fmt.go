package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"reqcheck/requirements"
)

func newFmtCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt FILE",
		Short: "Normalize a requirements manifest",
		Long: `Re-serializes the manifest in canonical form: extras sorted, one
space around markers, comments aligned after two spaces. Without --write
the result goes to stdout; with it the file is rewritten in place after
backing the original up to FILE.bak.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			m, err := requirements.ParseFile(path)
			if err != nil {
				return err
			}

			if !write {
				_, err := io.WriteString(cmd.OutOrStdout(), m.Format())
				return err
			}

			backup := path + ".bak"
			if err := copyFile(path, backup); err != nil {
				return fmt.Errorf("failed to back up %s: %w", path, err)
			}
			log.Info().Str("file", path).Str("backup", backup).Msg("backed up manifest")

			if err := os.WriteFile(path, []byte(m.Format()), 0o644); err != nil {
				return fmt.Errorf("failed to rewrite %s: %w", path, err)
			}
			log.Info().Str("file", path).Msg("manifest formatted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "rewrite the file in place (keeps a .bak copy)")
	return cmd
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
