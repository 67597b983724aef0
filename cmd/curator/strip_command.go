package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStripCommand(ctx *commandContext) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "strip <file>",
		Short: "Remove one metadata format from a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			mp, ok := registry.MetadataProcessor(strings.TrimSpace(format))
			if !ok {
				return fmt.Errorf("unknown metadata format %q (available: %s)",
					format, strings.Join(registry.MetadataFormats(), ", "))
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer file.Close()

			cleaned, err := mp.Remove(cmd.Context(), file)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(output)
			if target == "" {
				target = defaultOutputPath(args[0], ".stripped", "")
			}
			if err := os.WriteFile(target, cleaned, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", target, humanize.IBytes(uint64(len(cleaned))))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Metadata format to strip")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (defaults next to the input)")
	_ = cmd.MarkFlagRequired("format")
	return cmd
}
