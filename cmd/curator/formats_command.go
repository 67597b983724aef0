package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/media"
)

type processorInfo struct {
	Position  int      `json:"position"`
	MIMETypes []string `json:"mime_types"`
}

type metadataFormatInfo struct {
	Format   string `json:"format"`
	CanEmbed bool   `json:"can_embed"`
}

type formatsPayload struct {
	Processors      []processorInfo      `json:"processors"`
	MetadataFormats []metadataFormatInfo `json:"metadata_formats"`
}

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List registered processors and metadata formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			payload := buildFormatsPayload(registry)
			if asJSON {
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(payload.Processors))
			for _, info := range payload.Processors {
				rows = append(rows, []string{
					strconv.Itoa(info.Position),
					strings.Join(info.MIMETypes, ", "),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Order", "MIME types"}, rows, []columnAlignment{alignRight, alignLeft}))

			metaRows := make([][]string, 0, len(payload.MetadataFormats))
			for _, info := range payload.MetadataFormats {
				metaRows = append(metaRows, []string{info.Format, yesNo(info.CanEmbed)})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable([]string{"Metadata format", "Re-embeds"}, metaRows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of tables")
	return cmd
}

func buildFormatsPayload(registry *media.Registry) formatsPayload {
	var payload formatsPayload
	for i, p := range registry.Processors() {
		payload.Processors = append(payload.Processors, processorInfo{
			Position:  i + 1,
			MIMETypes: p.MIMETypes(),
		})
	}
	for _, format := range registry.MetadataFormats() {
		mp, ok := registry.MetadataProcessor(format)
		if !ok {
			continue
		}
		_, canEmbed := mp.(media.Embedder)
		payload.MetadataFormats = append(payload.MetadataFormats, metadataFormatInfo{
			Format:   format,
			CanEmbed: canEmbed,
		})
	}
	return payload
}
