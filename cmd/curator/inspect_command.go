package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"curator/internal/asset"
)

type inspectNamespace struct {
	Fields  map[string]string `json:"fields"`
	RawSize int               `json:"raw_size,omitempty"`
}

type inspectPayload struct {
	Path            string                      `json:"path"`
	MIMEType        string                      `json:"mime_type"`
	Size            int64                       `json:"size"`
	Width           int                         `json:"width,omitempty"`
	Height          int                         `json:"height,omitempty"`
	DurationSeconds float64                     `json:"duration_seconds,omitempty"`
	Artist          string                      `json:"artist,omitempty"`
	Title           string                      `json:"title,omitempty"`
	Album           string                      `json:"album,omitempty"`
	Namespaces      map[string]inspectNamespace `json:"namespaces,omitempty"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Read a media file and show its attributes and metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			a, err := registry.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, buildInspectPayload(args[0], a))
			}
			renderInspect(cmd, args[0], a)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of tables")
	return cmd
}

func buildInspectPayload(path string, a *asset.Asset) inspectPayload {
	attrs := a.Attributes()
	payload := inspectPayload{
		Path:            path,
		MIMEType:        attrs.MIMEType,
		Size:            a.Size(),
		Width:           attrs.Width,
		Height:          attrs.Height,
		DurationSeconds: attrs.Duration.Seconds(),
		Artist:          attrs.Artist,
		Title:           attrs.Title,
		Album:           attrs.Album,
	}
	for _, name := range a.Namespaces() {
		ns, ok := a.Namespace(name)
		if !ok {
			continue
		}
		if payload.Namespaces == nil {
			payload.Namespaces = make(map[string]inspectNamespace)
		}
		payload.Namespaces[name] = inspectNamespace{
			Fields:  ns.Fields(),
			RawSize: len(ns.Raw()),
		}
	}
	return payload
}

func renderInspect(cmd *cobra.Command, path string, a *asset.Asset) {
	out := cmd.OutOrStdout()
	attrs := a.Attributes()

	rows := [][]string{
		{"File", path},
		{"MIME type", attrs.MIMEType},
		{"Size", humanize.IBytes(uint64(a.Size()))},
	}
	if attrs.Width > 0 || attrs.Height > 0 {
		rows = append(rows, []string{"Dimensions", fmt.Sprintf("%dx%d", attrs.Width, attrs.Height)})
	}
	if attrs.Duration > 0 {
		rows = append(rows, []string{"Duration", attrs.Duration.String()})
	}
	if attrs.Artist != "" {
		rows = append(rows, []string{"Artist", attrs.Artist})
	}
	if attrs.Title != "" {
		rows = append(rows, []string{"Title", attrs.Title})
	}
	if attrs.Album != "" {
		rows = append(rows, []string{"Album", attrs.Album})
	}
	fmt.Fprintln(out, renderTable([]string{"Attribute", "Value"}, rows, nil))

	for _, name := range a.Namespaces() {
		ns, ok := a.Namespace(name)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "\nNamespace %q", name)
		if raw := ns.Raw(); len(raw) > 0 {
			fmt.Fprintf(out, " (raw payload %s)", humanize.IBytes(uint64(len(raw))))
		}
		fmt.Fprintln(out)
		nsRows := make([][]string, 0, ns.Len())
		for _, key := range ns.Keys() {
			nsRows = append(nsRows, []string{key, ns.Field(key)})
		}
		fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, nsRows, nil))
	}
}
