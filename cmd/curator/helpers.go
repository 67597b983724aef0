package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"curator/internal/asset"
	"curator/internal/media"
)

var mimeExtensions = map[string]string{
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/gif":        ".gif",
	"audio/mpeg":       ".mp3",
	"video/x-matroska": ".mkv",
	"video/webm":       ".webm",
	"video/mp4":        ".mp4",
	"application/ogg":  ".ogg",
	"audio/x-wav":      ".wav",
	"audio/flac":       ".flac",
}

func extensionForMIME(mimeType, fallback string) string {
	if ext, ok := mimeExtensions[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return ext
	}
	return fallback
}

// defaultOutputPath derives an output name from the input path, inserting a
// marker before the extension. A non-empty mimeType swaps the extension for
// the one matching the produced type. The result never collides with input.
func defaultOutputPath(input, marker, mimeType string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	out := stem + marker + extensionForMIME(mimeType, ext)
	if out == input {
		out = stem + ".out" + extensionForMIME(mimeType, ext)
	}
	return out
}

// writeAssetOutput recombines the asset and writes it to path. Formats that
// cannot re-embed their namespace are skipped rather than failing the whole
// export; essenceOnly drops metadata entirely and writes the bare essence.
func writeAssetOutput(cmd *cobra.Command, registry *media.Registry, a *asset.Asset, path string, essenceOnly bool) error {
	var (
		data []byte
		err  error
	)
	if essenceOnly {
		data = a.EssenceBytes()
	} else {
		data, err = registry.Export(cmd.Context(), a, media.SkipUnembeddable())
		if err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", path, humanize.IBytes(uint64(len(data))))
	return nil
}
