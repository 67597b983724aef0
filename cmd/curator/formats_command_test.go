package main

import (
	"encoding/json"
	"testing"
)

func TestCLIFormatsListsRegistrations(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"formats"}, env.configPath)
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	requireContains(t, stdout, "image/jpeg, image/png, image/gif")
	requireContains(t, stdout, "audio/mpeg")
	requireContains(t, stdout, "exif")
	requireContains(t, stdout, "id3")
}

func TestCLIFormatsHonorsFFmpegToggle(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"formats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("formats --json: %v", err)
	}
	var payload formatsPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(payload.Processors) != 2 {
		t.Fatalf("processors = %d with ffmpeg disabled", len(payload.Processors))
	}
	for _, info := range payload.MetadataFormats {
		if info.Format == "ffmetadata" {
			t.Fatal("ffmetadata registered with ffmpeg disabled")
		}
		if !info.CanEmbed {
			t.Fatalf("format %s should re-embed", info.Format)
		}
	}

	env.cfg.Tools.FFmpegEnabled = true
	writeTestConfig(t, env.configPath, env.cfg)

	stdout, _, err = runCLI(t, []string{"formats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("formats --json: %v", err)
	}
	payload = formatsPayload{}
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(payload.Processors) != 3 {
		t.Fatalf("processors = %d with ffmpeg enabled", len(payload.Processors))
	}
	found := false
	for _, info := range payload.MetadataFormats {
		if info.Format == "ffmetadata" {
			found = true
			if info.CanEmbed {
				t.Fatal("ffmetadata cannot re-embed")
			}
		}
	}
	if !found {
		t.Fatal("ffmetadata missing with ffmpeg enabled")
	}
}
