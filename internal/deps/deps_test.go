package deps

import (
	"os"
	"path/filepath"
	"testing"

	"curator/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unconfigured", Command: "   "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Command != present {
		t.Fatalf("expected resolved path %q, got %q", present, results[0].Command)
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available {
		t.Fatalf("expected blank command to be unavailable")
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %s", results[2].Detail)
	}
}

func TestRequirementsHonorConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpeg = "/opt/media/ffmpeg"
	cfg.Tools.FFprobe = "/opt/media/ffprobe"

	reqs := Requirements(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Command != "/opt/media/ffmpeg" {
		t.Fatalf("expected configured ffmpeg path, got %q", reqs[0].Command)
	}
	if reqs[1].Command != "/opt/media/ffprobe" {
		t.Fatalf("expected configured ffprobe path, got %q", reqs[1].Command)
	}
	if reqs[0].Optional || reqs[1].Optional {
		t.Fatal("expected requirements to be mandatory while ffmpeg is enabled")
	}
}

func TestRequirementsOptionalWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpegEnabled = false

	for _, req := range Requirements(&cfg) {
		if !req.Optional {
			t.Fatalf("expected %s to be optional with ffmpeg disabled", req.Name)
		}
	}
}

func TestHealthy(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "FFprobe", Available: false, Optional: true},
	}
	if !Healthy(statuses) {
		t.Fatal("expected optional misses to keep the set healthy")
	}

	statuses[1].Optional = false
	if Healthy(statuses) {
		t.Fatal("expected mandatory miss to fail the set")
	}
}
