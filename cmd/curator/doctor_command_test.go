package main

import (
	"encoding/json"
	"testing"

	"curator/internal/testsupport"
)

func TestCLIDoctorJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteMedia(t, env.mediaDir, "keep.png",
		testsupport.PNGImage(t, 6, 6))
	if _, _, err := runCLI(t, []string{"store", "add", path}, env.configPath); err != nil {
		t.Fatalf("store add: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"doctor", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor --json: %v", err)
	}

	var payload doctorPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if !payload.Healthy {
		t.Fatalf("expected healthy report, got %+v", payload)
	}
	if payload.StoredAssets != 1 {
		t.Fatalf("stored assets = %d", payload.StoredAssets)
	}
	if len(payload.Binaries) != 2 {
		t.Fatalf("binaries = %d", len(payload.Binaries))
	}
	for _, binary := range payload.Binaries {
		if !binary.Optional {
			t.Fatalf("%s should be optional with ffmpeg disabled", binary.Name)
		}
	}
	if payload.StorageDir != env.cfg.Paths.StorageDir {
		t.Fatalf("storage dir = %q", payload.StorageDir)
	}
}

func TestCLIDoctorReport(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, stdout, "== Configuration ==")
	requireContains(t, stdout, "== External binaries ==")
	requireContains(t, stdout, "FFmpeg")
	requireContains(t, stdout, "no problems found")
}
