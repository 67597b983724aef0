package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"curator/internal/testsupport"
)

func TestCLIStoreRoundTrip(t *testing.T) {
	env := setupCLITestEnv(t)
	original := testsupport.PNGImage(t, 16, 16)
	path := testsupport.WriteMedia(t, env.mediaDir, "keep.png", original)

	stdout, _, err := runCLI(t, []string{"store", "add", path}, env.configPath)
	if err != nil {
		t.Fatalf("store add: %v", err)
	}
	requireContains(t, stdout, "Stored "+path+" as asset 1")

	stdout, _, err = runCLI(t, []string{"store", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("store list: %v", err)
	}
	requireContains(t, stdout, "image/png")

	stdout, _, err = runCLI(t, []string{"store", "contains", path}, env.configPath)
	if err != nil {
		t.Fatalf("store contains: %v", err)
	}
	requireContains(t, stdout, "yes")

	outPath := filepath.Join(env.baseDir, "restored.png")
	if _, _, err := runCLI(t, []string{"store", "get", "1", "-o", outPath}, env.configPath); err != nil {
		t.Fatalf("store get: %v", err)
	}
	restored, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read restored file: %v", err)
	}
	if !bytes.Equal(restored, original) {
		t.Fatal("restored bytes differ from the original file")
	}

	if _, _, err := runCLI(t, []string{"store", "remove", "1"}, env.configPath); err != nil {
		t.Fatalf("store remove: %v", err)
	}

	stdout, _, err = runCLI(t, []string{"store", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("store list: %v", err)
	}
	requireContains(t, stdout, "Store is empty")

	stdout, _, err = runCLI(t, []string{"store", "contains", path}, env.configPath)
	if err != nil {
		t.Fatalf("store contains: %v", err)
	}
	requireContains(t, stdout, "no")
}

func TestCLIStoreIDsNeverRecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	first := testsupport.WriteMedia(t, env.mediaDir, "first.png", testsupport.PNGImage(t, 8, 8))
	second := testsupport.WriteMedia(t, env.mediaDir, "second.png", testsupport.PNGImage(t, 9, 9))

	if _, _, err := runCLI(t, []string{"store", "add", first}, env.configPath); err != nil {
		t.Fatalf("store add: %v", err)
	}
	if _, _, err := runCLI(t, []string{"store", "remove", "1"}, env.configPath); err != nil {
		t.Fatalf("store remove: %v", err)
	}
	stdout, _, err := runCLI(t, []string{"store", "add", second}, env.configPath)
	if err != nil {
		t.Fatalf("store add: %v", err)
	}
	requireContains(t, stdout, "as asset 2")
}

func TestCLIStoreListJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteMedia(t, env.mediaDir, "tune.mp3",
		testsupport.MP3WithTags(t, "Alice Coltrane", "Journey", "Monastic Trio", 4))

	if _, _, err := runCLI(t, []string{"store", "add", path}, env.configPath); err != nil {
		t.Fatalf("store add: %v", err)
	}
	stdout, _, err := runCLI(t, []string{"store", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("store list --json: %v", err)
	}
	var entries []storeEntry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].ID != "1" || entries[0].MIMEType != "audio/mpeg" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatal("expected a creation timestamp")
	}
}

func TestCLIStoreGetUnknownID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"store", "get", "7", "-o", filepath.Join(env.baseDir, "out.bin")}, env.configPath)
	if err == nil {
		t.Fatal("expected an error for an unknown id")
	}
	requireContains(t, err.Error(), "asset 7 not found")
}

func TestCLIStoreRemoveUnknownID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"store", "remove", "3"}, env.configPath)
	if err == nil {
		t.Fatal("expected an error for an unknown id")
	}
	requireContains(t, err.Error(), "asset 3 not found")
}
