package main

import (
	"testing"
)

func TestRootHelpListsCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"--help"}, env.configPath)
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"inspect", "formats", "strip", "resize", "convert", "frame", "store", "doctor", "config"} {
		requireContains(t, stdout, name)
	}
}

func TestRootRejectsUnknownCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"transmogrify"}, env.configPath)
	if err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}
