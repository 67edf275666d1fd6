package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmdHasAllSubcommands(t *testing.T) {
	root := newRootCmd()

	want := []string{
		"chat", "sessions", "history", "stats", "notes",
		"research", "docs", "export", "import", "exports",
	}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCmdVersion(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "aide ") {
		t.Errorf("version output = %q", out.String())
	}
}
