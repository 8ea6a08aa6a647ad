package main

import (
	"bytes"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"extract", "prepare", "config"} {
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

func TestRootCommandShowsHelpWithoutArgs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out, err := runCommand(t)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if out == "" {
		t.Fatal("expected help output")
	}
}
