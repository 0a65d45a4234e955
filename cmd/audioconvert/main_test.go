package main

import (
	"bytes"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestFormatsCommandListsRegistry checks the formats table output.
func TestFormatsCommandListsRegistry(t *testing.T) {
	out, err := runCommand(t, "formats")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	for _, id := range []string{"mp3", "wav", "flac", "aac", "ogg", "m4a", "wma", "aiff", "ape", "ac3"} {
		if !strings.Contains(out, id) {
			t.Fatalf("output missing format %s:\n%s", id, out)
		}
	}
}

// TestConvertCommandRequiresInputs checks argument validation.
func TestConvertCommandRequiresInputs(t *testing.T) {
	_, err := runCommand(t, "convert")
	if err == nil || !strings.Contains(err.Error(), "no input files") {
		t.Fatalf("err = %v, want no input files error", err)
	}
}

// TestConvertCommandRejectsUnknownFormat checks format validation.
func TestConvertCommandRejectsUnknownFormat(t *testing.T) {
	_, err := runCommand(t, "convert", "--format", "midi", "/music/a.wav")
	if err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("err = %v, want unsupported format error", err)
	}
}

// TestInspectCommandReportsMissingFiles checks graceful handling of absent paths.
func TestInspectCommandReportsMissingFiles(t *testing.T) {
	out, err := runCommand(t, "inspect", "/nowhere/ghost.mp3")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, "ghost.mp3") || !strings.Contains(out, "missing") {
		t.Fatalf("output = %s", out)
	}
}
