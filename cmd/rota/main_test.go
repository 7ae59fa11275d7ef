package main

import "testing"

func TestCommandPath(t *testing.T) {
	tests := map[string]string{
		"plan <day>":                      "plan",
		"keyring set <connection-string>": "keyring set",
		"rules check":                     "rules check",
		"rules check <file>":              "rules check",
		"init":                            "init",
	}
	for in, want := range tests {
		if got := commandPath(in); got != want {
			t.Errorf("commandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNeedsStore(t *testing.T) {
	tests := []struct {
		cmd  string
		save string
		want bool
	}{
		{"validate <file>", "", false},
		{"validate <file>", "Monday", true},
		{"plan <day>", "", true},
		{"init", "", false},
		{"rules check <file>", "", false},
		{"schedules list", "", true},
	}
	for _, tt := range tests {
		if got := needsStore(tt.cmd, tt.save); got != tt.want {
			t.Errorf("needsStore(%q, %q) = %v, want %v", tt.cmd, tt.save, got, tt.want)
		}
	}
}
