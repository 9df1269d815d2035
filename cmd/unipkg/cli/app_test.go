package cli

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	if got := GetVersion(); got == "" {
		t.Error("GetVersion() returned empty string")
	}
}

func TestGetFullVersion(t *testing.T) {
	got := GetFullVersion()
	if got == "" {
		t.Error("GetFullVersion() returned empty string")
	}
	if !strings.Contains(got, "unipkg version") {
		t.Errorf("GetFullVersion() = %q, want unipkg version prefix", got)
	}
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"default-provider", "verbosity", "trace", "no-color", "verbose-log"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not registered", name)
		}
	}
	if got := rootCmd.PersistentFlags().Lookup("default-provider").DefValue; got != "npm" {
		t.Errorf("default-provider default = %q, want npm", got)
	}
}
