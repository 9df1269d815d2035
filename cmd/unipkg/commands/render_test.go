package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/unipkg/unipkg/batch"
	"github.com/unipkg/unipkg/cmd/unipkg/output"
	"github.com/unipkg/unipkg/provider"
	"github.com/unipkg/unipkg/resolver"
)

func testConsole() (*output.Console, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	c := output.NewConsole(&out, &errOut, output.VerbosityNormal)
	c.SetColors(false)
	return c, &out, &errOut
}

func TestRenderBatchResult(t *testing.T) {
	console, out, errOut := testConsole()
	result := &batch.Result{
		Successful: []batch.ResultItem{{Name: "left-pad", Version: "1.3.0", Action: batch.ActionInstall}},
		Skipped:    []batch.SkippedItem{{Name: "lodash", Reason: "already installed (version 4.17.21)"}},
		Failed: []batch.FailedItem{{
			Name:        "nonexistent",
			Err:         &provider.Error{Code: provider.CodePackageNotFound, Message: "not published"},
			Suggestion:  "verify the package name and provider",
			Recoverable: false,
		}},
		TotalTimeMs: 42,
	}

	renderBatchResult(console, "installed", result)

	stdout := out.String()
	if !strings.Contains(stdout, "installed left-pad@1.3.0") {
		t.Errorf("missing success line: %q", stdout)
	}
	if !strings.Contains(stdout, "skipped lodash: already installed (version 4.17.21)") {
		t.Errorf("missing skip line: %q", stdout)
	}
	if !strings.Contains(stdout, "hint: verify the package name and provider") {
		t.Errorf("missing suggestion: %q", stdout)
	}
	if !strings.Contains(stdout, "1 installed, 1 failed, 1 skipped (42ms)") {
		t.Errorf("missing summary: %q", stdout)
	}
	if !strings.Contains(errOut.String(), "nonexistent: not published") {
		t.Errorf("missing failure on stderr: %q", errOut.String())
	}
}

func TestBatchExitError(t *testing.T) {
	clean := &batch.Result{Successful: []batch.ResultItem{{Name: "a"}}}
	if err := batchExitError(clean); err != nil {
		t.Errorf("clean result returned error: %v", err)
	}

	dirty := &batch.Result{
		Successful: []batch.ResultItem{{Name: "a"}},
		Failed: []batch.FailedItem{{
			Name: "b",
			Err:  &provider.Error{Code: provider.CodeNetworkError, Message: "boom"},
		}},
	}
	err := batchExitError(dirty)
	if err == nil {
		t.Fatal("result with failures returned nil error")
	}
	if !strings.Contains(err.Error(), "1 of 2 packages failed: b") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestRenderResolution(t *testing.T) {
	console, out, _ := testConsole()

	shared := &resolver.DependencyNode{
		Name: "shared", Version: "1.0.0", Constraint: "^1.0.0",
		Provider: "npm", Depth: 2,
	}
	root := &resolver.DependencyNode{
		Name: "app", Version: "2.0.0", Provider: "npm", IsDirect: true,
		Dependencies: []*resolver.DependencyNode{
			{
				Name: "lib", Version: "1.2.0", Constraint: ">=1.0.0",
				Provider: "npm", IsDirect: true, Depth: 1,
				Dependencies: []*resolver.DependencyNode{shared},
			},
		},
	}
	result := &resolver.ResolutionResult{
		Success:       true,
		Tree:          []*resolver.DependencyNode{root, root.Dependencies[0], shared},
		InstallOrder:  []string{"shared", "lib", "app"},
		TotalPackages: 3,
		TotalSize:     2048,
	}

	renderResolution(console, result)

	stdout := out.String()
	for _, want := range []string{
		"app@2.0.0",
		"  lib@1.2.0 (>=1.0.0)",
		"    shared@1.0.0 (^1.0.0)",
		"Install order",
		"1. shared",
		"3. app",
		"Resolved 3 packages, 2.0 KiB",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRenderResolutionConflict(t *testing.T) {
	console, out, errOut := testConsole()

	result := &resolver.ResolutionResult{
		Success: false,
		Conflicts: []resolver.Conflict{{
			PackageName: "lib",
			RequiredBy:  []string{"app", "other"},
			Versions:    []string{"^1.0.0", "^2.0.0"},
		}},
		TotalPackages: 2,
	}

	renderResolution(console, result)

	if !strings.Contains(out.String(), "lib required by app, other with constraints ^1.0.0, ^2.0.0") {
		t.Errorf("missing conflict line: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "resolution failed") {
		t.Errorf("missing failure summary: %q", errOut.String())
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 * 1024 * 1024, "3.0 MiB"},
	}
	for _, tc := range cases {
		if got := formatSize(tc.bytes); got != tc.want {
			t.Errorf("formatSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}
