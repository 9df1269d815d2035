package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/unipkg/unipkg/batch"
	"github.com/unipkg/unipkg/cmd/unipkg/output"
	"github.com/unipkg/unipkg/resolver"
)

// printJSON writes v to the console as indented JSON.
func printJSON(console *output.Console, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	console.Println(string(data))
	return nil
}

// renderBatchResult prints the three result buckets.
func renderBatchResult(console *output.Console, verb string, result *batch.Result) {
	for _, item := range result.Successful {
		if item.Version != "" {
			console.Success("%s %s@%s", verb, item.Name, item.Version)
		} else {
			console.Success("%s %s", verb, item.Name)
		}
	}
	for _, item := range result.Skipped {
		console.Warning("skipped %s: %s", item.Name, item.Reason)
	}
	for _, item := range result.Failed {
		console.Error("%s: %s", item.Name, item.Err.Message)
		if item.Suggestion != "" {
			console.Info("  hint: %s", item.Suggestion)
		}
		if item.Recoverable {
			console.Info("  this failure is transient and safe to retry")
		}
	}

	successful, failed, skipped := result.Counts()
	console.Header("%d %s, %d failed, %d skipped (%dms)",
		successful, verb, failed, skipped, result.TotalTimeMs)
}

// batchExitError converts failed items into a command error so the CLI
// exits non-zero while partial successes stay reported.
func batchExitError(result *batch.Result) error {
	if len(result.Failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(result.Failed))
	for _, item := range result.Failed {
		names = append(names, item.Name)
	}
	return fmt.Errorf("%d of %d packages failed: %s",
		len(result.Failed),
		len(result.Successful)+len(result.Failed)+len(result.Skipped),
		strings.Join(names, ", "))
}

// renderResolution prints the dependency tree, conflicts, and install
// order in human-readable form.
func renderResolution(console *output.Console, result *resolver.ResolutionResult) {
	if len(result.Tree) > 0 {
		console.Header("Dependency tree")
		renderNode(console, result.Tree[0], "")
	}

	if len(result.Conflicts) > 0 {
		console.Header("Conflicts")
		for _, c := range result.Conflicts {
			console.Warning("%s required by %s with constraints %s",
				c.PackageName,
				strings.Join(c.RequiredBy, ", "),
				strings.Join(c.Versions, ", "))
			if c.Resolution != "" {
				console.Info("  resolution: %s", c.Resolution)
			}
		}
	}

	if len(result.InstallOrder) > 0 {
		console.Header("Install order")
		for i, name := range result.InstallOrder {
			console.Println(fmt.Sprintf("%3d. %s", i+1, name))
		}
	}

	summary := fmt.Sprintf("%d packages", result.TotalPackages)
	if result.TotalSize > 0 {
		summary += ", " + formatSize(result.TotalSize)
	}
	if result.Success {
		console.Success("Resolved %s", summary)
	} else {
		console.Error("resolution failed: %s", summary)
	}
}

func renderNode(console *output.Console, node *resolver.DependencyNode, indent string) {
	line := indent + node.Name
	if node.Version != "" {
		line += "@" + node.Version
	}
	if node.Constraint != "" {
		line += " (" + node.Constraint + ")"
	}
	if node.IsInstalled {
		line += " [installed]"
	}
	if node.IsConflict {
		line += " [conflict: " + node.ConflictReason + "]"
	}
	console.Println(line)
	for _, child := range node.Dependencies {
		renderNode(console, child, indent+"  ")
	}
}

// formatSize renders a byte count in human units.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
