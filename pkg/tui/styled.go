package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Style colors
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	success   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning   = lipgloss.AdaptiveColor{Light: "#FFA500", Dark: "#FFB347"}
	errorClr  = lipgloss.AdaptiveColor{Light: "#FF5555", Dark: "#FF6666"}
	dim       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}

	// Text styles (no boxes)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	successStyle = lipgloss.NewStyle().Foreground(success)
	warningStyle = lipgloss.NewStyle().Foreground(warning)
	errorStyle   = lipgloss.NewStyle().Foreground(errorClr).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(dim)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// AnalysisView carries everything the analysis display shows.
type AnalysisView struct {
	RunningKernel   string
	LatestKernel    string
	ObsoleteKernels []string
	ObsoleteHeaders []string
}

func (v AnalysisView) totalObsolete() int {
	return len(v.ObsoleteKernels) + len(v.ObsoleteHeaders)
}

// shortName drops the kernel package prefixes for compact listing.
func shortName(pkg string) string {
	pkg = strings.ReplaceAll(pkg, "linux-image-", "")
	return strings.ReplaceAll(pkg, "linux-headers-", "")
}

func packageKind(pkg string) string {
	if strings.Contains(pkg, "image") {
		return "image"
	}
	return "headers"
}

// RenderAnalysis renders the analysis outcome in apt's familiar
// shape, colored when attached to a terminal.
func RenderAnalysis(view AnalysisView) string {
	if !isTerminal() {
		return renderAnalysisPlain(view)
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render("Reading package lists... Done") + "\n")
	b.WriteString(dimStyle.Render("Building dependency tree... Done") + "\n\n")

	b.WriteString(dimStyle.Render("Running kernel: "))
	b.WriteString(boldStyle.Render(view.RunningKernel) + "\n")
	b.WriteString(dimStyle.Render("Latest kernel:  "))
	b.WriteString(boldStyle.Render(view.LatestKernel) + "\n")
	if view.RunningKernel != view.LatestKernel {
		b.WriteString(warningStyle.Render(
			fmt.Sprintf("*** System will boot into %s after reboot ***", view.LatestKernel)) + "\n")
	}
	b.WriteString("\n")

	total := view.totalObsolete()
	if total > 0 {
		b.WriteString(titleStyle.Render("The following packages will be REMOVED:") + "\n")
		for _, pkg := range view.ObsoleteKernels {
			b.WriteString("  " + warningStyle.Render(shortName(pkg)+"* ("+packageKind(pkg)+")") + "\n")
		}
		for _, pkg := range view.ObsoleteHeaders {
			b.WriteString("  " + warningStyle.Render(shortName(pkg)+"* ("+packageKind(pkg)+")") + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("0 upgraded, 0 newly installed, %d to remove and 0 not upgraded.\n", total))
	return b.String()
}

func renderAnalysisPlain(view AnalysisView) string {
	var b strings.Builder
	b.WriteString("Reading package lists... Done\n")
	b.WriteString("Building dependency tree... Done\n\n")

	b.WriteString(fmt.Sprintf("Running kernel: %s\n", view.RunningKernel))
	b.WriteString(fmt.Sprintf("Latest kernel:  %s\n", view.LatestKernel))
	if view.RunningKernel != view.LatestKernel {
		b.WriteString(fmt.Sprintf("*** System will boot into %s after reboot ***\n", view.LatestKernel))
	}
	b.WriteString("\n")

	total := view.totalObsolete()
	if total > 0 {
		b.WriteString("The following packages will be REMOVED:\n")
		for _, pkg := range view.ObsoleteKernels {
			b.WriteString(fmt.Sprintf("  %s* (%s)\n", shortName(pkg), packageKind(pkg)))
		}
		for _, pkg := range view.ObsoleteHeaders {
			b.WriteString(fmt.Sprintf("  %s* (%s)\n", shortName(pkg), packageKind(pkg)))
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("0 upgraded, 0 newly installed, %d to remove and 0 not upgraded.\n", total))
	return b.String()
}

// RenderCommand shows the removal command about to run, or the one
// that would run under a dry run.
func RenderCommand(argv []string, dryRun bool) string {
	cmd := strings.Join(argv, " ")
	if !isTerminal() {
		if dryRun {
			return fmt.Sprintf("\n[DRY RUN] Would execute: %s\n\n", cmd)
		}
		return fmt.Sprintf("\nExecuting: %s\n\n", cmd)
	}

	if dryRun {
		return "\n" + warningStyle.Render("[DRY RUN]") + " Would execute: " + dimStyle.Render(cmd) + "\n\n"
	}
	return "\nExecuting: " + dimStyle.Render(cmd) + "\n\n"
}

// RenderSummary reports how the removal batch went.
func RenderSummary(removed, failed int) string {
	if !isTerminal() {
		return renderSummaryPlain(removed, failed)
	}

	var b strings.Builder
	b.WriteString("\n")
	if removed > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Successfully removed %d package(s).", removed)) + "\n")
	}
	if failed > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Failed to remove %d package(s).", failed)) + "\n")
	}
	if removed > 0 || failed > 0 {
		b.WriteString("\nDone.\n")
	}
	return b.String()
}

func renderSummaryPlain(removed, failed int) string {
	var b strings.Builder
	b.WriteString("\n")
	if removed > 0 {
		b.WriteString(fmt.Sprintf("Successfully removed %d package(s).\n", removed))
	}
	if failed > 0 {
		b.WriteString(fmt.Sprintf("Failed to remove %d package(s).\n", failed))
	}
	if removed > 0 || failed > 0 {
		b.WriteString("\nDone.\n")
	}
	return b.String()
}

// RenderRebootNotice tells the operator a restart is pending.
func RenderRebootNotice() string {
	if !isTerminal() {
		return "\nA reboot is required to use the updated kernel.\nRun 'sudo reboot' to restart the system.\n"
	}
	return "\n" + warningStyle.Render("A reboot is required to use the updated kernel.") + "\n" +
		dimStyle.Render("Run 'sudo reboot' to restart the system.") + "\n"
}

// RenderCleanSystem reports that nothing is removable.
func RenderCleanSystem() string {
	if !isTerminal() {
		return "✓ No obsolete kernels or headers found.\n  Your system is clean!\n"
	}
	return successStyle.Render("✓ No obsolete kernels or headers found.") + "\n" +
		dimStyle.Render("  Your system is clean!") + "\n"
}

// ErrorInfo contains information about an error to display.
type ErrorInfo struct {
	Title   string
	Message string
	Hint    string
}

// RenderError renders an error message with colors.
func RenderError(info ErrorInfo) string {
	if !isTerminal() {
		return renderErrorPlain(info)
	}

	var b strings.Builder
	b.WriteString(errorStyle.Render("✗ "+info.Title) + "\n")
	b.WriteString("   ")
	b.WriteString(errorStyle.Render(info.Message))
	b.WriteString("\n")

	if info.Hint != "" {
		b.WriteString("   ")
		b.WriteString(dimStyle.Render("Hint: "+info.Hint) + "\n")
	}
	return b.String()
}

func renderErrorPlain(info ErrorInfo) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Error: %s\n", info.Title))
	b.WriteString(fmt.Sprintf("  %s\n", info.Message))
	if info.Hint != "" {
		b.WriteString(fmt.Sprintf("  Hint: %s\n", info.Hint))
	}
	return b.String()
}
