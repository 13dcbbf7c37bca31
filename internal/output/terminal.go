// Package output renders command results for humans (colored text and tables)
// and machines (indented JSON).
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/dmagro/nft-image-urls/internal/provider"
)

// Colors for status indicators
var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

func newTable(w io.Writer, columns ...interface{}) table.Table {
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	return table.New(columns...).WithHeaderFormatter(headerFmt).WithWriter(w)
}

func formatStatus(status string) string {
	switch status {
	case provider.StatusUp:
		return green("✓ UP")
	case provider.StatusSlow:
		return yellow("⚠ SLOW")
	case provider.StatusDegraded:
		return yellow("⚠ DEG")
	case provider.StatusDown:
		return red("✗ DOWN")
	default:
		return "?"
	}
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "—"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatSuccessRate(rate float64) string {
	str := fmt.Sprintf("%.1f%%", rate)
	if rate >= 99.0 {
		return green(str)
	}
	if rate >= 90.0 {
		return yellow(str)
	}
	return red(str)
}

func formatErrorCount(count int) string {
	if count == 0 {
		return green("0")
	}
	return red(fmt.Sprintf("%d", count))
}

// DisableColors turns off color output (for non-TTY or JSON mode)
func DisableColors() {
	color.NoColor = true
}

// IsTerminal returns true if stdout is a terminal
func IsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
