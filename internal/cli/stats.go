package cli

import (
	"fmt"
	"io"

	"github.com/raphaelgruber/chatline/internal/metrics"
)

// printStats displays transport statistics gathered during this run.
func printStats(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintf(w, "Transport Statistics (this run)\n")
	fmt.Fprintf(w, "═══════════════════════════════\n")
	fmt.Fprintf(w, "Uptime: %.1f seconds\n", snap.UptimeSeconds)

	if snap.ListConversations == nil && snap.LoadMessages == nil && snap.SendMessage == nil {
		fmt.Fprintln(w, "\nNo calls made.")
		return
	}

	if snap.ListConversations != nil {
		fmt.Fprintf(w, "\nList Conversations:\n")
		printOpStats(w, snap.ListConversations)
	}

	if snap.LoadMessages != nil {
		fmt.Fprintf(w, "\nLoad Messages:\n")
		printOpStats(w, snap.LoadMessages)
	}

	if snap.SendMessage != nil {
		fmt.Fprintf(w, "\nSend Message:\n")
		printOpStats(w, snap.SendMessage)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(w io.Writer, op *metrics.OperationSnapshot) {
	fmt.Fprintf(w, "  Calls: %d, Failed: %d, Total: %dms\n", op.Count, op.Failures, op.TotalTimeMs)
	fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
