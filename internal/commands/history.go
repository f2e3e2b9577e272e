package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spachava753/toolbridge/internal/journal"
)

// HistoryOptions contains parameters for listing journaled round trips
type HistoryOptions struct {
	Journal  journal.Journal
	ToolName string
	Limit    int
	Writer   io.Writer
}

// History lists recorded round trips, most recent first.
func History(ctx context.Context, opts HistoryOptions) error {
	tw := tabwriter.NewWriter(opts.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tFORMAT\tTOOL\tSTATUS\tDURATION")
	n := 0
	for e, err := range opts.Journal.List(ctx, journal.ListOptions{ToolName: opts.ToolName, Limit: opts.Limit}) {
		if err != nil {
			return fmt.Errorf("listing journal: %w", err)
		}
		tool := e.ToolName
		if tool == "" {
			tool = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.CreatedAt.Local().Format(time.DateTime), e.Format, tool, e.Status, e.Duration.Round(time.Millisecond))
		n++
	}
	if n == 0 {
		fmt.Fprintln(opts.Writer, "No tool calls recorded.")
		return nil
	}
	return tw.Flush()
}

// HistoryShowOptions contains parameters for printing one journal entry
type HistoryShowOptions struct {
	Journal journal.Journal
	ID      string
	Writer  io.Writer
}

// HistoryShow prints the request and response of one recorded round trip.
func HistoryShow(ctx context.Context, opts HistoryShowOptions) error {
	e, err := opts.Journal.Get(ctx, opts.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(opts.Writer, "ID:       %s\n", e.ID)
	fmt.Fprintf(opts.Writer, "Time:     %s\n", e.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(opts.Writer, "Format:   %s\n", e.Format)
	fmt.Fprintf(opts.Writer, "Tool:     %s\n", e.ToolName)
	fmt.Fprintf(opts.Writer, "Tool use: %s\n", e.ToolUseID)
	fmt.Fprintf(opts.Writer, "Status:   %s\n", e.Status)
	fmt.Fprintf(opts.Writer, "Duration: %s\n", e.Duration)
	fmt.Fprintf(opts.Writer, "\nRequest:\n%s\n", strings.TrimRight(e.Request, "\n"))
	fmt.Fprintf(opts.Writer, "\nResponse:\n%s\n", strings.TrimRight(e.Response, "\n"))
	return nil
}
