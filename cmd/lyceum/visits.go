package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/lyceum-academy/lyceum/internal/config"
	"github.com/lyceum-academy/lyceum/internal/maintenance"
	"github.com/lyceum-academy/lyceum/internal/store"
	"github.com/spf13/cobra"
)

var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "Inspect recorded page visits.",
}

var visitsSince time.Duration

var visitsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print visit counts per path.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if visitsSince <= 0 {
			return fmt.Errorf("--since must be positive, got %s", visitsSince)
		}
		since := time.Now().Add(-visitsSince)
		return withQueries(func(ctx context.Context, q *store.Queries) error {
			counts, err := q.CountVisitsByPath(ctx, since)
			if err != nil {
				return err
			}
			return writeVisitReport(cmd.OutOrStdout(), counts)
		})
	},
}

var visitsPruneOlderThan time.Duration

var visitsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete visits older than the retention window.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		retention := visitsPruneOlderThan
		if retention <= 0 {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			retention = cfg.VisitRetention
		}
		if retention <= 0 {
			cmd.Println("visit retention is disabled; nothing to prune")
			return nil
		}
		return withQueries(func(ctx context.Context, q *store.Queries) error {
			counter := &countingDeleter{next: q}
			pruner := &maintenance.VisitPruner{Store: counter, Retention: retention}
			if err := pruner.Run(ctx); err != nil {
				return err
			}
			cmd.Printf("deleted %d visits older than %s\n", counter.deleted, retention)
			return nil
		})
	},
}

// countingDeleter remembers how many rows the pruner removed.
type countingDeleter struct {
	next    maintenance.VisitDeleter
	deleted int64
}

func (c *countingDeleter) DeleteVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := c.next.DeleteVisitsBefore(ctx, cutoff)
	c.deleted += n
	return n, err
}

func writeVisitReport(w io.Writer, counts []store.VisitPathCount) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, "no visits recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tVISITS")
	var total int64
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Path, c.Visits)
		total += c.Visits
	}
	fmt.Fprintf(tw, "total\t%d\n", total)
	return tw.Flush()
}

func init() {
	visitsCmd.AddCommand(visitsReportCmd, visitsPruneCmd)
	visitsPruneCmd.Flags().DurationVar(&visitsPruneOlderThan, "older-than", 0, "Retention window (defaults to VISIT_RETENTION)")
	visitsReportCmd.Flags().DurationVar(&visitsSince, "since", 7*24*time.Hour, "Only count visits newer than this")
}
