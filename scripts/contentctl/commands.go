package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/lifecycle"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

// withBackend opens the backend for one command and closes it afterwards.
func withBackend(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, b backend) error) error {
	ctx := cmd.Context()
	b, err := openBackend(ctx, opts)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, b)
}

func newSeedCmd(root *rootOptions, reseed bool) *cobra.Command {
	req := seedRequest{reseed: reseed}

	use, short := "seed", "Create generated modules with slides, objectives and category memberships"
	if reseed {
		use, short = "reseed", "Clear every module and seed new ones in one transaction"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if req.Count < 1 || req.Count > 500 {
				return fmt.Errorf("--count must be between 1 and 500")
			}
			if req.Generator != "template" && req.Generator != "fixtures" {
				return fmt.Errorf("--generator must be template or fixtures")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, root, func(ctx context.Context, b backend) error {
				res, err := b.Seed(ctx, req)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), root.output, res)
			})
		},
	}
	cmd.Flags().IntVarP(&req.Count, "count", "n", 10, "Number of modules to create")
	cmd.Flags().StringVarP(&req.Generator, "generator", "g", "template", "Content generator: template or fixtures")
	cmd.Flags().StringVar(&req.Prefix, "prefix", "", "Title prefix for template modules")
	return cmd
}

func newClearCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "clear modules|quizzes|progress",
		Short:     "Delete an entire content family",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"modules", "quizzes", "progress"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, root, func(ctx context.Context, b backend) error {
				res, err := b.Clear(ctx, args[0])
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), root.output, res)
			})
		},
	}
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that every ordered group is densely numbered",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, root, func(ctx context.Context, b backend) error {
				report, err := b.Audit(ctx, repair)
				if err != nil {
					return err
				}
				if err := printReport(cmd.OutOrStdout(), root.output, report); err != nil {
					return err
				}
				if len(report.Violations) > 0 && !repair {
					return fmt.Errorf("%d group(s) out of order", len(report.Violations))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "Compact the groups that are out of order")
	return cmd
}

func newRunsCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent maintenance runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, root, func(ctx context.Context, b backend) error {
				runs, err := b.Runs(ctx, limit)
				if err != nil {
					return err
				}
				return printRuns(cmd.OutOrStdout(), root.output, runs)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func printResult(w io.Writer, format string, res *lifecycle.Result) error {
	if format == "json" {
		return printJSON(w, res)
	}
	fmt.Fprintf(w, "%s (run %s)\n", res.Operation, res.RunID)
	keys := make([]string, 0, len(res.Counts))
	for k := range res.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%d\n", k, res.Counts[k])
	}
	return tw.Flush()
}

func printReport(w io.Writer, format string, report *lifecycle.AuditReport) error {
	if format == "json" {
		return printJSON(w, report)
	}
	fmt.Fprintf(w, "checked at %s\n", report.CheckedAt.Format(time.RFC3339))

	kinds := make([]string, 0, len(report.Groups))
	for kind := range report.Groups {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, kind := range kinds {
		fmt.Fprintf(tw, "  %s\t%d groups\n", kind, report.Groups[sequencer.Kind(kind)])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, v := range report.Violations {
		fmt.Fprintf(w, "  out of order: %s positions=%v unplaced=%d\n", v.Group, v.Positions, v.Unplaced)
	}
	if report.Repaired > 0 {
		fmt.Fprintf(w, "repaired %d group(s)\n", report.Repaired)
	}
	return nil
}

func printRuns(w io.Writer, format string, runs []content.MaintenanceRun) error {
	if format == "json" {
		return printJSON(w, runs)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tOPERATION\tSTATUS\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.StartedAt.Format(time.RFC3339), r.Operation, r.Status, r.FinishedAt.Sub(r.StartedAt))
	}
	return tw.Flush()
}
