package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	pointsCmd.Flags().StringVar(&pointsReason, "reason", "manual", "Reason recorded in the points history")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of entries to show")
	rootCmd.AddCommand(pointsCmd)
	rootCmd.AddCommand(historyCmd)
}

var (
	pointsReason string
	historyLimit int
)

var pointsCmd = &cobra.Command{
	Use:   "points USER DELTA",
	Short: "Credit points to a fan",
	Long:  `Credit points to a fan. Negative, NaN and infinite values are clamped to zero.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runPoints,
}

var historyCmd = &cobra.Command{
	Use:   "history USER",
	Short: "Show recent points changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runPoints(cmd *cobra.Command, args []string) error {
	delta, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid points %q: %w", args[1], err)
	}

	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := d.Engine.ApplyPointsDelta(context.Background(), args[0], delta, pointsReason)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	entries, err := d.Engine.History(ctx, args[0], historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No points history yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tDELTA\tBALANCE\tREASON")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%+d\t%d\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.Delta,
			e.Balance,
			e.Reason,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	total, err := d.Ledger.Total(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Net recorded: %d pts\n", total)
	return nil
}
