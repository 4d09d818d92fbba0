package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fanpulse/fanpulse/internal/domain"
)

func init() {
	eventsCmd.Flags().BoolVar(&eventsAck, "ack", false, "Mark listed events as shown")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "Number of events to list")
	rootCmd.AddCommand(eventsCmd)
}

var (
	eventsAck   bool
	eventsLimit int
)

var eventsCmd = &cobra.Command{
	Use:   "events USER",
	Short: "List celebrations not yet shown to the fan",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	events, err := d.Events.Pending(ctx, args[0], eventsLimit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("Nothing to celebrate right now.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tDETAIL\tWHEN")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ev.ID, ev.Type, eventDetail(ev), ev.CreatedAt.Format("2006-01-02 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !eventsAck {
		return nil
	}
	for _, ev := range events {
		if err := d.Events.MarkShown(ctx, args[0], ev.ID); err != nil {
			return err
		}
	}
	fmt.Printf("Marked %d events as shown\n", len(events))
	return nil
}

func eventDetail(ev domain.Event) string {
	switch {
	case ev.TierUpgraded != nil:
		return fmt.Sprintf("%s -> %s", ev.TierUpgraded.From.Name, ev.TierUpgraded.To.Name)
	case ev.PrizeWon != nil:
		return fmt.Sprintf("%s (%s)", ev.PrizeWon.Segment.Name, ev.PrizeWon.Segment.Tier)
	default:
		return "-"
	}
}
