package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(missionCmd)
	rootCmd.AddCommand(missionsCmd)
	rootCmd.AddCommand(tiersCmd)
}

var missionCmd = &cobra.Command{
	Use:   "mission USER MISSION",
	Short: "Complete a mission (points scale with the streak multiplier)",
	Args:  cobra.ExactArgs(2),
	RunE:  runMission,
}

var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "List the mission catalog",
	RunE:  runMissions,
}

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "List the tier ladder",
	RunE:  runTiers,
}

func runMission(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := d.Engine.CompleteMission(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func runMissions(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPOINTS\tFUEL")
	for _, m := range d.Engine.Missions() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", m.ID, m.Name, m.Points, m.Fuel)
	}
	return w.Flush()
}

func runTiers(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	floor := d.Engine.Resolver().Floor()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIER\tFROM\tREWARD\t")
	for _, t := range d.Engine.Resolver().Table().Tiers() {
		mark := ""
		if t.Name == floor.Name {
			mark = "profile floor"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", t.Name, t.MinPoints, t.Reward, mark)
	}
	return w.Flush()
}
