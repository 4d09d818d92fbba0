package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
}

var onboardCmd = &cobra.Command{
	Use:   "onboard [USER]",
	Short: "Create a fan profile (an id is generated when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:     "status USER",
	Aliases: []string{"show"},
	Short:   "Show tier, streak, spins and profile progress",
	Args:    cobra.ExactArgs(1),
	RunE:    runStatus,
}

var resetCmd = &cobra.Command{
	Use:   "reset USER",
	Short: "Reset a fan's points to zero (admin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func runOnboard(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	var id string
	if len(args) == 1 {
		id = args[0]
	}
	res, err := d.Engine.Onboard(context.Background(), id)
	if err != nil {
		return err
	}
	fmt.Printf("Onboarded %s as %s\n", res.View.UserID, res.View.Tier.Name)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	vm, err := d.Engine.ViewModel(context.Background(), args[0])
	if err != nil {
		return err
	}
	printView(vm)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := d.Engine.ResetPoints(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Reset %s to 0 pts (%s)\n", res.View.UserID, res.View.Tier.Name)
	return nil
}
