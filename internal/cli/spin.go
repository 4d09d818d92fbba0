package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fanpulse/fanpulse/internal/domain"
)

func init() {
	settleCmd.Flags().BoolVar(&settleAll, "all", false, "Settle every fan")
	rootCmd.AddCommand(spinCmd)
	rootCmd.AddCommand(settleCmd)
	rootCmd.AddCommand(fuelCmd)
	rootCmd.AddCommand(shieldCmd)
}

var settleAll bool

var spinCmd = &cobra.Command{
	Use:   "spin USER",
	Short: "Spin the prize wheel",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpin,
}

var settleCmd = &cobra.Command{
	Use:   "settle [USER]",
	Short: "Close the week: extend or break streaks and pay weekly bonuses",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettle,
}

var fuelCmd = &cobra.Command{
	Use:   "fuel USER AMOUNT",
	Short: "Add weekly fuel",
	Args:  cobra.ExactArgs(2),
	RunE:  runFuel,
}

var shieldCmd = &cobra.Command{
	Use:   "shield USER",
	Short: "Grant a streak shield",
	Args:  cobra.ExactArgs(1),
	RunE:  runShield,
}

func runSpin(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := d.Engine.Spin(context.Background(), args[0])
	if errors.Is(err, domain.ErrNoSpinsAvailable) {
		fmt.Println("No spins left this week. Keep the flame burning to earn more.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Wheel stopped at %.1f° -> %s\n", res.Landing.Angle, res.Landing.Segment.Name)
	printResult(res.Result)
	fmt.Printf("Spins left: %d\n", res.View.Spins)
	return nil
}

func runSettle(cmd *cobra.Command, args []string) error {
	if settleAll == (len(args) == 1) {
		return errors.New("pass a USER or --all")
	}

	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	if settleAll {
		settled, failed, err := d.Engine.SettleAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Settled %d fans (%d failed)\n", settled, failed)
		return nil
	}

	res, err := d.Engine.SettleWeek(ctx, args[0])
	if err != nil {
		return err
	}
	s := res.Settlement
	fmt.Printf("Week %s: streak %d weeks, +%d bonus pts, %d shields\n",
		s.Outcome, s.Streak.CurrentWeeks, s.BonusPoints, s.Shields.Available)
	if s.Milestone != nil {
		fmt.Printf("*** Milestone: %s (%s)\n", s.Milestone.Name, s.Milestone.Reward)
	}
	printResult(res.Result)
	return nil
}

func runFuel(cmd *cobra.Command, args []string) error {
	var amount int64
	if _, err := fmt.Sscanf(args[1], "%d", &amount); err != nil {
		return fmt.Errorf("invalid fuel %q: %w", args[1], err)
	}

	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := d.Engine.AddFuel(context.Background(), args[0], amount)
	if err != nil {
		return err
	}
	fmt.Printf("Flame: %s %s, %d spins available\n",
		res.View.FlameLevel, flameGauge(res.View.Fuel.Fuel, res.View.Fuel.Target), res.View.Spins)
	return nil
}

func runShield(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := d.Engine.GrantShield(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s has %d shields\n", res.View.UserID, res.View.Shields.Available)
	return nil
}
