package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fanpulse/fanpulse/internal/app/progression"
	"github.com/fanpulse/fanpulse/internal/daemon"
	"github.com/fanpulse/fanpulse/internal/domain"
)

// loadConfig reads the config and applies its logging section.
func loadConfig() (daemon.Config, io.Closer, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return cfg, nil, err
	}
	closer, err := daemon.ConfigureLogging(cfg.Logging)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, closer, nil
}

// openDaemon builds a SQLite-backed daemon for one-shot commands.
// The returned cleanup closes the database and the log file.
func openDaemon() (*daemon.Daemon, func(), error) {
	cfg, closer, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return d, func() {
		d.Close()
		closer.Close()
	}, nil
}

// printEvents reports celebrations produced by a command.
func printEvents(events []domain.Event) {
	for _, ev := range events {
		switch {
		case ev.TierUpgraded != nil:
			up := ev.TierUpgraded
			fmt.Printf("*** Tier up: %s -> %s at %d pts", up.From.Name, up.To.Name, up.PointsAtCrossing)
			if up.To.Reward != "" {
				fmt.Printf(" (reward: %s)", up.To.Reward)
			}
			fmt.Println()
		case ev.PrizeWon != nil:
			p := ev.PrizeWon
			fmt.Printf("*** Prize: %s [%s] on segment %d\n", p.Segment.Name, p.Segment.Tier, p.Index)
		}
	}
}

// printView renders the compact progress summary.
func printView(vm progression.ViewModel) {
	fmt.Printf("User:       %s\n", vm.UserID)
	tier := vm.Tier.Name
	if vm.FloorApplied {
		tier += " (profile floor)"
	}
	fmt.Printf("Tier:       %s\n", tier)
	fmt.Printf("Points:     %d\n", vm.Points)
	if vm.NextTier != nil {
		fmt.Printf("Next:       %s  %s  %d pts to go\n", vm.NextTier.Name, tierBar(vm.ProgressPercent), vm.PointsToNext)
	} else {
		fmt.Printf("Next:       top tier reached  %s\n", tierBar(100))
	}
	fmt.Printf("Profile:    %d%%\n", vm.Completion)
	fmt.Printf("Streak:     %d weeks (%s)  multiplier x%.2f  access %s\n",
		vm.Streak.CurrentWeeks, vm.Streak.Status, vm.Multiplier, vm.AccessLevel)
	fmt.Printf("Flame:      %s %s\n", vm.FlameLevel, flameGauge(vm.Fuel.Fuel, vm.Fuel.Target))
	fmt.Printf("Spins:      %d available\n", vm.Spins)
	fmt.Printf("Shields:    %d\n", vm.Shields.Available)
	if vm.NextMilestone != nil {
		fmt.Printf("Milestone:  %s in %d weeks\n", vm.NextMilestone.Milestone.Name, vm.NextMilestone.WeeksRemaining)
	}
	if len(vm.Socials) > 0 {
		names := make([]string, len(vm.Socials))
		for i, p := range vm.Socials {
			names[i] = string(p)
		}
		fmt.Printf("Socials:    %s\n", strings.Join(names, ", "))
	}
}

func printResult(res progression.Result) {
	printEvents(res.Events)
	fmt.Fprintf(os.Stdout, "%s: %d pts, %s, profile %d%%\n",
		res.View.UserID, res.View.Points, res.View.Tier.Name, res.View.Completion)
}
