package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fanpulse/fanpulse/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Keep all state in memory (nothing is persisted)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost   string
	servePort   int
	serveMemory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the FanPulse API server",
	Long:  `Start the progression JSON API at localhost:8420.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, closer, err := loadConfig()
	if err != nil {
		return err
	}
	defer closer.Close()

	// Override config from flags
	if serveHost != "" {
		cfg.API.Host = serveHost
	}
	if servePort > 0 {
		cfg.API.Port = servePort
	}

	var d *daemon.Daemon
	if serveMemory {
		d, err = daemon.NewInMemory(cfg)
	} else {
		d, err = daemon.NewWithConfig(cfg)
	}
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Serve(context.Background())
}
