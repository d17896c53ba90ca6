package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nullforge/warden/internal/registry"
	"github.com/nullforge/warden/internal/sweep"
)

func openRegistry(configPath string) (*registry.SQLite, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	path := cfg.RegistryPath
	if path == "" {
		path = registry.DefaultPath()
	}
	return registry.OpenOrCreate(context.Background(), path)
}

func newListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every live entry in the task registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openRegistry(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			entries, err := reg.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("(no active runs)")
				return nil
			}
			fmt.Printf("%-8s %-24s %-10s %s\n", "PID", "STARTED", "MANAGER", "LOG PATH")
			for _, e := range entries {
				fmt.Printf("%-8d %-24s %-10d %s\n",
					e.PID,
					e.Record.StartedAt.Format(time.RFC3339),
					e.Record.ManagerPID,
					e.Record.LogPath,
				)
			}
			return nil
		},
	}
}

func newSweepCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Force-run the startup reconciliation pass on demand",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openRegistry(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			removals, err := sweep.Run(cmd.Context(), reg, time.Now().UTC())
			if err != nil {
				return err
			}
			if len(removals) == 0 {
				fmt.Println("nothing to reclaim")
				return nil
			}
			for _, r := range removals {
				fmt.Printf("reclaimed pid=%d reason=%s\n", r.PID, r.Reason)
			}
			return nil
		},
	}
}

func newServeCommand(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only HTTP status and metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.ListenAddr
			}

			reg, err := registry.OpenOrCreate(cmd.Context(), firstNonEmpty(cfg.RegistryPath, registry.DefaultPath()))
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			return runServer(addr, reg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, e.g. :9090 (overrides config file)")
	return cmd
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
