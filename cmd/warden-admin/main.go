// Command warden-admin is an operator companion to warden (§6.1): it
// never spawns a delegate. It inspects the shared registry that warden
// instances leave behind and, for `sweep` (and serve's periodic
// background sweep), runs the startup sweep, which terminates
// timed-out or orphaned delegate PIDs before deleting their entries.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// adminConfig holds the settings loadable from a TOML/YAML file via
// viper, mirroring the teacher's config-file precedence (flags, then
// file, then built-in default).
type adminConfig struct {
	RegistryPath string
	ListenAddr   string
}

func loadConfig(configPath string) (adminConfig, error) {
	v := viper.New()
	v.SetDefault("registry_path", "")
	v.SetDefault("listen_addr", ":9090")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return adminConfig{}, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	}

	return adminConfig{
		RegistryPath: v.GetString("registry_path"),
		ListenAddr:   v.GetString("listen_addr"),
	}, nil
}

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "warden-admin",
		Short: "Read-only introspection for the warden task registry",
		Long: `warden-admin inspects the shared registry that warden instances
maintain while a codex delegate is running. It never spawns a
delegate process; its sweep terminates timed-out or orphaned delegate
processes before removing their entries.`,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML or YAML config file (optional)")

	root.AddCommand(
		newListCommand(&configPath),
		newSweepCommand(&configPath),
		newServeCommand(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
