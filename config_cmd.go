package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/motortrack/motortrack-go/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigReloadCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		RunE:  runConfigShow,
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	if resolvedCfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(resolvedCfg.Redacted())
	}

	return config.RenderEffective(resolvedCfg, os.Stdout)
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Long: `Print the config file path that would be read, whether or not it exists.

Works even when the config file is malformed, so the path can be located
and the file fixed.`,
		RunE: runConfigPath,
	}
}

// runConfigPath resolves the lookup chain by hand: this command must work
// without loading the config file.
func runConfigPath(_ *cobra.Command, _ []string) error {
	path := flagConfigPath
	if path == "" {
		path = config.ReadEnvOverrides().ConfigPath
	}

	if path == "" {
		path = config.DefaultConfigPath()
	}

	fmt.Println(path)

	return nil
}

func newConfigReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Tell a running watch to reload its configuration",
		Long: `Send SIGHUP to the watch daemon listed in the PID file.

The daemon re-reads the config file and environment and applies the new
poll interval and geocoding settings without a restart.`,
		RunE: runConfigReload,
	}
}

func runConfigReload(_ *cobra.Command, _ []string) error {
	if err := sendSIGHUP(watchPIDPath(resolvedCfg)); err != nil {
		return err
	}

	statusf("Reload signal sent.\n")

	return nil
}
