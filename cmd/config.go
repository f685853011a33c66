package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sprs/sprs/internal/config"
	"github.com/sprs/sprs/internal/log"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the sprs configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configFilePath())
	},
}

var configSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Set a single key in the config file",
	Example: `  sprs config set ui.mode plain
  sprs config set cache.ttl 30s`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFilePath()
		if err := setConfigValue(path, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", args[0], args[1], path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configSetCmd)
}

func configFilePath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return defaultConfigPath
}

// setConfigValue validates key=value against the current file before
// writing it, so an invalid value never reaches disk.
func setConfigValue(path, key, value string) error {
	probe := viper.New()
	setDefaults(probe)
	probe.SetConfigFile(path)
	probe.SetConfigType("yaml")
	if fileExists(path) {
		if err := probe.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
	if !probe.IsSet(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	probe.Set(key, value)

	var next config.Config
	if err := probe.Unmarshal(&next); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := config.Validate(next); err != nil {
		return err
	}

	if err := config.SetValue(path, key, value); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Config value set", "key", key, "path", path)
	return nil
}
