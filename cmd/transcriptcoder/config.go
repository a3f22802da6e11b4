package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aidantay/TranscriptCoder/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage transcriptcoder configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/" + configFileName + ".yaml.",
		Example: `  transcriptcoder config                              # show all config
  transcriptcoder config set genome /data/hg38/chroms   # set the genome directory
  transcriptcoder config set chromosome_jobs 4          # process 4 chromosomes at once
  transcriptcoder config get database_name              # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

// runConfigShow prints the settings that have a value, ignoring unknown
// keys left in the config file.
func runConfigShow(w io.Writer) error {
	settings := make(map[string]any)
	for _, key := range config.Keys() {
		if viper.IsSet(key) {
			settings[key] = viper.Get(key)
		}
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		fmt.Fprintf(w, "# Config file: %s\n", cfgFile)
	}
	fmt.Fprint(w, string(out))
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	v, err := config.ParseValue(key, value)
	if err != nil {
		return err
	}
	viper.Set(key, v)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configFileName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	if !config.IsKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
