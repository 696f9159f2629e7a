package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/sparkify-dwh/actions"
	"github.com/relloyd/sparkify-dwh/config"
	"github.com/spf13/cobra"
)

var defaultCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Set flag values that sdw uses when a flag is not given",
	Long: fmt.Sprintf(`Defaults are keyed by long flag name and stored in %q.
A value given on the command line always wins over a default.

Useful defaults are dwh-config, log-level, bucket, region and aws-connection.`, config.Main.FullPath),
}

var (
	defaultAddCfg    = actions.DefaultAddConfig{}
	defaultRemoveCfg = actions.DefaultRemoveConfig{}
)

var defaultAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or set a default flag value",
	Example: `  sdw config defaults add -k dwh-config -v ~/sparkify/dwh.cfg
  sdw config defaults add -k log-level -v debug --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkDefaultKey(defaultAddCfg.Key); err != nil {
			return err
		}
		defaultAddCfg.ConfigFile = config.Main
		return actions.RunDefaultAdd(&defaultAddCfg)
	},
}

var defaultListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print the saved defaults as key=value",
	RunE: func(cmd *cobra.Command, args []string) error {
		return actions.RunDefaultList(config.Main, nil)
	},
}

var defaultRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a default flag value",
	Example: "  sdw config defaults remove -k bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultRemoveCfg.ConfigFile = config.Main
		return actions.RunDefaultRemove(&defaultRemoveCfg)
	},
}

func init() {
	configCmd.AddCommand(defaultCmd)
	defaultCmd.AddCommand(defaultAddCmd, defaultListCmd, defaultRemoveCmd)
	defaultAddCmd.Flags().SortFlags = false
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Key, "key", "k", "", "* Long name of the sdw flag, e.g. dwh-config")
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Value, "value", "v", "", "* The value to use when the flag is not given")
	defaultAddCmd.Flags().BoolVarP(&defaultAddCfg.Force, "force", "f", false, "Overwrite an existing default")
	_ = defaultAddCmd.MarkFlagRequired("key")
	_ = defaultAddCmd.MarkFlagRequired("value")
	defaultRemoveCmd.Flags().StringVarP(&defaultRemoveCfg.Key, "key", "k", "", "* Long name of the sdw flag")
	_ = defaultRemoveCmd.MarkFlagRequired("key")
	defaultAddCmd.SilenceUsage = true
	defaultRemoveCmd.SilenceUsage = true
}

// defaultKeys returns the sorted long flag names that a default can be saved for.
func defaultKeys(f cliFlags) []string {
	seen := make(map[string]bool)
	keys := make([]string, 0, len(f))
	for k, sw := range f {
		if k == "mock" || seen[sw.name] {
			continue
		}
		seen[sw.name] = true
		keys = append(keys, sw.name)
	}
	sort.Strings(keys)
	return keys
}

// checkDefaultKey returns an error if key is not the long name of an sdw flag,
// since such a default would never be read.
func checkDefaultKey(key string) error {
	keys := defaultKeys(switches)
	i := sort.SearchStrings(keys, key)
	if i < len(keys) && keys[i] == key {
		return nil
	}
	return fmt.Errorf("unknown flag %q, use one of: %v", key, strings.Join(keys, ", "))
}
