package cmd

import (
	"fmt"
	"os"

	"github.com/0xmoonear/wormhole/cmd/bridged"
	"github.com/0xmoonear/wormhole/pkg/version"

	"github.com/spf13/cobra"

	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd only groups the settle, claim and ledger commands; it does nothing on its own.
var rootCmd = &cobra.Command{
	Use:   "bridged",
	Short: "Token bridge settlement host",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display binary version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version())
	},
}

// Execute runs bridged and exits non-zero when the selected command fails.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bridged.yaml)")
	rootCmd.AddCommand(bridged.SettleCmd)
	rootCmd.AddCommand(bridged.ClaimCmd)
	rootCmd.AddCommand(bridged.LedgerCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig loads the global config file. Per-command settings are bound later by the
// subcommands' own config handling.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// $HOME/.bridged.{yaml,json,toml,...}
		viper.AddConfigPath(home)
		viper.SetConfigName(".bridged")
	}

	viper.AutomaticEnv()

	// A missing file is fine; every setting also has a flag.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
