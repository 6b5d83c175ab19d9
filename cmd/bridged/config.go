package bridged

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variables overriding flags, e.g. BRIDGED_DATADIR.
const EnvPrefix = "BRIDGED"

// ConfigOptions is used to configure the loading of config parameters by the bridged commands.
type ConfigOptions struct {
	// FilePath is the path to the config file to be loaded, including the file name and extension.
	// If empty, the file found by the root command (if any) is used.
	FilePath string

	// EnvPrefix is the prefix to be added to environment variables to load variables that
	// override config file settings.
	EnvPrefix string
}

// InitFileConfig initializes configuration according to the following precedence:
// 1. Command line flags
// 2. Environment variables
// 3. Config file
// 4. Cobra default values
func InitFileConfig(cmd *cobra.Command, options ConfigOptions) error {
	v := viper.New()

	filePath := options.FilePath
	if filePath == "" {
		filePath = viper.ConfigFileUsed()
	}
	if filePath != "" {
		v.SetConfigFile(filePath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", filePath, err)
		}
	}

	v.SetEnvPrefix(options.EnvPrefix)
	v.AutomaticEnv()

	return bindFlags(cmd, v)
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		configName := f.Name
		if bindErr != nil || f.Changed || !v.IsSet(configName) {
			return
		}

		// Lists come from config files as sequences and from the environment as comma separated strings.
		var val string
		if f.Value.Type() == "stringSlice" {
			val = strings.Join(v.GetStringSlice(configName), ",")
		} else {
			val = fmt.Sprintf("%v", v.Get(configName))
		}

		if err := cmd.Flags().Set(f.Name, val); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %s to config: %w", f.Name, err)
		}
	})
	return bindErr
}

// initCommandConfig is the PersistentPreRunE of every bridged command.
func initCommandConfig(cmd *cobra.Command, args []string) error {
	return InitFileConfig(cmd, ConfigOptions{EnvPrefix: EnvPrefix})
}
