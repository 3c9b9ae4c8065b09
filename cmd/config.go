package cmd

import (
	"github.com/spf13/viper"

	"github.com/zfsreader/zfsreader/internal/device"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a zfsreader config file (overrides the default search path)")
}

// loadConfig resolves pool-reader configuration, honoring an explicit
// --config path when one was given.
func loadConfig() (*device.Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	}
	return device.LoadConfig()
}
