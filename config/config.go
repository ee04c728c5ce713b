// Package config loads the user-level configuration of the tool.
package config

import (
	"os"
	"path"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/stoneforge/bgen/log"
)

// Config holds the user-level defaults.
type Config struct {
	DefaultBackend string
	AlwaysGraph    bool
}

var config *Config

const configFileName = "config"

func getConfigDir() (string, error) {
	if configDir, ok := os.LookupEnv("BGEN_CONFIG_DIR"); ok {
		return configDir, nil
	}

	if xdgConfigHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return path.Join(xdgConfigHome, "bgen"), nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return path.Join(home, ".config", "bgen"), nil
}

func loadConfiguration() Config {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("bgen")
	v.AutomaticEnv()
	v.SetDefault("defaultBackend", "ninja")
	v.SetDefault("alwaysGraph", false)

	configDir, err := getConfigDir()
	if err != nil {
		log.Debug("Unable to find the configuration directory. Using default configuration.\n")
		return Config{
			DefaultBackend: v.GetString("defaultBackend"),
			AlwaysGraph:    v.GetBool("alwaysGraph"),
		}
	}
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			log.Debug("No configuration file in '%s'. Using default configuration.\n", configDir)
		} else {
			log.Warning("Failed to read the configuration in '%s': %s. Using default configuration.\n", configDir, err)
		}
	} else {
		log.Debug("Loaded configuration from '%s'.\n", v.ConfigFileUsed())
	}

	return Config{
		DefaultBackend: v.GetString("defaultBackend"),
		AlwaysGraph:    v.GetBool("alwaysGraph"),
	}
}

// GetConfig returns the user-level configuration, loading it on first use.
func GetConfig() Config {
	if config == nil {
		loadedConfig := loadConfiguration()
		config = &loadedConfig
	}

	return *config
}
