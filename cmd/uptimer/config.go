// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
	"github.com/zeebo/structs"

	uptimer "github.com/filipe-posio-devlop/Uptimer"
)

// bindConfigFlags registers the peer configuration flags on the command.
// Defaults match the config struct tags.
func bindConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("database.path", "uptimer.db", "path to the sqlite datastore")
	cmd.Flags().String("console.address", ":8480", "server address of the public status api")
	cmd.Flags().String("debug.address", "", "address to listen on for debug endpoints, empty to disable")
}

// loadConfig loads configuration with viper and decodes it into the peer
// config. Values come from the flags, the config.yaml in the config
// directory, and UPTIMER_ environment variables.
func loadConfig(cmd *cobra.Command) (*uptimer.Config, error) {
	vip := viper.New()
	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return nil, errs.Wrap(err)
	}

	vip.SetEnvPrefix("uptimer")
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	if err := readConfigFile(cmd, vip); err != nil {
		return nil, err
	}
	vip.AutomaticEnv()

	config := &uptimer.Config{}
	decoded := structs.Decode(vip.AllSettings(), config)
	if decoded.Error != nil {
		return nil, errs.Wrap(decoded.Error)
	}
	return config, nil
}

// readConfigFile loads configuration into *viper.Viper from file specified
// with "config-dir" flag.
func readConfigFile(cmd *cobra.Command, vip *viper.Viper) error {
	cfgFlag := cmd.Flags().Lookup("config-dir")
	if cfgFlag != nil && cfgFlag.Value.String() != "" {
		path := filepath.Join(os.ExpandEnv(cfgFlag.Value.String()), "config.yaml")
		if fileExists(path) {
			setupCommand := cmd.Annotations["type"] == "setup"
			vip.SetConfigFile(path)
			if err := vip.ReadInConfig(); err != nil && !setupCommand {
				return err
			}
		}
	}
	return nil
}

// saveConfig writes the effective settings of the command as config.yaml.
func saveConfig(cmd *cobra.Command, path string, overrides map[string]interface{}) error {
	vip := viper.New()
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Name == "config-dir" {
			return
		}
		vip.Set(flag.Name, flag.Value.String())
	})
	for key, value := range overrides {
		vip.Set(key, value)
	}

	vip.SetConfigType("yaml")
	return errs.Wrap(vip.WriteConfigAs(path))
}

// fileExists checks whether file exists, handle error correctly if it doesn't.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		}
		log.Fatalf("failed to check for file existence: %v", err)
	}
	return true
}
