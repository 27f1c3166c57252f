// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"path/filepath"
	"strings"

	"github.com/aether-player/aether/constant"
	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/key"
	"github.com/aether-player/aether/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.Aether)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Aether)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// File returns the path of the TOML configuration file, whether or not it exists yet.
func File() string {
	return filepath.Join(where.Config(), constant.Aether+".toml")
}

// Socket returns the configured engine IPC socket, falling back to the temp-dir default.
func Socket() string {
	if s := viper.GetString(key.EngineSocket); s != "" {
		return s
	}
	return where.Socket()
}

// MediaRoot returns the cleaned media library root.
func MediaRoot() string {
	return filepath.Clean(viper.GetString(key.MediaRoot))
}
