// Package config reads pw settings from the environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every variable name, e.g. PW_PATH.
const EnvPrefix = "PW"

// DefaultFileName is the database file name inside the user config directory.
const DefaultFileName = "passwords.pw"

// DefaultGPGBinary is used when PW_GPG_BINARY is not set.
const DefaultGPGBinary = "gpg2"

type (
	Config struct {
		Store
		GPG
		Edit
		Output
		Completion
	}

	Store struct {
		Path       string
		Passphrase string // unlocks .pwx files; prompted when empty
	}
	GPG struct {
		Binary    string
		Homedir   string
		Recipient string // required to re-encrypt after --edit
	}
	Edit struct {
		Editor string // EDITOR is deliberately not consulted
	}
	Output struct {
		Debug   bool
		NoColor bool
	}
	Completion struct {
		Enabled bool // complete keys of encrypted databases too
	}
)

// DefaultPath returns the database location used when PW_PATH is unset.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(dir, DefaultFileName)
}

// NewConfig loads the configuration from the process environment.
func NewConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("path", DefaultPath())
	v.SetDefault("passphrase", "")
	v.SetDefault("gpg_binary", DefaultGPGBinary)
	v.SetDefault("gpg_homedir", "")
	v.SetDefault("gpg_recipient", "")
	v.SetDefault("editor", "")
	v.SetDefault("debug", false)
	v.SetDefault("no_color", false)
	v.SetDefault("completion_enabled", false)

	// NO_COLOR (https://no-color.org) carries no prefix.
	_ = v.BindEnv("no_color_std", "NO_COLOR")

	path := v.GetString("path")
	if path == "" {
		path = DefaultPath()
	}

	return &Config{
		Store: Store{
			Path:       path,
			Passphrase: v.GetString("passphrase"),
		},
		GPG: GPG{
			Binary:    v.GetString("gpg_binary"),
			Homedir:   v.GetString("gpg_homedir"),
			Recipient: v.GetString("gpg_recipient"),
		},
		Edit: Edit{
			Editor: v.GetString("editor"),
		},
		Output: Output{
			Debug:   v.GetBool("debug"),
			NoColor: v.GetBool("no_color") || v.GetString("no_color_std") != "",
		},
		Completion: Completion{
			Enabled: v.GetBool("completion_enabled"),
		},
	}
}
