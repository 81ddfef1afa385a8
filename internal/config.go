// Copyright © 2026 Genome Research Limited
//
//  This file is part of altocumulus.
//
//  altocumulus is free software: you can redistribute it and/or modify
//  it under the terms of the GNU Lesser General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  altocumulus is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU Lesser General Public License for more details.
//
//  You should have received a copy of the GNU Lesser General Public License
//  along with altocumulus. If not, see <http://www.gnu.org/licenses/>.

package internal

// this file implements the config system used by the cmd package

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/inconshreveable/log15"
	"github.com/jinzhu/configor"
	"github.com/olekukonko/tablewriter"
)

const (
	// ConfigBasename is the name of the config files we look for.
	ConfigBasename = ".alto_config.yml"

	// ConfigDirEnvVar names an extra directory to look for a config file in.
	ConfigDirEnvVar = "ALTO_CONFIG_DIR"

	// ConfigEnvPrefix is the prefix of env vars that set config values, eg.
	// ALTO_BACKEND.
	ConfigEnvPrefix = "ALTO"

	// ConfigSourceEnvVar is a config value source
	ConfigSourceEnvVar = "env var"

	// ConfigSourceDefault is a config value source
	ConfigSourceDefault = "default"

	sourcesProperty = "sources"
)

// Config holds the configuration options for uploads.
type Config struct {
	Backend         string `default:"gcp"`
	Profile         string `default:""`
	TransferCommand string `default:"strato"`
	TransferFlags   string `default:"--ionice"`
	SheetExtensions string `default:".csv,.tsv,.xlsx,.txt"`
	SheetRowLimit   int    `default:"10000"`
	sources         map[string]string
}

// merge compares existing to new Config values, and for each one that has
// changed, sets the given source on the changed property in our sources,
// and sets the new value on ourselves.
func (c *Config) merge(new *Config, source string) {
	v := reflect.ValueOf(*c)
	typeOfC := v.Type()
	vNew := reflect.ValueOf(*new)

	if c.sources == nil {
		c.sources = make(map[string]string)
	}

	for i := 0; i < v.NumField(); i++ {
		property := typeOfC.Field(i).Name
		if property == sourcesProperty {
			continue
		}

		if vNew.Field(i).Interface() != v.Field(i).Interface() {
			c.sources[property] = source

			adrField := reflect.ValueOf(c).Elem().Field(i)
			switch typeOfC.Field(i).Type.Kind() {
			case reflect.String:
				adrField.SetString(vNew.Field(i).String())
			case reflect.Int:
				adrField.SetInt(vNew.Field(i).Int())
			}
		}
	}
}

// clone makes a new Config with our values.
func (c *Config) clone() *Config {
	new := &Config{}

	v := reflect.ValueOf(*c)
	typeOfC := v.Type()
	for i := 0; i < v.NumField(); i++ {
		property := typeOfC.Field(i).Name
		if property == sourcesProperty {
			continue
		}

		adrField := reflect.ValueOf(new).Elem().Field(i)
		switch typeOfC.Field(i).Type.Kind() {
		case reflect.String:
			adrField.SetString(v.Field(i).String())
		case reflect.Int:
			adrField.SetInt(v.Field(i).Int())
		}
	}

	new.sources = make(map[string]string)
	for key, val := range c.sources {
		new.sources[key] = val
	}

	return new
}

// Source returns where the value of a Config field was defined.
func (c Config) Source(field string) string {
	if c.sources == nil {
		return ConfigSourceDefault
	}
	source, set := c.sources[field]
	if !set {
		return ConfigSourceDefault
	}
	return source
}

func (c Config) String() string {
	v := reflect.ValueOf(c)
	typeOfC := v.Type()

	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)
	table.SetHeader([]string{"Config", "Value", "Source"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for i := 0; i < v.NumField(); i++ {
		property := typeOfC.Field(i).Name
		if property == sourcesProperty {
			continue
		}

		table.Append([]string{property, fmt.Sprintf("%v", v.Field(i).Interface()), c.Source(property)})
	}

	table.Render()
	return tableString.String()
}

// TransferArgv returns TransferCommand split in to the binary and any leading
// arguments, eg. "ionice -c3 strato" gives [ionice -c3 strato].
func (c Config) TransferArgv() ([]string, error) {
	argv, err := SplitCommand(c.TransferCommand)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, Error{Op: "TransferArgv", Item: "transfercommand", Err: ErrEmptyCommand}
	}
	return argv, nil
}

// TransferFlagList returns TransferFlags split in to separate arguments.
func (c Config) TransferFlagList() ([]string, error) {
	return SplitCommand(c.TransferFlags)
}

// SheetExtensionList returns SheetExtensions as a slice, each with a leading
// dot.
func (c Config) SheetExtensionList() []string {
	return ExtensionList(c.SheetExtensions)
}

/*
ConfigLoad loads configuration settings from files and environment
variables. Note, this function exits on error, since without config we can't
do anything.

We prefer settings in config file in current dir over config file in home
directory over config file in dir pointed to by ALTO_CONFIG_DIR. All of those
files are called .alto_config.yml.

Settings found in no file can be set with the environment variable
ALTO_<setting name in caps>, eg.
export ALTO_TRANSFERCOMMAND="ionice -c3 strato"
*/
func ConfigLoad(logger log15.Logger) Config {
	pwd, err := os.Getwd()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	config, err := loadConfig(pwd)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	return *config
}

// DefaultConfig returns the config you get with no config files or env vars.
func DefaultConfig() Config {
	config := Config{}
	if err := defaults.Set(&config); err != nil {
		// our default tags are all valid
		panic(err)
	}
	return config
}

// loadConfig does the work of ConfigLoad(), treating pwd as the current
// directory.
func loadConfig(pwd string) (*Config, error) {
	err := os.Setenv("CONFIGOR_ENV_PREFIX", ConfigEnvPrefix)
	if err != nil {
		return nil, err
	}

	// because we want to know the source of every value, we can't take
	// advantage of configor.Load() being able to take all env vars and config
	// files at once. We do it repeatedly and merge results instead
	config := &Config{}
	if err = defaults.Set(config); err != nil {
		return nil, err
	}

	configEnv := &Config{}
	if err = configor.Load(configEnv); err != nil {
		return nil, err
	}
	config.merge(configEnv, ConfigSourceEnvVar)

	if configDir := os.Getenv(ConfigDirEnvVar); configDir != "" {
		if err = configLoadFromFile(config, filepath.Join(TildaToHome(configDir), ConfigBasename)); err != nil {
			return nil, err
		}
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil, Error{Op: "ConfigLoad", Item: "$HOME", Err: ErrNoHome}
	}
	if err = configLoadFromFile(config, filepath.Join(home, ConfigBasename)); err != nil {
		return nil, err
	}

	if err = configLoadFromFile(config, filepath.Join(pwd, ConfigBasename)); err != nil {
		return nil, err
	}

	if config.SheetRowLimit < 1 {
		return nil, Error{Op: "ConfigLoad", Item: "sheetrowlimit", Err: ErrBadRowLimit}
	}

	return config, nil
}

// configLoadFromFile merges in the config in the file at path, if it exists.
func configLoadFromFile(config *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	configFile := config.clone()
	if err := configor.Load(configFile, path); err != nil {
		return err
	}
	config.merge(configFile, path)
	return nil
}
