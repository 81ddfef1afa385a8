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

package cmd

// this is the cobra file that enables subcommands and handles command-line args

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/lilab-bcb/altocumulus/internal"
	"github.com/sb10/l15h"
	"github.com/spf13/cobra"
)

// appLogger is used for logging events in our commands
var appLogger = log15.New()

// these variables are accessible by all subcommands.
var config internal.Config
var verbose bool
var quiet bool

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "alto",
	Short: "alto stages local workflow inputs in cloud storage.",
	Long: `alto (altocumulus) gets workflows ready to run in the cloud.

A WDL workflow's inputs are described by a JSON file of input names to values.
When some of those values are paths on your local disk, a remote execution
engine can't see them. alto uploads them to a Google Cloud Storage or Amazon S3
bucket and gives you back the JSON with every local path replaced by its URL:
$ alto upload -b gs://my-bucket -o inputs.cloud.json inputs.json

Sample sheets (csv, tsv, xlsx or txt files) amongst the inputs are scanned for
local paths too, and sequencer run folders, FASTQ directories and TAR
directories are recognised so that only what is needed gets uploaded.

The uploads themselves are done by an external blob transfer tool, strato by
default; see 'alto conf' for how to change that.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once to
// the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		die(err.Error())
	}
}

func init() {
	// set up logging to stderr
	setupLogging()

	// global flags
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages, including every transfer command line")
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setupLogging()
	config = internal.ConfigLoad(appLogger)
}

// setupLogging sets appLogger's level according to the --verbose and --quiet
// options, and includes caller info.
func setupLogging() {
	appLogger.SetHandler(log15.LvlFilterHandler(logLevel(), l15h.CallerInfoHandler(log15.StderrHandler)))
}

// logLevel returns the log level implied by --verbose and --quiet; --verbose
// wins if both are given.
func logLevel() log15.Lvl {
	switch {
	case verbose:
		return log15.LvlDebug
	case quiet:
		return log15.LvlWarn
	}
	return log15.LvlInfo
}

// info is a convenience to log a message at the Info level.
func info(msg string, a ...interface{}) {
	appLogger.Info(fmt.Sprintf(msg, a...))
}

// warn is a convenience to log a message at the Warn level.
func warn(msg string, a ...interface{}) {
	appLogger.Warn(fmt.Sprintf(msg, a...))
}

// die is a convenience to log a message at the Error level and exit non zero.
func die(msg string, a ...interface{}) {
	appLogger.Error(fmt.Sprintf(msg, a...))
	os.Exit(1)
}
