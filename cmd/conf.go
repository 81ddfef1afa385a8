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

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultYML = `# The format of this file is YAML

# backend: Which cloud are you uploading to?
# This is either "gcp" (Google Cloud Storage, gs:// URLs) or "aws" (Amazon S3,
# s3:// URLs), and defaults to "gcp".
#
# It is only used when 'alto upload' isn't given --backend and its --bucket
# doesn't start with gs:// or s3://.
backend: "gcp"

# profile: Which AWS profile should uploads use?
# This defaults to none, meaning the transfer tool's own default.
#
# It is passed on to the transfer tool as --profile, and only makes sense for
# the aws backend. 'alto upload --profile' overrides it.
#profile: "default"

# transfercommand: How should the blob transfer tool be run?
# This defaults to "strato".
#
# The value is split in to arguments the way a shell would, so you can prefix
# the tool with something like ionice, or give the full path to the tool:
# transfercommand: "nice -n 19 /opt/strato/bin/strato"
# The tool must understand strato's cp and sync subcommands and their
# --backend, -m, --quiet and --profile options.
transfercommand: "strato"

# transferflags: What extra options should every transfer be given?
# This defaults to "--ionice".
#
# They are placed straight after the cp or sync subcommand. Set this to "" if
# your transfer tool doesn't understand --ionice.
transferflags: "--ionice"

# sheetextensions: Which input files might be sample sheets?
# This defaults to ".csv,.tsv,.xlsx,.txt".
#
# Input files with these extensions are scanned for local paths, which are
# uploaded and replaced with their URLs in a temporary copy of the sheet, which
# is what gets uploaded in place of the original. 'alto upload --sheet-ext'
# overrides it.
sheetextensions: ".csv,.tsv,.xlsx,.txt"

# sheetrowlimit: How many rows make a file too big to be a sample sheet?
# This defaults to 10000.
#
# Files with at least this many rows are uploaded as-is without being scanned.
sheetrowlimit: 10000
`

// options for this cmd
var confDefault bool

// confCmd represents the conf command
var confCmd = &cobra.Command{
	Use:   "conf",
	Short: "See alto's configuration",
	Long: `See the configuration values alto will use.

This command also shows where a particular value was defined.

For a list of all possible configuration settings, their descriptions and
default values in the yml format suitable for using as one of your config files,
use the --default option.

alto will load its configuration settings from files named .alto_config.yml
found in these directories, in order of precedence:
1) The current directory
2) Your home directory
3) The directory pointed to by the environment variable $ALTO_CONFIG_DIR

Settings can also be defined in environment variables named
ALTO_<setting name in caps>. Eg. to define the transfercommand option you might
do:
export ALTO_TRANSFERCOMMAND="ionice -c3 strato"`,
	Run: func(cmd *cobra.Command, args []string) {
		if confDefault {
			fmt.Print(defaultYML)
			os.Exit(0)
		}

		fmt.Printf("%s", config)
	},
}

func init() {
	RootCmd.AddCommand(confCmd)

	// flags specific to this sub-command
	confCmd.Flags().BoolVarP(&confDefault, "default", "d", false, "print default config yml file to STDOUT")
}
