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

	"github.com/lilab-bcb/altocumulus/wdl"
	"github.com/spf13/cobra"
)

// importsCmd represents the imports command
var importsCmd = &cobra.Command{
	Use:   "imports workflow.wdl",
	Short: "List the imports of a WDL workflow",
	Long: `List the URIs imported by a WDL workflow.

Each import statement's URI is printed on its own line, in the order they
appear in the file. Relative URIs are relative to the workflow file, and would
need uploading alongside it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		uris, err := wdl.Imports(args[0])
		if err != nil {
			die("could not read imports of %s: %s", args[0], err)
		}
		for _, uri := range uris {
			fmt.Println(uri)
		}
	},
}

func init() {
	RootCmd.AddCommand(importsCmd)
}
