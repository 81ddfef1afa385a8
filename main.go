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

/*
Package main is a stub for alto's command line interface, with the actual
implementation in the cmd package.

alto (altocumulus) gets WDL workflows ready to run on a remote execution engine
that can't see your local disk. Give it your workflow's inputs JSON and a bucket,
and it uploads every local file and directory the inputs refer to, then gives
you the inputs back with those paths replaced by gs:// or s3:// URLs.

Basics

    alto upload -b gs://my-bucket --bucket-folder run1 -o cloud.json inputs.json

Local paths inside sample sheets amongst the inputs are uploaded and replaced
too. Use --dry-run to see what would be uploaded first, and
`alto conf --default` to see how to configure the transfer tool that does the
uploading.

    alto imports workflow.wdl

lists the documents a workflow imports.

Package Overview

The stage package does the real work: it walks the inputs, scans sample sheets,
recognises sequencer run folders, FASTQ directories and TAR directories,
allocates unique URLs and decides what to upload from where.

The transfer package runs the external blob transfer tool (strato by default)
that actually moves the bytes.

The wdl package finds the imports of WDL documents.

The internal package contains general utility functions, and most notably
config.go holds the code for how the command line interface deals with config
options.
*/
package main

import (
	"github.com/lilab-bcb/altocumulus/cmd"
)

func main() {
	cmd.Execute()
}
