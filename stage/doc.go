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
Package stage uploads the local inputs of a WDL workflow to cloud object
storage and rewrites the inputs so they refer to the uploaded copies.

The entry point is Stage(), which walks a Manifest (the JSON object of workflow
input names to values) in order. Every string value that is an existing local
path is given a unique destination URL by a URLAllocator, transferred, and
replaced in the Manifest by that URL. The same local path referenced twice is
only transferred once.

Files with a sheet extension (.csv, .tsv, .xlsx and .txt by default) are first
scanned for cells that are themselves local paths. Those are staged too, and
the sheet is rewritten to a temporary file with the paths replaced before it is
uploaded in place of the original.

Sheets with a "flowcell" or "location" column, plus a "library" or "sample"
column, can refer to directories of known layout:

    Flowcell  an Illumina run folder, with RunInfo.xml at its root; only the
              lanes listed in the sheet's "lane" column are uploaded
    Fastq     a directory of <sample>_*.fastq.gz files, or <sample>/
              subdirectories of them; only the listed samples are uploaded
    Tar       a directory of <sample>.tar files

Everything else is copied (files) or synced (directories) as-is.

    import (
        "github.com/lilab-bcb/altocumulus/stage"
        "github.com/lilab-bcb/altocumulus/transfer"
    )

    inputs, err := stage.ReadManifest("inputs.json")
    tool, err := transfer.New(transfer.Config{Backend: transfer.BackendGCP, DryRun: true}, logger)
    err = stage.Stage(ctx, inputs, stage.Options{
        Backend:      transfer.BackendGCP,
        Bucket:       "my-bucket",
        BucketFolder: "run1",
        Output:       "inputs.staged.json",
    }, tool, logger)

Staging is not atomic: on error, whatever was already uploaded stays uploaded.
*/
package stage
