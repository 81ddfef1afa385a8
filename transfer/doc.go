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
Package transfer runs the external blob transfer tool (strato by default) that
moves bytes between the local filesystem and cloud object storage.

A Tool turns Copy and Sync requests into command lines of the form:

    strato cp --backend gcp --ionice --quiet local/file gs://bucket/file
    strato sync --backend aws --ionice -m --quiet local/dir s3://bucket/dir --profile p

A non-zero exit is returned as an Error. In dry run mode the command lines are
logged but nothing is executed.

    import "github.com/lilab-bcb/altocumulus/transfer"

    tool, err := transfer.New(transfer.Config{Backend: transfer.BackendGCP}, logger)
    err = tool.Copy(ctx, []string{"/data/sheet.csv"}, "gs://bucket/sheet.csv")
    err = tool.Sync(ctx, "/data/fastqs", "gs://bucket/fastqs")

Anything that implements the Transferer interface can be used in place of a
Tool, which is how the stage package is tested.
*/
package transfer
