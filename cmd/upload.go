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
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/lilab-bcb/altocumulus/internal"
	"github.com/lilab-bcb/altocumulus/stage"
	"github.com/lilab-bcb/altocumulus/transfer"
	"github.com/spf13/cobra"
)

// options for this cmd
var uploadBucket string
var uploadBackend string
var uploadFolder string
var uploadOutput string
var uploadProfile string
var uploadSheetExt string
var uploadDryRun bool

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload [flags] input...",
	Short: "Upload local workflow inputs to a bucket",
	Long: `Upload the local files and directories of workflow inputs to a bucket,
and get back the inputs with their paths replaced by URLs.

Each input is either a JSON object of workflow input names to values (given as
the path to a .json file, or as literal JSON), or the path to a local file or
directory, which is added under a newly generated UUID key. All inputs are
merged, in the order given, in to one JSON object.

Every string value in that object that is the path to something on your local
disk is uploaded to --bucket (under --bucket-folder, if given), keeping its
basename unless another upload already took that name, in which case _2, _3 etc.
is inserted before the extension. The same path is only ever uploaded once.
Anything else, including values that are already gs:// or s3:// URLs, is left
alone.

Files with a sample sheet extension (see 'alto conf' for sheetextensions) are
scanned for cells that are local paths; those are uploaded too and a copy of the
sheet with URLs in place of the paths is uploaded instead of the original. If a
sheet has a "Flowcell" or "Location" column, the directories named there are
examined:
 - sequencer run folders (containing RunInfo.xml) only have the lanes given in
   the sheet's "Lane" column uploaded ("*" or no Lane column means all lanes;
   ranges like 3-5 are allowed);
 - FASTQ directories only have the FASTQ files of the samples named in the
   sheet's "Library" (or "Sample") column uploaded;
 - TAR directories only have the TAR file of each named sample uploaded.
Such directories given directly as inputs have everything relevant uploaded.

The resulting JSON is written to --output, or printed to STDOUT.

With --dry-run, nothing is uploaded, but you'll see what would have been, and
get the JSON you would have got.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if uploadBucket == "" {
			die("--bucket is required")
		}

		backend, err := resolveBackend(uploadBucket, uploadBackend, config.Backend)
		if err != nil {
			die("%s", err)
		}

		inputs, err := loadInputs(args)
		if err != nil {
			die("bad inputs: %s", err)
		}

		tool, err := transferTool(backend)
		if err != nil {
			die("%s", err)
		}

		exts := config.SheetExtensionList()
		if cmd.Flags().Changed("sheet-ext") {
			exts = internal.ExtensionList(uploadSheetExt)
		}

		opts := stage.Options{
			Backend:         backend,
			Bucket:          uploadBucket,
			BucketFolder:    uploadFolder,
			Output:          uploadOutput,
			SheetExtensions: exts,
			SheetRowLimit:   config.SheetRowLimit,
		}

		if uploadDryRun {
			color.New(color.FgYellow, color.Bold).Fprintln(os.Stderr, "Dry run: nothing will actually be uploaded")
		}

		before := stringValues(inputs)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session, err := stage.NewSession(opts, tool, appLogger)
		if err != nil {
			die("%s", err)
		}
		if err = session.Stage(ctx, inputs); err != nil {
			die("upload failed: %s", err)
		}

		staged := countStaged(session, before)
		if uploadOutput == "" {
			out, erri := inputs.Indent()
			if erri != nil {
				die("could not encode the staged inputs: %s", erri)
			}
			fmt.Print(string(out))
		} else {
			info("wrote staged inputs to %s", uploadOutput)
		}

		scheme, _ := transfer.Scheme(backend) //nolint:errcheck
		summary := fmt.Sprintf("%d of %d inputs were replaced with %s:// URLs", staged, inputs.Len(), scheme)
		if !quiet {
			color.New(color.FgGreen).Fprintln(os.Stderr, summary)
		}
	},
}

func init() {
	RootCmd.AddCommand(uploadCmd)

	// flags specific to this sub-command
	uploadCmd.Flags().StringVarP(&uploadBucket, "bucket", "b", "", "bucket to upload to, optionally with a gs:// or s3:// prefix")
	uploadCmd.Flags().StringVar(&uploadBackend, "backend", "", "gcp or aws [default from bucket prefix or config]")
	uploadCmd.Flags().StringVar(&uploadFolder, "bucket-folder", "", "folder within the bucket to upload to")
	uploadCmd.Flags().StringVarP(&uploadOutput, "output", "o", "", "file to write the staged JSON to [default STDOUT]")
	uploadCmd.Flags().StringVar(&uploadProfile, "profile", "", "AWS profile to upload with [default from config]")
	uploadCmd.Flags().StringVar(&uploadSheetExt, "sheet-ext", "", "comma separated extensions of sample sheets to scan [default from config]")
	uploadCmd.Flags().BoolVar(&uploadDryRun, "dry-run", false, "show what would be uploaded without uploading anything")
}

// resolveBackend works out the backend to use from, in order of preference,
// the --backend option, the bucket's scheme and the configured default. It is
// an error for --backend to contradict the bucket's scheme.
func resolveBackend(bucket, flag, configured string) (string, error) {
	fromURL := transfer.BackendForURL(bucket)

	backend := configured
	switch {
	case flag != "":
		if fromURL != "" && fromURL != flag {
			return "", fmt.Errorf("--backend %s does not match bucket %s", flag, bucket)
		}
		backend = flag
	case fromURL != "":
		backend = fromURL
	}

	if _, err := transfer.Scheme(backend); err != nil {
		return "", err
	}
	return backend, nil
}

// loadInputs merges the inputs given on the command line in to one Manifest.
// Errors for every bad input are returned together.
func loadInputs(args []string) (*stage.Manifest, error) {
	inputs := stage.NewManifest()
	var merr *multierror.Error

	for _, arg := range args {
		if isJSONInput(arg) {
			m, err := stage.ReadManifest(arg)
			if err != nil {
				merr = multierror.Append(merr, err)
				continue
			}
			inputs.Merge(m)
			continue
		}

		key, err := uuid.NewV4()
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		inputs.SetString(key.String(), arg)
	}

	return inputs, merr.ErrorOrNil()
}

// isJSONInput tells you if a command line input should be read as JSON: it
// ends in .json or isn't anything on disk.
func isJSONInput(arg string) bool {
	if strings.HasSuffix(strings.ToLower(arg), ".json") {
		return true
	}
	_, err := os.Stat(arg)
	return err != nil
}

// transferTool makes a transfer.Tool from our config and options.
func transferTool(backend string) (*transfer.Tool, error) {
	argv, err := config.TransferArgv()
	if err != nil {
		return nil, err
	}
	flags, err := config.TransferFlagList()
	if err != nil {
		return nil, err
	}

	profile := config.Profile
	if uploadProfile != "" {
		profile = uploadProfile
	}
	if profile != "" && backend != transfer.BackendAWS {
		warn("ignoring profile %s, which only applies to the aws backend", profile)
		profile = ""
	}

	return transfer.New(transfer.Config{
		Command: argv,
		Flags:   flags,
		Backend: backend,
		Profile: profile,
		DryRun:  uploadDryRun,
		Verbose: verbose,
	}, appLogger)
}

// stringValues returns the string values of a Manifest.
func stringValues(m *stage.Manifest) map[string]string {
	values := make(map[string]string, m.Len())
	for _, key := range m.Keys() {
		if s, ok := m.GetString(key); ok {
			values[key] = s
		}
	}
	return values
}

// urlFinder is satisfied by *stage.Session.
type urlFinder interface {
	URL(path string) (string, bool)
}

// countStaged counts the original string values that were local paths given a
// URL.
func countStaged(urls urlFinder, before map[string]string) int {
	n := 0
	for _, value := range before {
		if _, ok := urls.URL(value); ok {
			n++
		}
	}
	return n
}
