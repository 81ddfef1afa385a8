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

package stage

// this file implements the staging of a whole manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/hashicorp/go-multierror"
	"github.com/inconshreveable/log15"

	"github.com/lilab-bcb/altocumulus/transfer"
)

// DefaultSheetRowLimit is the number of rows at which a file is considered too
// big to be a sample sheet.
const DefaultSheetRowLimit = 10000

// DefaultSheetExtensions are the (lower case) extensions of files that get
// scanned for local paths.
var DefaultSheetExtensions = []string{".csv", ".tsv", ".xlsx", ".txt"}

// Options configure a staging run.
type Options struct {
	// Backend is transfer.BackendGCP or transfer.BackendAWS.
	Backend string

	// Bucket is the destination bucket name. A scheme prefix like gs:// is
	// allowed and ignored.
	Bucket string

	// BucketFolder, if set, is a path under Bucket to upload to.
	BucketFolder string

	// Output, if set, is where the staged manifest is written as JSON.
	Output string

	// SheetExtensions are the extensions of files to scan for local paths;
	// defaults to DefaultSheetExtensions. Supply an empty non-nil slice to
	// never scan.
	SheetExtensions []string

	// SheetRowLimit defaults to DefaultSheetRowLimit.
	SheetRowLimit int
}

// BucketPath returns the bucket and folder joined, without any scheme and with
// surrounding slashes trimmed.
func (o Options) BucketPath() string {
	bucket := strings.TrimPrefix(strings.TrimPrefix(o.Bucket, "gs://"), "s3://")
	bucket = strings.Trim(bucket, "/")

	if folder := strings.Trim(o.BucketFolder, "/"); folder != "" {
		bucket += "/" + folder
	}
	return bucket
}

// dryRunner is implemented by Transferers that can tell us they're only
// pretending.
type dryRunner interface {
	DryRun() bool
}

// Session holds the state of one staging run: the URLs handed out so far and
// which local path each was assigned to. Nothing is shared between Sessions.
type Session struct {
	alloc      *URLAllocator
	registry   map[string]string
	transferer transfer.Transferer
	sheetExts  map[string]bool
	rowLimit   int
	output     string
	dryRun     bool
	logger     log15.Logger
}

// NewSession creates a Session that will use the given Transferer to upload
// files. A nil logger discards log messages.
func NewSession(opts Options, t transfer.Transferer, logger log15.Logger) (*Session, error) {
	alloc, err := NewURLAllocator(opts.Backend, opts.BucketPath())
	if err != nil {
		return nil, err
	}

	exts := opts.SheetExtensions
	if exts == nil {
		exts = DefaultSheetExtensions
	}
	sheetExts := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		sheetExts[ext] = true
	}

	rowLimit := opts.SheetRowLimit
	if rowLimit <= 0 {
		rowLimit = DefaultSheetRowLimit
	}

	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	var dryRun bool
	if d, ok := t.(dryRunner); ok {
		dryRun = d.DryRun()
	}

	return &Session{
		alloc:      alloc,
		registry:   make(map[string]string),
		transferer: t,
		sheetExts:  sheetExts,
		rowLimit:   rowLimit,
		output:     opts.Output,
		dryRun:     dryRun,
		logger:     logger.New("bucket", opts.BucketPath()),
	}, nil
}

// Stage uploads the local files and directories referred to by inputs (and by
// any sample sheets amongst them) to a bucket, replacing their paths in inputs
// with their URLs. If opts.Output is set, inputs are then written there as
// JSON.
//
// Every call uses a fresh Session, so URLs are only unique within one call.
func Stage(ctx context.Context, inputs *Manifest, opts Options, t transfer.Transferer, logger log15.Logger) error {
	s, err := NewSession(opts, t, logger)
	if err != nil {
		return err
	}
	return s.Stage(ctx, inputs)
}

// Stage is like the package level Stage(), but using this Session's state.
func (s *Session) Stage(ctx context.Context, inputs *Manifest) error {
	for _, key := range inputs.Keys() {
		value, ok := inputs.GetString(key)
		if !ok || value == "" || transfer.IsCloudURL(value) {
			continue
		}
		info, err := os.Stat(value)
		if err != nil {
			continue
		}

		abs, err := filepath.Abs(value)
		if err != nil {
			return err
		}

		if url, seen := s.registry[abs]; seen {
			inputs.SetString(key, url)
			continue
		}

		url := s.assign(abs)
		if err = s.stageInput(ctx, abs, url, info.IsDir()); err != nil {
			return err
		}
		inputs.SetString(key, url)
	}

	if s.output == "" {
		return nil
	}
	return inputs.WriteFile(s.output)
}

// URL returns the URL assigned to a local path (which will be made absolute)
// during this Session.
func (s *Session) URL(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	url, ok := s.registry[abs]
	return url, ok
}

// IsSheet tells you if the given path has one of our sheet extensions.
func (s *Session) IsSheet(path string) bool {
	return s.sheetExts[strings.ToLower(filepath.Ext(path))]
}

// assign allocates a URL for an absolute local path and remembers it.
func (s *Session) assign(abs string) string {
	url := s.alloc.Allocate(abs)
	s.registry[abs] = url
	return url
}

// stageInput uploads one local path from the manifest to url, scanning it first
// if it's a sheet. A rewritten sheet is uploaded in place of the original and
// then deleted, even if the upload fails.
func (s *Session) stageInput(ctx context.Context, abs, url string, dir bool) (err error) {
	if dir {
		sel, errs := s.wholeSelectionFor(abs, true)
		if errs != nil {
			return errs
		}
		return s.transfer(ctx, abs, url, sel)
	}

	source := abs
	if s.IsSheet(abs) {
		out, changed, errs := s.ScanSheet(ctx, abs)
		if errs != nil {
			return errs
		}
		if changed {
			source = out
			defer func() {
				if errr := os.Remove(out); errr != nil {
					err = multierror.Append(err, errr)
				}
			}()
		}
	}

	return s.transfer(ctx, source, url, nil)
}

// wholeSelectionFor classifies a path that wasn't mentioned in a flowcell or
// location column. Flowcells get a Selection of all their lanes; anything
// else, including FASTQ and TAR directories, gets a nil Selection so that it
// is uploaded whole.
func (s *Session) wholeSelectionFor(abs string, dir bool) (*Selection, error) {
	if !dir {
		return nil, nil
	}
	kind, err := Classify(abs, "")
	if err != nil {
		return nil, err
	}
	s.logger.Debug("classified directory", "path", abs, "kind", kind)
	if kind != Flowcell {
		return nil, nil
	}
	return newSelection(Flowcell), nil
}

// transfer logs and carries out the upload of source to dest.
func (s *Session) transfer(ctx context.Context, source, dest string, sel *Selection) error {
	msg := "uploading"
	if s.dryRun {
		msg = "dry run: uploading"
	}
	logCtx := []interface{}{"source", source, "dest", dest}
	if sel != nil {
		logCtx = append(logCtx, "kind", sel.Kind)
	} else if info, err := os.Stat(source); err == nil && !info.IsDir() {
		logCtx = append(logCtx, "size", bytefmt.ByteSize(uint64(info.Size())))
	}
	s.logger.Info(msg, logCtx...)

	return TransferSelection(ctx, s.transferer, source, dest, sel)
}
