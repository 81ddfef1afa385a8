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

// this file implements the transfer strategies for each DirKind

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lilab-bcb/altocumulus/transfer"
)

const (
	rtaCompleteFile      = "RTAComplete.txt"
	runParametersFile    = "runParameters.xml"
	runParametersFileAlt = "RunParameters.xml"
	intensitiesDir       = "Data/Intensities"
	baseCallsDir         = intensitiesDir + "/BaseCalls"
	locsFile             = intensitiesDir + "/s.locs"
	lanePrefix           = "L0"
)

// TransferGeneric syncs source to dest if it is a directory, otherwise copies
// it.
func TransferGeneric(ctx context.Context, t transfer.Transferer, source, dest string) error {
	if isDir(source) {
		return t.Sync(ctx, source, dest)
	}
	return t.Copy(ctx, []string{source}, dest)
}

// TransferFlowcell uploads the run metadata and the given lanes of the
// flowcell directory source to dest. A nil or All() lanes uploads every
// L0* lane found under Data/Intensities/BaseCalls.
//
// RunInfo.xml is copied before RTAComplete.txt is checked for, so an error
// about incomplete sequencing can leave RunInfo.xml uploaded.
func TransferFlowcell(ctx context.Context, t transfer.Transferer, source, dest string, lanes *LaneSet) error {
	if err := copyOne(ctx, t, source, dest, runInfoFile); err != nil {
		return err
	}

	if !exists(filepath.Join(source, rtaCompleteFile)) {
		return Error{Op: "TransferFlowcell", Path: source, Err: ErrRTAIncomplete}
	}
	if err := copyOne(ctx, t, source, dest, rtaCompleteFile); err != nil {
		return err
	}

	switch {
	case exists(filepath.Join(source, runParametersFile)):
		if err := copyOne(ctx, t, source, dest, runParametersFile); err != nil {
			return err
		}
	case exists(filepath.Join(source, runParametersFileAlt)):
		if err := copyOne(ctx, t, source, dest, runParametersFileAlt); err != nil {
			return err
		}
	default:
		return Error{Op: "TransferFlowcell", Path: source, Err: ErrNoRunParameters}
	}

	var laneNames []string
	if lanes != nil {
		laneNames = lanes.Lanes()
	}
	if laneNames == nil {
		var err error
		laneNames, err = flowcellLanes(source)
		if err != nil {
			return err
		}
	}

	for _, lane := range laneNames {
		rel := baseCallsDir + "/" + lane
		if err := t.Sync(ctx, localPath(source, rel), urlJoin(dest, rel)); err != nil {
			return err
		}
	}

	if exists(localPath(source, locsFile)) {
		return copyOne(ctx, t, source, dest, locsFile)
	}

	for _, lane := range laneNames {
		rel := intensitiesDir + "/" + lane
		if err := t.Sync(ctx, localPath(source, rel), urlJoin(dest, rel)); err != nil {
			return err
		}
	}
	return nil
}

// flowcellLanes returns the names of the lane directories of a flowcell, in
// sorted order.
func flowcellLanes(source string) ([]string, error) {
	dir := localPath(source, baseCallsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Error{Op: "TransferFlowcell", Path: dir, Err: ErrNoBaseCalls, cause: err}
	}

	var lanes []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), lanePrefix) {
			lanes = append(lanes, entry.Name())
		}
	}
	sort.Strings(lanes)
	return lanes, nil
}

// TransferFastq uploads the FASTQ files of the given samples from the directory
// source in to the directory dest. For each sample, the explicit files it was
// added with are copied, or else the <sample>_*.fastq.gz files directly in
// source, or else the whole <sample> subdirectory is synced. With nil
// samples, source is synced wholesale.
func TransferFastq(ctx context.Context, t transfer.Transferer, source, dest string, samples *SampleSet) error {
	if samples == nil {
		return t.Sync(ctx, source, dest)
	}

	for _, sample := range samples.Samples() {
		if files := samples.Files(sample); len(files) > 0 {
			if err := t.Copy(ctx, files, dirURL(dest)); err != nil {
				return err
			}
			continue
		}

		matches, _ := filepath.Glob(fastqPattern(source, sample)) //nolint:errcheck
		if len(matches) > 0 {
			if err := t.Copy(ctx, matches, dirURL(dest)); err != nil {
				return err
			}
			continue
		}

		subdir := filepath.Join(source, sample)
		if anyMatch(fastqPattern(subdir, sample)) {
			if err := t.Sync(ctx, subdir, urlJoin(dest, sample)); err != nil {
				return err
			}
			continue
		}

		return Error{Op: "TransferFastq", Path: sample, Err: ErrNoFastq}
	}
	return nil
}

// TransferTar uploads the TAR file of each of the given samples from the
// directory source in to the directory dest. A sample's TAR file is either
// <sample>.tar directly in source, or the only *.tar in a <sample>
// subdirectory; finding none or more than one is an error. With nil
// samples, every *.tar directly in source is copied.
func TransferTar(ctx context.Context, t transfer.Transferer, source, dest string, samples *SampleSet) error {
	dir := globEscape(source)

	if samples == nil {
		matches, _ := filepath.Glob(filepath.Join(dir, "*"+tarSuffix)) //nolint:errcheck
		if len(matches) == 0 {
			return Error{Op: "TransferTar", Path: source, Err: ErrNoTar}
		}
		return t.Copy(ctx, matches, dirURL(dest))
	}

	for _, sample := range samples.Samples() {
		if files := samples.Files(sample); len(files) > 0 {
			if err := t.Copy(ctx, files, dirURL(dest)); err != nil {
				return err
			}
			continue
		}

		escaped := globEscape(sample)
		direct, _ := filepath.Glob(filepath.Join(dir, escaped+tarSuffix))
		nested, _ := filepath.Glob(filepath.Join(dir, escaped, "*"+tarSuffix))
		matches := append(direct, nested...)

		switch len(matches) {
		case 0:
			return Error{Op: "TransferTar", Path: sample, Err: ErrNoTar}
		case 1:
			if err := t.Copy(ctx, matches, dirURL(dest)); err != nil {
				return err
			}
		default:
			return Error{Op: "TransferTar", Path: sample, Err: ErrMultipleTar}
		}
	}
	return nil
}

// TransferSelection dispatches to the transfer strategy for sel's kind. A nil
// sel transfers generically.
func TransferSelection(ctx context.Context, t transfer.Transferer, source, dest string, sel *Selection) error {
	if sel == nil {
		return TransferGeneric(ctx, t, source, dest)
	}

	switch sel.Kind {
	case Flowcell:
		return TransferFlowcell(ctx, t, source, dest, sel.Lanes)
	case Fastq:
		return TransferFastq(ctx, t, source, dest, sel.Samples)
	case Tar:
		return TransferTar(ctx, t, source, dest, sel.Samples)
	}
	return TransferGeneric(ctx, t, source, dest)
}

// copyOne copies the file at the relative path rel under source to the same
// relative location under dest.
func copyOne(ctx context.Context, t transfer.Transferer, source, dest, rel string) error {
	return t.Copy(ctx, []string{localPath(source, rel)}, urlJoin(dest, rel))
}

// localPath joins a slash-separated relative path on to a local directory.
func localPath(dir, rel string) string {
	return filepath.Join(dir, filepath.FromSlash(rel))
}

// urlJoin joins a relative path on to a URL without disturbing its scheme.
func urlJoin(url, rel string) string {
	return strings.TrimRight(url, "/") + "/" + strings.TrimLeft(rel, "/")
}

// dirURL returns the URL with a trailing slash, so that transfer tools treat
// it as a directory.
func dirURL(url string) string {
	return strings.TrimRight(url, "/") + "/"
}
