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

// this file implements recognition of directory layouts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	runInfoFile      = "RunInfo.xml"
	fastqSuffix      = ".fastq.gz"
	tarSuffix        = ".tar"
	sampleFileSepStr = "_"
)

// DirKind is the layout of a local path, as far as transfers are concerned.
type DirKind int

// DirKind* constants are the layouts Classify() can recognise. Generic covers
// plain files and directories of no special layout.
const (
	Generic DirKind = iota
	Flowcell
	Fastq
	Tar
)

func (k DirKind) String() string {
	switch k {
	case Flowcell:
		return "flowcell"
	case Fastq:
		return "fastq"
	case Tar:
		return "tar"
	}
	return "generic"
}

// Classify works out the DirKind of the given path, trying Flowcell, then
// Fastq, then Tar. The sample is the library or sample name to look for in
// FASTQ directories; if empty, any FASTQ file counts. Files are always
// Generic.
func Classify(path, sample string) (DirKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Generic, err
	}
	if !info.IsDir() {
		return Generic, nil
	}

	if exists(filepath.Join(path, runInfoFile)) {
		return Flowcell, nil
	}

	isFastq, err := IsFastqDir(path, sample)
	if err != nil {
		return Generic, err
	}
	if isFastq {
		return Fastq, nil
	}

	isTar, err := IsTarDir(path)
	if err != nil {
		return Generic, err
	}
	if isTar {
		return Tar, nil
	}

	return Generic, nil
}

// IsFlowcell tells you if the given path is a directory with a RunInfo.xml
// file in it.
func IsFlowcell(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir() && exists(filepath.Join(path, runInfoFile)), nil
}

// IsFastqDir tells you if the given directory holds <sample>_*.fastq.gz files,
// either directly or in a <sample> subdirectory. With an empty sample, any
// *.fastq.gz file directly inside or one level down counts.
func IsFastqDir(path, sample string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, err
	}

	var patterns []string
	if sample == "" {
		patterns = []string{
			filepath.Join(globEscape(path), "*"+fastqSuffix),
			filepath.Join(globEscape(path), "*", "*"+fastqSuffix),
		}
	} else {
		patterns = []string{
			fastqPattern(path, sample),
			fastqPattern(filepath.Join(path, sample), sample),
		}
	}

	return anyMatch(patterns...), nil
}

// IsTarDir tells you if the given directory holds *.tar files directly inside
// it.
func IsTarDir(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, err
	}
	return anyMatch(filepath.Join(globEscape(path), "*"+tarSuffix)), nil
}

// hasSampleTar tells you if the given directory has a <sample> subdirectory
// holding *.tar files.
func hasSampleTar(path, sample string) bool {
	if sample == "" {
		return false
	}
	return anyMatch(filepath.Join(globEscape(path), globEscape(sample), "*"+tarSuffix))
}

// fastqPattern returns the glob for the FASTQ files of a sample in dir.
func fastqPattern(dir, sample string) string {
	return filepath.Join(globEscape(dir), globEscape(sample)+sampleFileSepStr+"*"+fastqSuffix)
}

// anyMatch tells you if any of the given glob patterns match something.
func anyMatch(patterns ...string) bool {
	for _, pattern := range patterns {
		if matches, _ := filepath.Glob(pattern); len(matches) > 0 { //nolint:errcheck
			return true
		}
	}
	return false
}

// globEscape escapes glob meta characters in a path or sample name.
func globEscape(s string) string {
	if !strings.ContainsAny(s, `*?[\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// exists tells you if something is at the given path.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// isDir tells you if the given path is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// checkAccess returns an Error if we don't have the given unix.Access() mode
// bits (unix.R_OK etc.) on path.
func checkAccess(op, path string, mode uint32) error {
	err := unix.Access(path, mode)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return Error{Op: op, Path: path, Err: ErrPermission, cause: err}
}
