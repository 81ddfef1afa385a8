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

// This file contains error handling code.

import (
	"errors"
	"fmt"
)

// stage has some typical errors
const (
	ErrBadBackend      = "backend must be one of gcp or aws"
	ErrBadManifest     = "manifest must be a JSON object"
	ErrPermission      = "permission denied"
	ErrRTAIncomplete   = "RTAComplete.txt not found; has sequencing completed?"
	ErrNoRunParameters = "neither runParameters.xml nor RunParameters.xml found"
	ErrNoBaseCalls     = "Data/Intensities/BaseCalls could not be read"
	ErrNoFastq         = "no FASTQ files found for sample"
	ErrNoTar           = "no TAR file found for sample"
	ErrMultipleTar     = "more than one TAR file found for sample"
	ErrDuplicateSample = "sample listed more than once for the same directory"
	ErrEmptySample     = "library or sample missing for a FASTQ or TAR directory"
	ErrNoSampleColumn  = "sheet has a flowcell or location column but no library or sample column"
	ErrBadLane         = "lane must be *, an integer or an inclusive range like 3-5"
)

// Error records an error and the operation and path that caused it.
type Error struct {
	Op    string // name of the method
	Path  string // the local path (or sample/lane) being worked on
	Err   string // one of our Err constants
	cause error
}

func (e Error) Error() string {
	msg := fmt.Sprintf("stage %s(%s): %s", e.Op, e.Path, e.Err)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error, if any, so that errors.Is() works with
// fs.ErrNotExist and the like.
func (e Error) Unwrap() error {
	return e.cause
}

// IsNotFound tells you if the given error is a stage Error about a required
// file being missing.
func IsNotFound(err error) bool {
	return hasErr(err, ErrRTAIncomplete, ErrNoRunParameters, ErrNoBaseCalls, ErrNoFastq, ErrNoTar)
}

// IsAmbiguous tells you if the given error is a stage Error about something
// being found more than once.
func IsAmbiguous(err error) bool {
	return hasErr(err, ErrMultipleTar, ErrDuplicateSample)
}

// IsPermission tells you if the given error is a stage Error about access
// permissions.
func IsPermission(err error) bool {
	return hasErr(err, ErrPermission)
}

func hasErr(err error, errs ...string) bool {
	var serr Error
	if !errors.As(err, &serr) {
		return false
	}
	for _, e := range errs {
		if serr.Err == e {
			return true
		}
	}
	return false
}
