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

package transfer

// This file contains error handling code.

import (
	"fmt"
)

// transfer has some typical errors
const (
	ErrBadBackend = "backend must be one of gcp or aws"
	ErrNoCommand  = "no transfer command configured"
	ErrFailed     = "transfer command failed"
)

// Error records an error and the operation and command line that caused it.
type Error struct {
	Op     string // name of the method
	Cmd    string // the command line, if one was run
	Err    string // one of our Err constants
	Stderr string // last line the command wrote to STDERR, if any
	cause  error
}

func (e Error) Error() string {
	msg := fmt.Sprintf("transfer %s(%s): %s", e.Op, e.Cmd, e.Err)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	if e.Stderr != "" {
		msg += " [" + e.Stderr + "]"
	}
	return msg
}

// Unwrap returns the underlying error, such as an *exec.ExitError.
func (e Error) Unwrap() error {
	return e.cause
}
