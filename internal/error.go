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

package internal

// This file contains error handling code.

import "fmt"

// internal has some typical errors
const (
	ErrEmptyCommand = "the transfer command must not be empty"
	ErrNoHome       = "could not find home dir"
	ErrBadRowLimit  = "the sheet row limit must be a positive integer"
	ErrBadCommand   = "could not be split in to arguments"
)

// Error records an error and the operation and config item that caused it.
type Error struct {
	Op   string // name of the method
	Item string // the config item or value being worked on
	Err  string // one of our Err constants
}

func (e Error) Error() string {
	return fmt.Sprintf("internal %s(%s): %s", e.Op, e.Item, e.Err)
}
