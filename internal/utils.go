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

// this file has general utility functions

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

// TildaToHome converts a path beginning with ~/ to the absolute path based in
// the current home directory. If that cannot be determined, path is returned
// unaltered.
func TildaToHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// SplitCommand splits a command line in to arguments the way a shell would,
// honouring quotes.
func SplitCommand(cmdline string) ([]string, error) {
	args, err := shlex.Split(cmdline)
	if err != nil {
		return nil, Error{Op: "SplitCommand", Item: cmdline, Err: ErrBadCommand}
	}
	return args, nil
}

// ExtensionList splits a comma and/or space separated list of file
// extensions, lower casing them and making sure each starts with a dot.
// Duplicates and empty entries are dropped.
func ExtensionList(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	exts := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, ext := range fields {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext == "." || seen[ext] {
			continue
		}
		seen[ext] = true
		exts = append(exts, ext)
	}
	return exts
}
