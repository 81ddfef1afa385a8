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

package wdl

import (
	"bufio"
	"io"
	"os"
	"regexp"
)

// importRegexp matches `import "uri"` (or single quoted) at the start of a
// line, optionally followed by an `as alias` clause we don't care about.
var importRegexp = regexp.MustCompile(`^\s*import\s+["']([^"']+)["']`)

// Imports returns the URIs imported by the WDL document at path, in the order
// they appear.
func Imports(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseImports(f)
}

// ParseImports is like Imports(), but reads the WDL document from r.
func ParseImports(r io.Reader) ([]string, error) {
	var uris []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if m := importRegexp.FindStringSubmatch(scanner.Text()); m != nil {
			uris = append(uris, m[1])
		}
	}
	return uris, scanner.Err()
}
