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

// this file implements the allocation of unique destination URLs

import (
	"path"
	"strconv"
	"strings"

	"github.com/lilab-bcb/altocumulus/transfer"
)

// URLAllocator hands out destination URLs in a bucket, never the same one
// twice.
type URLAllocator struct {
	prefix string
	issued map[string]bool
}

// NewURLAllocator returns a URLAllocator for the given backend (gcp or aws)
// and bucket. bucket is the bucket name, optionally followed by
// /sub/folders, without a scheme.
func NewURLAllocator(backend, bucket string) (*URLAllocator, error) {
	scheme, err := transfer.Scheme(backend)
	if err != nil {
		return nil, Error{Op: "NewURLAllocator", Path: backend, Err: ErrBadBackend}
	}

	return &URLAllocator{
		prefix: scheme + "://" + strings.TrimRight(bucket, "/") + "/",
		issued: make(map[string]bool),
	}, nil
}

// Allocate returns a URL in our bucket named after the basename of the given
// local path. If that URL was already handed out, _2, _3 etc. is inserted
// before the extension until the URL is unique.
func (a *URLAllocator) Allocate(source string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimRight(source, "/"), "\\", "/"))
	url := a.prefix + base

	if a.issued[url] {
		root, ext := splitExt(base)
		for n := 2; a.issued[url]; n++ {
			url = a.prefix + root + "_" + strconv.Itoa(n) + ext
		}
	}

	a.issued[url] = true
	return url
}

// splitExt splits a basename in to its root and final extension. Leading dots
// do not start an extension, so ".bashrc" has none.
func splitExt(base string) (string, string) {
	dots := len(base) - len(strings.TrimLeft(base, "."))
	ext := path.Ext(base[dots:])
	return base[:len(base)-len(ext)], ext
}
