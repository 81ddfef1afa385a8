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
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestImports(t *testing.T) {
	Convey("Given a WDL document with imports", t, func() {
		doc := `version 1.0

import "https://raw.githubusercontent.com/foo.wdl" as utils
import "local.wdl"
  import 'tasks/other.wdl' as other

# import "commented.wdl"
workflow w {
    String s = "import \"not.wdl\""
}
`

		Convey("ParseImports finds them in order", func() {
			uris, err := ParseImports(strings.NewReader(doc))
			So(err, ShouldBeNil)
			So(uris, ShouldResemble, []string{
				"https://raw.githubusercontent.com/foo.wdl",
				"local.wdl",
				"tasks/other.wdl",
			})
		})

		Convey("Imports reads them from a file", func() {
			path := filepath.Join(t.TempDir(), "w.wdl")
			So(os.WriteFile(path, []byte(doc), 0644), ShouldBeNil)

			uris, err := Imports(path)
			So(err, ShouldBeNil)
			So(len(uris), ShouldEqual, 3)
			So(uris[1], ShouldEqual, "local.wdl")
		})
	})

	Convey("Documents without imports have none", t, func() {
		uris, err := ParseImports(strings.NewReader("workflow w {}\n"))
		So(err, ShouldBeNil)
		So(uris, ShouldBeEmpty)
	})

	Convey("Missing documents are an error", t, func() {
		_, err := Imports("/no/such/file.wdl")
		So(err, ShouldNotBeNil)
	})
}
