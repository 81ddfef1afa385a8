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

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/sys/unix"
)

func TestClassify(t *testing.T) {
	Convey("Given a variety of local paths", t, func() {
		dir := t.TempDir()

		flowcell := filepath.Join(dir, "run")
		makeFlowcell(flowcell, true, "runParameters.xml", false, "L001")

		fastqDirect := filepath.Join(dir, "fq1")
		touch(filepath.Join(fastqDirect, "s1_S1_L001_R1_001.fastq.gz"))

		fastqNested := filepath.Join(dir, "fq2")
		touch(filepath.Join(fastqNested, "s2", "s2_S1_L001_R1_001.fastq.gz"))

		tars := filepath.Join(dir, "tars")
		touch(filepath.Join(tars, "s3.tar"))

		nestedTars := filepath.Join(dir, "nested")
		touch(filepath.Join(nestedTars, "genome.fa"))
		touch(filepath.Join(nestedTars, "idx", "bwa.tar"))

		both := filepath.Join(dir, "both")
		touch(filepath.Join(both, "RunInfo.xml"))
		touch(filepath.Join(both, "x_R1.fastq.gz"))

		plain := filepath.Join(dir, "plain")
		touch(filepath.Join(plain, "readme.txt"))

		file := filepath.Join(dir, "file.tar")
		touch(file)

		Convey("Flowcells are recognised by their RunInfo.xml", func() {
			kind, err := Classify(flowcell, "")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Flowcell)

			is, err := IsFlowcell(flowcell)
			So(err, ShouldBeNil)
			So(is, ShouldBeTrue)
			is, err = IsFlowcell(plain)
			So(err, ShouldBeNil)
			So(is, ShouldBeFalse)
		})

		Convey("Flowcell takes priority over other layouts", func() {
			kind, err := Classify(both, "x")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Flowcell)
		})

		Convey("FASTQ directories are recognised by sample", func() {
			kind, err := Classify(fastqDirect, "s1")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Fastq)

			kind, err = Classify(fastqNested, "s2")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Fastq)

			kind, err = Classify(fastqDirect, "other")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Generic)
		})

		Convey("Without a sample, any FASTQ file counts", func() {
			kind, err := Classify(fastqDirect, "")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Fastq)

			kind, err = Classify(fastqNested, "")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Fastq)
		})

		Convey("TAR directories are recognised by TAR files directly inside", func() {
			kind, err := Classify(tars, "s3")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Tar)
			So(kind.String(), ShouldEqual, "tar")

			kind, err = Classify(nestedTars, "")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Generic)

			So(hasSampleTar(nestedTars, "idx"), ShouldBeTrue)
			So(hasSampleTar(nestedTars, "other"), ShouldBeFalse)
			So(hasSampleTar(nestedTars, ""), ShouldBeFalse)
		})

		Convey("Anything else is generic", func() {
			kind, err := Classify(plain, "")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Generic)

			kind, err = Classify(file, "")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, Generic)
			So(kind.String(), ShouldEqual, "generic")
		})

		Convey("Missing paths are an error", func() {
			_, err := Classify(filepath.Join(dir, "nope"), "")
			So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)

			_, err = IsTarDir(filepath.Join(dir, "nope"))
			So(err, ShouldNotBeNil)
		})

		Convey("Glob meta characters in names are matched literally", func() {
			odd := filepath.Join(dir, "odd[1]")
			touch(filepath.Join(odd, "a*b_R1.fastq.gz"))

			is, err := IsFastqDir(odd, "a*b")
			So(err, ShouldBeNil)
			So(is, ShouldBeTrue)

			is, err = IsFastqDir(odd, "aXb")
			So(err, ShouldBeNil)
			So(is, ShouldBeFalse)
		})

		Convey("Unreadable directories give a permission error", func() {
			if os.Geteuid() == 0 {
				SkipSo("root can read anything", ShouldBeNil)
				return
			}
			locked := filepath.Join(dir, "locked")
			So(os.Mkdir(locked, 0000), ShouldBeNil)
			defer os.Chmod(locked, 0755) // #nosec

			err := checkAccess("test", locked, unix.R_OK|unix.X_OK)
			So(err, ShouldNotBeNil)
			So(IsPermission(err), ShouldBeTrue)
		})
	})
}

func TestSelection(t *testing.T) {
	Convey("LaneSets accumulate lanes", t, func() {
		l := NewLaneSet()
		So(l.All(), ShouldBeTrue)
		So(l.Lanes(), ShouldBeNil)

		So(l.Update("3-5"), ShouldBeNil)
		So(l.Update("1"), ShouldBeNil)
		So(l.Update(" 4 "), ShouldBeNil)
		So(l.All(), ShouldBeFalse)
		So(l.Numbers(), ShouldResemble, []int{1, 3, 4, 5})
		So(l.Lanes(), ShouldResemble, []string{"L001", "L003", "L004", "L005"})

		Convey("* selects all lanes and forgets explicit ones", func() {
			So(l.Update("*"), ShouldBeNil)
			So(l.All(), ShouldBeTrue)
			So(l.Lanes(), ShouldBeNil)

			So(l.Update("2"), ShouldBeNil)
			So(l.All(), ShouldBeTrue)
		})

		Convey("Bad lanes are rejected", func() {
			for _, bad := range []string{"", "x", "0", "5-3", "1-2-3", "2-y"} {
				err := l.Update(bad)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, ErrBadLane)
			}
			So(l.Numbers(), ShouldResemble, []int{1, 3, 4, 5})
		})
	})

	Convey("SampleSets reject duplicates and keep order", t, func() {
		s := NewSampleSet()
		So(s.Add("b"), ShouldBeNil)
		So(s.Add("a", "/x/a_R1.fastq.gz", "/x/a_R2.fastq.gz"), ShouldBeNil)

		err := s.Add("b")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, ErrDuplicateSample)

		So(s.Samples(), ShouldResemble, []string{"b", "a"})
		So(s.Files("b"), ShouldBeEmpty)
		So(s.Files("a"), ShouldResemble, []string{"/x/a_R1.fastq.gz", "/x/a_R2.fastq.gz"})
	})
}
