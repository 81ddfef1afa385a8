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
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTransferFlowcell(t *testing.T) {
	ctx := context.Background()
	dest := "gs://b/run"

	Convey("A flowcell without RTAComplete.txt is not uploaded", t, func() {
		dir := filepath.Join(t.TempDir(), "run")
		makeFlowcell(dir, false, "runParameters.xml", false, "L001")

		rec := newRecorder()
		err := TransferFlowcell(ctx, rec, dir, dest, nil)
		So(err, ShouldNotBeNil)
		So(IsNotFound(err), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, ErrRTAIncomplete)

		So(rec.strings(), ShouldResemble, []string{
			"cp " + dir + "/RunInfo.xml " + dest + "/RunInfo.xml",
		})
	})

	Convey("A directory with only RunInfo.xml is a flowcell that can't be uploaded until complete", t, func() {
		dir := filepath.Join(t.TempDir(), "run")
		touch(filepath.Join(dir, "RunInfo.xml"))

		kind, err := Classify(dir, "")
		So(err, ShouldBeNil)
		So(kind, ShouldEqual, Flowcell)

		err = TransferFlowcell(ctx, newRecorder(), dir, dest, nil)
		So(IsNotFound(err), ShouldBeTrue)

		touch(filepath.Join(dir, "RTAComplete.txt"))
		touch(filepath.Join(dir, "RunParameters.xml"))
		So(os.MkdirAll(filepath.Join(dir, "Data", "Intensities", "BaseCalls", "L001"), 0755), ShouldBeNil)

		rec := newRecorder()
		So(TransferFlowcell(ctx, rec, dir, dest, nil), ShouldBeNil)
		So(len(rec.calls), ShouldEqual, 5)
	})

	Convey("A flowcell without run parameters is not uploaded", t, func() {
		dir := filepath.Join(t.TempDir(), "run")
		makeFlowcell(dir, true, "", false, "L001")

		err := TransferFlowcell(ctx, newRecorder(), dir, dest, nil)
		So(err, ShouldNotBeNil)
		So(IsNotFound(err), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, ErrNoRunParameters)
	})

	Convey("A complete flowcell with per-lane locs", t, func() {
		dir := filepath.Join(t.TempDir(), "run")
		makeFlowcell(dir, true, "RunParameters.xml", false, "L001", "L002", "L003")
		So(os.MkdirAll(filepath.Join(dir, "Data", "Intensities", "BaseCalls", "Matrix"), 0755), ShouldBeNil)

		Convey("can have all its lanes uploaded", func() {
			rec := newRecorder()
			So(TransferFlowcell(ctx, rec, dir, dest, nil), ShouldBeNil)
			So(rec.strings(), ShouldResemble, []string{
				"cp " + dir + "/RunInfo.xml " + dest + "/RunInfo.xml",
				"cp " + dir + "/RTAComplete.txt " + dest + "/RTAComplete.txt",
				"cp " + dir + "/RunParameters.xml " + dest + "/RunParameters.xml",
				"sync " + dir + "/Data/Intensities/BaseCalls/L001 " + dest + "/Data/Intensities/BaseCalls/L001",
				"sync " + dir + "/Data/Intensities/BaseCalls/L002 " + dest + "/Data/Intensities/BaseCalls/L002",
				"sync " + dir + "/Data/Intensities/BaseCalls/L003 " + dest + "/Data/Intensities/BaseCalls/L003",
				"sync " + dir + "/Data/Intensities/L001 " + dest + "/Data/Intensities/L001",
				"sync " + dir + "/Data/Intensities/L002 " + dest + "/Data/Intensities/L002",
				"sync " + dir + "/Data/Intensities/L003 " + dest + "/Data/Intensities/L003",
			})
		})

		Convey("can have selected lanes uploaded", func() {
			lanes := NewLaneSet()
			So(lanes.Update("3"), ShouldBeNil)
			So(lanes.Update("1"), ShouldBeNil)

			rec := newRecorder()
			So(TransferFlowcell(ctx, rec, dir, dest, lanes), ShouldBeNil)
			So(rec.strings()[3:], ShouldResemble, []string{
				"sync " + dir + "/Data/Intensities/BaseCalls/L001 " + dest + "/Data/Intensities/BaseCalls/L001",
				"sync " + dir + "/Data/Intensities/BaseCalls/L003 " + dest + "/Data/Intensities/BaseCalls/L003",
				"sync " + dir + "/Data/Intensities/L001 " + dest + "/Data/Intensities/L001",
				"sync " + dir + "/Data/Intensities/L003 " + dest + "/Data/Intensities/L003",
			})
		})

		Convey("transfer failures stop the upload", func() {
			rec := newRecorder()
			rec.failOn = "BaseCalls/L002"
			So(TransferFlowcell(ctx, rec, dir, dest, nil), ShouldNotBeNil)
			So(len(rec.calls), ShouldEqual, 5)
		})
	})

	Convey("A flowcell with s.locs gets that instead of per-lane locs", t, func() {
		dir := filepath.Join(t.TempDir(), "run")
		makeFlowcell(dir, true, "runParameters.xml", true, "L001")

		rec := newRecorder()
		So(TransferFlowcell(ctx, rec, dir, dest, nil), ShouldBeNil)
		So(rec.strings()[2:], ShouldResemble, []string{
			"cp " + dir + "/runParameters.xml " + dest + "/runParameters.xml",
			"sync " + dir + "/Data/Intensities/BaseCalls/L001 " + dest + "/Data/Intensities/BaseCalls/L001",
			"cp " + dir + "/Data/Intensities/s.locs " + dest + "/Data/Intensities/s.locs",
		})
	})

	Convey("A flowcell without BaseCalls can't have all lanes uploaded", t, func() {
		dir := filepath.Join(t.TempDir(), "run")
		makeFlowcell(dir, true, "runParameters.xml", false)

		err := TransferFlowcell(ctx, newRecorder(), dir, dest, NewLaneSet())
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, ErrNoBaseCalls)
	})
}

func TestTransferFastq(t *testing.T) {
	ctx := context.Background()
	dest := "gs://b/fastqs"

	Convey("Given a directory of FASTQ files", t, func() {
		dir := filepath.Join(t.TempDir(), "fastqs")
		touch(filepath.Join(dir, "s1_S1_R1_001.fastq.gz"))
		touch(filepath.Join(dir, "s1_S1_R2_001.fastq.gz"))
		touch(filepath.Join(dir, "s10_S2_R1_001.fastq.gz"))
		touch(filepath.Join(dir, "s2", "s2_S3_R1_001.fastq.gz"))
		touch(filepath.Join(dir, "extra", "e_R1.fastq.gz"))

		Convey("samples directly inside are copied", func() {
			samples := NewSampleSet()
			So(samples.Add("s1"), ShouldBeNil)

			rec := newRecorder()
			So(TransferFastq(ctx, rec, dir, dest, samples), ShouldBeNil)
			So(rec.strings(), ShouldResemble, []string{
				"cp " + dir + "/s1_S1_R1_001.fastq.gz " + dir + "/s1_S1_R2_001.fastq.gz " + dest + "/",
			})
		})

		Convey("samples in subdirectories are synced", func() {
			samples := NewSampleSet()
			So(samples.Add("s2"), ShouldBeNil)

			rec := newRecorder()
			So(TransferFastq(ctx, rec, dir, dest, samples), ShouldBeNil)
			So(rec.strings(), ShouldResemble, []string{
				"sync " + dir + "/s2 " + dest + "/s2",
			})
		})

		Convey("explicit files are copied as given", func() {
			samples := NewSampleSet()
			So(samples.Add("x", "/elsewhere/x_R1.fastq.gz"), ShouldBeNil)

			rec := newRecorder()
			So(TransferFastq(ctx, rec, dir, dest, samples), ShouldBeNil)
			So(rec.strings(), ShouldResemble, []string{"cp /elsewhere/x_R1.fastq.gz " + dest + "/"})
		})

		Convey("no samples syncs the whole directory", func() {
			rec := newRecorder()
			So(TransferFastq(ctx, rec, dir, dest, nil), ShouldBeNil)
			So(rec.strings(), ShouldResemble, []string{"sync " + dir + " " + dest})
		})

		Convey("unknown samples are an error", func() {
			samples := NewSampleSet()
			So(samples.Add("s1"), ShouldBeNil)
			So(samples.Add("s3"), ShouldBeNil)

			rec := newRecorder()
			err := TransferFastq(ctx, rec, dir, dest, samples)
			So(err, ShouldNotBeNil)
			So(IsNotFound(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, ErrNoFastq)
			So(len(rec.calls), ShouldEqual, 1)
		})
	})
}

func TestTransferTar(t *testing.T) {
	ctx := context.Background()
	dest := "s3://b/tars"

	Convey("Given a directory of TAR files", t, func() {
		dir := filepath.Join(t.TempDir(), "tars")
		touch(filepath.Join(dir, "a.tar"))
		touch(filepath.Join(dir, "b.tar"))
		touch(filepath.Join(dir, "c", "c_bundle.tar"))
		touch(filepath.Join(dir, "d.tar"))
		touch(filepath.Join(dir, "d", "d_other.tar"))
		touch(filepath.Join(dir, "e", "e1.tar"))
		touch(filepath.Join(dir, "e", "e2.tar"))

		Convey("a sample's own TAR is copied, whether direct or nested", func() {
			samples := NewSampleSet()
			So(samples.Add("a"), ShouldBeNil)
			So(samples.Add("c"), ShouldBeNil)

			rec := newRecorder()
			So(TransferTar(ctx, rec, dir, dest, samples), ShouldBeNil)
			So(rec.strings(), ShouldResemble, []string{
				"cp " + dir + "/a.tar " + dest + "/",
				"cp " + dir + "/c/c_bundle.tar " + dest + "/",
			})
		})

		Convey("more than one candidate TAR is an error", func() {
			for _, sample := range []string{"d", "e"} {
				samples := NewSampleSet()
				So(samples.Add(sample), ShouldBeNil)

				rec := newRecorder()
				err := TransferTar(ctx, rec, dir, dest, samples)
				So(err, ShouldNotBeNil)
				So(IsAmbiguous(err), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, ErrMultipleTar)
				So(rec.calls, ShouldBeEmpty)
			}
		})

		Convey("no TAR is an error", func() {
			samples := NewSampleSet()
			So(samples.Add("z"), ShouldBeNil)

			err := TransferTar(ctx, newRecorder(), dir, dest, samples)
			So(err, ShouldNotBeNil)
			So(IsNotFound(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, ErrNoTar)
		})

		Convey("no samples copies every TAR directly inside", func() {
			rec := newRecorder()
			So(TransferTar(ctx, rec, dir, dest, nil), ShouldBeNil)
			So(rec.strings(), ShouldResemble, []string{
				"cp " + dir + "/a.tar " + dir + "/b.tar " + dir + "/d.tar " + dest + "/",
			})
		})
	})

	Convey("Every TAR of a directory without TAR files is an error", t, func() {
		dir := t.TempDir()
		err := TransferTar(ctx, newRecorder(), dir, dest, nil)
		So(err, ShouldNotBeNil)
		So(IsNotFound(err), ShouldBeTrue)
	})
}

func TestTransferSelection(t *testing.T) {
	ctx := context.Background()

	Convey("Generic selections sync directories and copy files", t, func() {
		dir := t.TempDir()
		file := filepath.Join(dir, "f.txt")
		touch(file)

		rec := newRecorder()
		So(TransferSelection(ctx, rec, dir, "gs://b/d", nil), ShouldBeNil)
		So(TransferSelection(ctx, rec, file, "gs://b/f.txt", &Selection{Kind: Generic}), ShouldBeNil)
		So(rec.strings(), ShouldResemble, []string{
			"sync " + dir + " gs://b/d",
			"cp " + file + " gs://b/f.txt",
		})
	})
}
