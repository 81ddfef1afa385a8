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

// this file implements the per-directory lane and sample accumulators built
// while scanning a sheet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const allLanes = "*"

// LaneSet accumulates the lanes of a flowcell that should be uploaded.
type LaneSet struct {
	all   bool
	lanes map[int]bool
}

// NewLaneSet returns an empty LaneSet, which means all lanes.
func NewLaneSet() *LaneSet {
	return &LaneSet{lanes: make(map[int]bool)}
}

// Update adds lanes from a sheet's lane cell: "*" for all lanes (which also
// forgets any explicit lanes already added), a single lane number like "3", or
// an inclusive range like "3-5". Once all lanes have been requested, later
// explicit lanes are ignored.
func (l *LaneSet) Update(lane string) error {
	lane = strings.TrimSpace(lane)
	if lane == allLanes {
		l.all = true
		l.lanes = make(map[int]bool)
		return nil
	}

	fields := strings.Split(lane, "-")
	if len(fields) > 2 {
		return Error{Op: "LaneSet.Update", Path: lane, Err: ErrBadLane}
	}

	from, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Error{Op: "LaneSet.Update", Path: lane, Err: ErrBadLane, cause: err}
	}
	to := from
	if len(fields) == 2 {
		to, err = strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return Error{Op: "LaneSet.Update", Path: lane, Err: ErrBadLane, cause: err}
		}
	}
	if from < 1 || to < from {
		return Error{Op: "LaneSet.Update", Path: lane, Err: ErrBadLane}
	}

	if l.all {
		return nil
	}
	for i := from; i <= to; i++ {
		l.lanes[i] = true
	}
	return nil
}

// All tells you if every lane should be uploaded, which is the case if "*" was
// seen or no lanes were added at all.
func (l *LaneSet) All() bool {
	return l.all || len(l.lanes) == 0
}

// Numbers returns the explicit lane numbers in ascending order, or nil if All().
func (l *LaneSet) Numbers() []int {
	if l.All() {
		return nil
	}
	nums := make([]int, 0, len(l.lanes))
	for n := range l.lanes {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Lanes returns the lane directory names (L001, L002 etc.) in ascending order,
// or nil if All().
func (l *LaneSet) Lanes() []string {
	nums := l.Numbers()
	if nums == nil {
		return nil
	}
	names := make([]string, len(nums))
	for i, n := range nums {
		names[i] = laneName(n)
	}
	return names
}

// laneName formats a lane number the way flowcell directories name them.
func laneName(n int) string {
	return fmt.Sprintf("L%03d", n)
}

// SampleSet accumulates the samples of a FASTQ or TAR directory that should be
// uploaded.
type SampleSet struct {
	order []string
	files map[string][]string
}

// NewSampleSet returns an empty SampleSet.
func NewSampleSet() *SampleSet {
	return &SampleSet{files: make(map[string][]string)}
}

// Add adds a sample. Optionally supply the exact local files of that sample
// that should be uploaded, instead of searching for them by name. It is an
// error to add the same sample twice.
func (s *SampleSet) Add(sample string, files ...string) error {
	if _, dup := s.files[sample]; dup {
		return Error{Op: "SampleSet.Add", Path: sample, Err: ErrDuplicateSample}
	}
	s.order = append(s.order, sample)
	s.files[sample] = files
	return nil
}

// Samples returns the added samples in the order they were added.
func (s *SampleSet) Samples() []string {
	return s.order
}

// Files returns the files given for the sample in Add(), if any.
func (s *SampleSet) Files(sample string) []string {
	return s.files[sample]
}

// Selection is what a sheet says should be uploaded from one local directory.
// Lanes is set for Flowcell directories, Samples for Fastq and Tar
// directories.
type Selection struct {
	Kind    DirKind
	Lanes   *LaneSet
	Samples *SampleSet
}

// newSelection returns an empty Selection for the given kind.
func newSelection(kind DirKind) *Selection {
	sel := &Selection{Kind: kind}
	switch kind {
	case Flowcell:
		sel.Lanes = NewLaneSet()
	case Fastq, Tar:
		sel.Samples = NewSampleSet()
	}
	return sel
}
