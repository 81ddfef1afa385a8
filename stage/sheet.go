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

// this file implements the scanning of sample sheets for local paths

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sys/unix"

	"github.com/lilab-bcb/altocumulus/transfer"
)

const (
	extCSV  = ".csv"
	extTSV  = ".tsv"
	extXLSX = ".xlsx"

	colFlowcell = "flowcell"
	colLocation = "location"
	colLibrary  = "library"
	colSample   = "sample"
	colLane     = "lane"

	tempSheetPattern = "alto_sheet_*"
)

// errNotASheet is returned by readSheet for files that can't be treated as a
// sheet; they are uploaded as-is.
var errNotASheet = errors.New("not a sheet")

// ScanSheet looks for cells in the sheet at path that are existing local
// paths. Each of those is staged (reusing the URL of a path staged earlier in
// this Session), and the cell replaced with its URL.
//
// If the sheet has a flowcell or location column, the directories it names are
// classified, and the lane or library/sample columns of their rows decide what
// is uploaded from them.
//
// If any cell changed, the sheet is written (without any extra header) to a new
// temporary file, and its path is returned along with true; you must delete
// it when you're done with it. Otherwise path itself is returned with false,
// as it is for files that can't be parsed or that have at least
// Options.SheetRowLimit rows.
func (s *Session) ScanSheet(ctx context.Context, path string) (string, bool, error) {
	if err := checkAccess("ScanSheet", path, unix.R_OK); err != nil {
		return path, false, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	rows, err := readSheet(path, ext, s.rowLimit)
	if err != nil {
		s.logger.Debug("not scanning file as a sheet", "path", path, "reason", err)
		return path, false, nil
	}

	for _, row := range rows {
		for c := range row {
			row[c] = strings.TrimSpace(row[c])
		}
	}

	selections, err := s.sheetSelections(rows)
	if err != nil {
		return path, false, err
	}

	changed := false
	for _, row := range rows[1:] {
		for c, value := range row {
			url, found, err := s.stageCell(ctx, value, selections)
			if err != nil {
				return path, false, err
			}
			if found {
				row[c] = url
				changed = true
			}
		}
	}

	if !changed {
		return path, false, nil
	}

	out, err := writeSheet(rows, ext)
	if err != nil {
		return path, false, err
	}
	s.logger.Info("rewrote sheet", "path", path, "rewritten", out)
	return out, true, nil
}

// sheetSelections works out what to upload from the directories named in the
// flowcell or location column of a sheet, keyed on their absolute paths.
func (s *Session) sheetSelections(rows [][]string) (map[string]*Selection, error) {
	selections := make(map[string]*Selection)

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.ToLower(name)
	}

	dirCol := columnIndex(header, colFlowcell, colLocation)
	if dirCol < 0 {
		return selections, nil
	}
	sampleCol := columnIndex(header, colLibrary, colSample)
	if sampleCol < 0 {
		return nil, Error{Op: "ScanSheet", Path: strings.Join(rows[0], ","), Err: ErrNoSampleColumn}
	}
	laneCol := columnIndex(header, colLane)

	var dirs []string
	dirRows := make(map[string][][]string)
	for _, row := range rows[1:] {
		dir := row[dirCol]
		if dir == "" || transfer.IsCloudURL(dir) || !isDir(dir) {
			continue
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		if err = checkAccess("ScanSheet", abs, unix.R_OK|unix.X_OK); err != nil {
			return nil, err
		}

		if _, seen := dirRows[abs]; !seen {
			dirs = append(dirs, abs)
		}
		dirRows[abs] = append(dirRows[abs], row)
	}

	for _, abs := range dirs {
		kind, err := sheetDirKind(abs, dirRows[abs], sampleCol)
		if err != nil {
			return nil, err
		}
		if kind == Generic {
			continue
		}
		s.logger.Debug("classified sheet directory", "path", abs, "kind", kind)

		sel := newSelection(kind)
		for _, row := range dirRows[abs] {
			switch kind {
			case Flowcell:
				lane := allLanes
				if laneCol >= 0 && row[laneCol] != "" {
					lane = row[laneCol]
				}
				err = sel.Lanes.Update(lane)
			case Fastq, Tar:
				sample := row[sampleCol]
				if sample == "" {
					return nil, Error{Op: "ScanSheet", Path: abs, Err: ErrEmptySample}
				}
				err = sel.Samples.Add(sample)
			}
			if err != nil {
				return nil, err
			}
		}
		selections[abs] = sel
	}

	return selections, nil
}

// sheetDirKind classifies a directory named in a sheet by its contents as a
// whole, so that every sample the rows ask for is then looked for. A directory
// with no TAR files of its own is still a TAR directory if one of the rows'
// samples has a subdirectory of them.
func sheetDirKind(abs string, rows [][]string, sampleCol int) (DirKind, error) {
	kind, err := Classify(abs, "")
	if err != nil || kind != Generic {
		return kind, err
	}
	for _, row := range rows {
		if hasSampleTar(abs, row[sampleCol]) {
			return Tar, nil
		}
	}
	return Generic, nil
}

// stageCell stages the local path in a sheet cell, if it is one, returning its
// URL and true.
func (s *Session) stageCell(ctx context.Context, value string, selections map[string]*Selection) (string, bool, error) {
	if value == "" || transfer.IsCloudURL(value) {
		return "", false, nil
	}
	info, err := os.Stat(value)
	if err != nil {
		return "", false, nil
	}

	abs, err := filepath.Abs(value)
	if err != nil {
		return "", false, err
	}
	if url, seen := s.registry[abs]; seen {
		return url, true, nil
	}

	mode := uint32(unix.R_OK)
	if info.IsDir() {
		mode |= unix.X_OK
	}
	if err = checkAccess("ScanSheet", abs, mode); err != nil {
		return "", false, err
	}

	url := s.assign(abs)
	sel, selected := selections[abs]
	if !selected {
		sel, err = s.wholeSelectionFor(abs, info.IsDir())
		if err != nil {
			return "", false, err
		}
	}

	if err = s.transfer(ctx, abs, url, sel); err != nil {
		return "", false, err
	}
	return url, true, nil
}

// columnIndex returns the index of the first of the given names found in
// header, preferring earlier names, or -1.
func columnIndex(header []string, names ...string) int {
	for _, name := range names {
		for i, col := range header {
			if col == name {
				return i
			}
		}
	}
	return -1
}

// readSheet parses a delimited text or xlsx file in to rows of cells. It
// returns errNotASheet (or a parse error) if the file is empty, malformed or
// has rowLimit or more rows.
func readSheet(path, ext string, rowLimit int) ([][]string, error) {
	var rows [][]string
	var err error
	if ext == extXLSX {
		rows, err = readXLSX(path, rowLimit)
	} else {
		rows, err = readDelimited(path, ext, rowLimit)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errNotASheet
	}
	return rows, nil
}

// readDelimited reads a comma or tab delimited file. .csv is comma delimited
// and .tsv tab delimited; for anything else the delimiter is sniffed from the
// first line. Short rows are padded with empty cells.
func readDelimited(path, ext string, rowLimit int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	comma := ','
	switch ext {
	case extCSV:
		// always comma delimited
	case extTSV:
		comma = '\t'
	default:
		comma, err = sniffDelimiter(br)
		if err != nil {
			return nil, err
		}
	}

	r := csv.NewReader(br)
	r.Comma = comma
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
		if rowLimit > 0 && len(rows) >= rowLimit {
			return nil, errNotASheet
		}
	}
	return padRows(rows), nil
}

// sniffDelimiter peeks at the first line: tabs mean tab delimited, otherwise
// comma delimited.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	line, err := br.Peek(br.Size())
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, err
	}
	if i := strings.IndexByte(string(line), '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.ContainsRune(string(line), '\t') {
		return '\t', nil
	}
	return ',', nil
}

// readXLSX reads the first worksheet of an xlsx workbook, padding rows to the
// same width.
func readXLSX(path string, rowLimit int) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNotASheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if rowLimit > 0 && len(rows) >= rowLimit {
		return nil, errNotASheet
	}

	return padRows(rows), nil
}

// padRows pads short rows with empty cells to the width of the widest row.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows
}

// writeSheet writes rows to a new temporary file, comma delimited if ext is
// .csv, otherwise tab delimited.
func writeSheet(rows [][]string, ext string) (path string, err error) {
	f, err := os.CreateTemp("", tempSheetPattern)
	if err != nil {
		return "", err
	}
	path = f.Name()
	defer func() {
		if errc := f.Close(); errc != nil && err == nil {
			err = errc
		}
		if err != nil {
			os.Remove(path)
			path = ""
		}
	}()

	w := csv.NewWriter(f)
	if ext != extCSV {
		w.Comma = '\t'
	}
	if err = w.WriteAll(rows); err != nil {
		return path, err
	}
	return path, nil
}
