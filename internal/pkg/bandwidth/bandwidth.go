//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

package bandwidth

import (
	"fmt"
)

// FileData is the read bandwidth of one file pass.
type FileData struct {
	// Amount of data read per rank, in bytes
	ReadBytes map[int]int64

	// Read bandwidth per rank, in B/s
	ReadRankBW map[int]float64

	ScaledReadRankBW map[int]float64

	ScaledReadRankBWUnit string
}

type FilesData struct {
	FileData map[int]*FileData
}

// GetFromFileTimes calculates the per-rank read bandwidth of a single file
// pass. The input is the per-rank duration of the pass and the number of
// bytes every rank read.
func GetFromFileTimes(ranks int, readBytes int64, execTimes map[int]float64) (*FileData, error) {
	d := new(FileData)
	d.ReadBytes = make(map[int]int64)
	d.ReadRankBW = make(map[int]float64)
	d.ScaledReadRankBW = make(map[int]float64)

	for rank := 0; rank < ranks; rank++ {
		t, ok := execTimes[rank]
		if !ok {
			return nil, fmt.Errorf("no duration for rank %d", rank)
		}
		if t <= 0 {
			return nil, fmt.Errorf("invalid duration %f for rank %d", t, rank)
		}
		d.ReadBytes[rank] = readBytes
		d.ReadRankBW[rank] = float64(readBytes) / t
	}

	// Pick one readable unit for all ranks of the pass.
	max := 0.0
	for _, bw := range d.ReadRankBW {
		if bw > max {
			max = bw
		}
	}
	unit, div := scaleUnit(max)
	d.ScaledReadRankBWUnit = unit
	for rank, bw := range d.ReadRankBW {
		d.ScaledReadRankBW[rank] = bw / div
	}
	return d, nil
}

// GetFromRunTimes calculates the read bandwidth for every file of a run.
// The outer key of execTimes is the file index, the inner key the rank.
func GetFromRunTimes(numFiles int, ranks int, readBytes int64, execTimes map[int]map[int]float64) (*FilesData, error) {
	var err error
	d := new(FilesData)
	d.FileData = make(map[int]*FileData)
	for file := 0; file < numFiles; file++ {
		d.FileData[file], err = GetFromFileTimes(ranks, readBytes, execTimes[file])
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

func scaleUnit(bw float64) (string, float64) {
	switch {
	case bw >= 1e9:
		return "GB/s", 1e9
	case bw >= 1e6:
		return "MB/s", 1e6
	case bw >= 1e3:
		return "KB/s", 1e3
	}
	return "B/s", 1
}

func GetOutputFilename(nprocX int, nprocY int) string {
	return fmt.Sprintf("bandwidth-perfile-%dx%d.md", nprocX, nprocY)
}
