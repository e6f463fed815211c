//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

// Package timings collects the per-file durations of all workers on the
// coordinator and turns them into the raw report and a markdown summary.
// The raw report format is stable: the offline analysis commands parse it
// back, so every line a worker run prints is a line this package can read.
package timings

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gvallee/go_notation/pkg/notation"

	"github.com/slcs-jsc/netcdf-bench/internal/pkg/group"
)

const (
	haloMarker  = "Halo size: "
	gridMarker  = "Process grid: "
	modeMarker  = "Use independent access: "
	filesMarker = "Number of files: "
	sizeMarker  = "filesize="
	rankMarker  = "rank="
)

// gatherTagBase keeps timing messages apart from any other traffic on the
// same group.
const gatherTagBase = 2000

// Gather collects every worker's per-file durations on root. All workers
// must call it; only root gets the full table back (one row per rank, in
// rank order), everyone else gets nil.
func Gather(peers group.Group, local []float64, root int) [][]float64 {
	rank := peers.Rank()
	size := peers.Size()
	if rank != root {
		peers.SendFloat64s(local, root, gatherTagBase+rank)
		return nil
	}
	all := make([][]float64, size)
	for r := 0; r < size; r++ {
		if r == root {
			own := make([]float64, len(local))
			copy(own, local)
			all[r] = own
			continue
		}
		all[r] = peers.RecvFloat64s(r, gatherTagBase+r)
	}
	return all
}

// WriteReport emits the raw timing report: the file size in MB followed by
// one line per rank with all its per-file durations.
func WriteReport(w io.Writer, fileMB float64, all [][]float64) error {
	if _, err := fmt.Fprintf(w, "filesize=%f MB\n", fileMB); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	for rank, times := range all {
		strs := make([]string, len(times))
		for i, d := range times {
			strs[i] = fmt.Sprintf("%.6f", d)
		}
		if _, err := fmt.Fprintf(w, "rank=%d ; times=%s\n", rank, strings.Join(strs, ",")); err != nil {
			return fmt.Errorf("unable to write report: %w", err)
		}
	}
	return nil
}

// RunMeta describes the configuration of one run for the markdown summary.
type RunMeta struct {
	NprocX int
	NprocY int
	Halo   int
	Mode   string
	Files  []string
	FileMB float64
}

// Save writes a markdown summary of the run into dir and returns the path
// of the file it created.
func Save(dir string, meta RunMeta, all [][]float64) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("timings_%dx%d_halo%d.md", meta.NprocX, meta.NprocY, meta.Halo))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("unable to create %s: %w", path, err)
	}
	defer f.Close()

	ranks := make([]int, len(all))
	for r := range all {
		ranks[r] = r
	}

	fmt.Fprintf(f, "# Read timings\n\n")
	fmt.Fprintf(f, "Date: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(f, "* Process grid: %dx%d\n", meta.NprocX, meta.NprocY)
	fmt.Fprintf(f, "* Halo size: %d\n", meta.Halo)
	fmt.Fprintf(f, "* Access mode: %s\n", meta.Mode)
	fmt.Fprintf(f, "* File size: %f MB\n", meta.FileMB)
	fmt.Fprintf(f, "* Files: %d\n", len(meta.Files))
	fmt.Fprintf(f, "* Ranks: %s\n\n", notation.CompressIntArray(ranks))

	fmt.Fprintf(f, "## Per-file durations (seconds)\n\n")
	fmt.Fprintf(f, "```\n")
	if err := WriteReport(f, meta.FileMB, all); err != nil {
		return "", err
	}
	fmt.Fprintf(f, "```\n\n")

	fmt.Fprintf(f, "## Slowest worker per file\n\n")
	for i, d := range MaxPerFile(all) {
		fmt.Fprintf(f, "* file %d (%s): %.6f s\n", i, filepath.Base(meta.Files[i]), d)
	}

	return path, nil
}

// MaxPerFile returns, for each file, the duration of the slowest worker.
// The group barrier at the end of every file makes this the wall time the
// whole group spent on it.
func MaxPerFile(all [][]float64) []float64 {
	if len(all) == 0 {
		return nil
	}
	max := make([]float64, len(all[0]))
	for _, times := range all {
		for i, d := range times {
			if i < len(max) && d > max[i] {
				max[i] = d
			}
		}
	}
	return max
}

// RunData is the content of one run's log as the analysis commands see it.
type RunData struct {
	Halo        int
	NprocX      int
	NprocY      int
	Independent bool
	NumFiles    int
	FileMB      float64
	Times       map[int][]float64
}

// Ranks returns the ranks present in the log, sorted.
func (d *RunData) Ranks() []int {
	ranks := make([]int, 0, len(d.Times))
	for r := range d.Times {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	return ranks
}

// ParseLog reads a benchmark log or raw report back. Lines that carry no
// marker are skipped, so the full stdout of a run parses just as well as a
// bare report.
func ParseLog(r io.Reader) (*RunData, error) {
	data := &RunData{Times: make(map[int][]float64)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, haloMarker):
			n, err := strconv.Atoi(strings.TrimPrefix(line, haloMarker))
			if err != nil {
				return nil, fmt.Errorf("invalid halo line %q: %w", line, err)
			}
			data.Halo = n
		case strings.HasPrefix(line, gridMarker):
			if _, err := fmt.Sscanf(strings.TrimPrefix(line, gridMarker), "%dx%d", &data.NprocX, &data.NprocY); err != nil {
				return nil, fmt.Errorf("invalid process grid line %q: %w", line, err)
			}
		case strings.HasPrefix(line, modeMarker):
			data.Independent = strings.TrimPrefix(line, modeMarker) == "yes"
		case strings.HasPrefix(line, filesMarker):
			n, err := strconv.Atoi(strings.TrimPrefix(line, filesMarker))
			if err != nil {
				return nil, fmt.Errorf("invalid file count line %q: %w", line, err)
			}
			data.NumFiles = n
		case strings.HasPrefix(line, sizeMarker):
			str := strings.TrimSuffix(strings.TrimPrefix(line, sizeMarker), " MB")
			mb, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid file size line %q: %w", line, err)
			}
			data.FileMB = mb
		case strings.HasPrefix(line, rankMarker):
			rank, times, err := parseRankLine(line)
			if err != nil {
				return nil, err
			}
			data.Times[rank] = times
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read log: %w", err)
	}
	return data, nil
}

func parseRankLine(line string) (int, []float64, error) {
	parts := strings.SplitN(line, ";", 2)
	if len(parts) != 2 {
		return 0, nil, fmt.Errorf("invalid rank line %q", line)
	}
	rank, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[0]), rankMarker)))
	if err != nil {
		return 0, nil, fmt.Errorf("invalid rank in %q: %w", line, err)
	}
	list := strings.TrimPrefix(strings.TrimSpace(parts[1]), "times=")
	var times []float64
	for _, tok := range strings.Split(list, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		d, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid duration %q in %q: %w", tok, line, err)
		}
		times = append(times, d)
	}
	return rank, times, nil
}
