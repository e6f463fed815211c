//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

// Package driver runs the benchmark loop: it walks the shared file list in
// order and, for every file, reads each data variable's subdomain window
// into one reusable buffer, timing the pass. The duration of a file covers
// the reads, the close and the end-of-pass barrier, so it reflects the
// throughput of the whole group rather than the fastest worker.
package driver

import (
	"fmt"
	"time"

	"github.com/slcs-jsc/netcdf-bench/internal/pkg/decomp"
	berr "github.com/slcs-jsc/netcdf-bench/internal/pkg/errors"
	"github.com/slcs-jsc/netcdf-bench/internal/pkg/grid"
	"github.com/slcs-jsc/netcdf-bench/internal/pkg/group"
)

// File is what the driver needs from an open file.
type File interface {
	ReadWindow(name string, start, count []int, dst []float64) (int, error)
	Close()
}

// Opener opens one file of the list. The production opener wraps ncio.Open
// and therefore blocks until every worker reaches it.
type Opener func(path string) (File, error)

// Config describes one benchmark run.
type Config struct {
	Files []string
	Open  Opener
	Peers group.Group
	Grid  *grid.Grid
	Sub   decomp.Subdomain

	// Collective mirrors the access mode the files are opened with. The
	// driver needs it to keep the barrier counts of workers with and
	// without a wrap window matched: a collective read synchronizes the
	// whole group, so workers that skip the wrap read must still join
	// that synchronization.
	Collective bool
}

// BufferSize returns the element count of a buffer large enough for the
// widest possible window of any variable: full halo on both edges of both
// spatial axes, times the product of all non-spatial axis lengths.
func BufferSize(g *grid.Grid, sub decomp.Subdomain) int {
	lat := sub.Primary.LatCount() + 2*sub.Halo
	lon := sub.Primary.LonCount() + 2*sub.Halo
	return lat * lon * g.ExtraSize()
}

// Run processes every file of the list in order and returns one duration
// per file. Any failure aborts the run: partial timings are worthless for
// comparison.
func Run(cfg *Config) ([]float64, error) {
	rank := cfg.Peers.Rank()
	lonName := cfg.Grid.Axes[cfg.Grid.LonIdx].Name
	latName := cfg.Grid.Axes[cfg.Grid.LatIdx].Name
	dataVars := cfg.Grid.DataVars()

	buf := make([]float64, BufferSize(cfg.Grid, cfg.Sub))
	durations := make([]float64, len(cfg.Files))

	for i, path := range cfg.Files {
		f, err := cfg.Open(path)
		if err != nil {
			return nil, berr.NewFile(berr.ErrIO, rank, path, err)
		}

		start := time.Now()
		for _, v := range dataVars {
			if err := readVar(f, v, cfg, lonName, latName, buf); err != nil {
				f.Close()
				return nil, berr.NewFile(berr.ErrIO, rank, path, err)
			}
		}
		f.Close()
		cfg.Peers.Barrier()
		durations[i] = time.Since(start).Seconds()
	}

	return durations, nil
}

func readVar(f File, v grid.VarInfo, cfg *Config, lonName, latName string, buf []float64) error {
	sub := cfg.Sub
	start, count, hasLon, err := window(v, cfg.Grid, sub.Primary, lonName, latName)
	if err != nil {
		return err
	}
	if _, err := f.ReadWindow(v.Name, start, count, buf); err != nil {
		return fmt.Errorf("unable to read subdomain of %s: %w", v.Name, err)
	}
	// Touch one element so the read cannot be elided.
	buf[0] *= 3.4

	if hasLon && sub.Halo > 0 {
		if sub.HasWrap {
			start, count, _, err = window(v, cfg.Grid, sub.Wrap, lonName, latName)
			if err != nil {
				return err
			}
			if _, err := f.ReadWindow(v.Name, start, count, buf); err != nil {
				return fmt.Errorf("unable to read periodic halo of %s: %w", v.Name, err)
			}
			buf[0] *= 3.4
		} else if cfg.Collective {
			// Only edge workers read a wrap window, but in collective
			// mode that read synchronizes the whole group. Interior
			// workers contribute no read and join the synchronization
			// directly, keeping every worker's barrier count identical.
			cfg.Peers.Barrier()
		}
	}
	return nil
}

// window maps a spatial window onto a variable's dimension list. Non
// spatial dimensions take their full range; variables without the
// longitude axis never get a wrap read.
func window(v grid.VarInfo, g *grid.Grid, w decomp.Window, lonName, latName string) (start, count []int, hasLon bool, err error) {
	start = make([]int, len(v.Dims))
	count = make([]int, len(v.Dims))
	for d, name := range v.Dims {
		switch name {
		case lonName:
			start[d] = w.Lon0
			count[d] = w.LonCount()
			hasLon = true
		case latName:
			start[d] = w.Lat0
			count[d] = w.LatCount()
		default:
			n, ok := g.AxisLen(name)
			if !ok {
				return nil, nil, false, fmt.Errorf("variable %s uses unknown dimension %s", v.Name, name)
			}
			start[d] = 0
			count[d] = n
		}
	}
	return start, count, hasLon, nil
}
