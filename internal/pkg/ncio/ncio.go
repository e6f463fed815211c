//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

// Package ncio is the benchmark's boundary to the NetCDF library. A file
// is opened as a typed handle that fixes the access-synchronization mode
// up front, so no read can happen before the mode is set. Collective mode
// brackets every windowed read with a group barrier, which makes all
// workers issue matching reads in lockstep; independent mode lets each
// worker proceed on its own. The open itself is always collective: every
// worker must call it, in the same file order.
package ncio

import (
	"fmt"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/slcs-jsc/netcdf-bench/internal/pkg/group"
)

// AccessMode is the synchronization discipline of the windowed reads.
type AccessMode int

const (
	// Independent lets every worker read without waiting on its peers.
	Independent AccessMode = iota
	// Collective makes all workers participate in each read in lockstep.
	Collective
)

func (m AccessMode) String() string {
	if m == Independent {
		return "independent"
	}
	return "collective"
}

// File is an open read channel into one NetCDF file. The access mode is
// part of the handle and cannot change after Open.
type File struct {
	g     api.Group
	mode  AccessMode
	peers group.Group
}

// Open opens path under the worker group. The call is collective: it
// blocks until every worker of the group has reached it.
func Open(path string, mode AccessMode, peers group.Group) (*File, error) {
	peers.Barrier()
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	return &File{g: g, mode: mode, peers: peers}, nil
}

// Mode returns the access mode the handle was opened with.
func (f *File) Mode() AccessMode {
	return f.mode
}

func (f *File) Close() {
	f.g.Close()
}

// VarNames returns all variable names in file order.
func (f *File) VarNames() []string {
	return f.g.ListVariables()
}

// VarDims returns the dimension names of a variable, outermost first.
func (f *File) VarDims(name string) ([]string, error) {
	vg, err := f.g.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("unable to query variable %s: %w", name, err)
	}
	return vg.Dimensions(), nil
}

// VarLen returns the total number of elements of a variable.
func (f *File) VarLen(name string) (int64, error) {
	vg, err := f.g.GetVarGetter(name)
	if err != nil {
		return 0, fmt.Errorf("unable to query variable %s: %w", name, err)
	}
	return vg.Len(), nil
}

// ReadWindow reads the offset+count window of a variable into dst and
// returns the number of elements stored. The outermost dimension is
// sliced at the I/O layer; inner dimensions are selected while copying.
// Values are widened to float64; dst must be large enough for the window.
func (f *File) ReadWindow(name string, start, count []int, dst []float64) (int, error) {
	vg, err := f.g.GetVarGetter(name)
	if err != nil {
		return 0, fmt.Errorf("unable to query variable %s: %w", name, err)
	}
	ndims := len(vg.Dimensions())
	if len(start) != ndims || len(count) != ndims {
		return 0, fmt.Errorf("variable %s: window rank %d/%d does not match variable rank %d", name, len(start), len(count), ndims)
	}

	if f.mode == Collective {
		f.peers.Barrier()
	}

	if ndims == 0 {
		val, err := vg.Values()
		if err != nil {
			return 0, fmt.Errorf("unable to read scalar variable %s: %w", name, err)
		}
		v, err := widenScalar(val)
		if err != nil {
			return 0, fmt.Errorf("variable %s: %w", name, err)
		}
		if len(dst) < 1 {
			return 0, fmt.Errorf("variable %s: buffer too small", name)
		}
		dst[0] = v
		return 1, nil
	}

	total := 1
	for d := 0; d < ndims; d++ {
		if count[d] <= 0 || start[d] < 0 {
			return 0, fmt.Errorf("variable %s: invalid window start=%v count=%v", name, start, count)
		}
		total *= count[d]
	}
	if len(dst) < total {
		return 0, fmt.Errorf("variable %s: buffer holds %d elements, window needs %d", name, len(dst), total)
	}

	vals, err := vg.GetSlice(int64(start[0]), int64(start[0]+count[0]))
	if err != nil {
		return 0, fmt.Errorf("unable to read variable %s [%d:%d]: %w", name, start[0], start[0]+count[0], err)
	}

	// GetSlice already trimmed the outermost dimension.
	inner := make([]int, ndims)
	copy(inner, start)
	inner[0] = 0

	n, err := copyWindow(dst, 0, vals, inner, count, 0)
	if err != nil {
		return 0, fmt.Errorf("variable %s: %w", name, err)
	}
	return n, nil
}

// copyWindow walks the nested slices returned by the NetCDF library and
// copies the selected index ranges into dst, widening to float64. It
// returns the next write position.
func copyWindow(dst []float64, pos int, vals interface{}, start, count []int, depth int) (int, error) {
	if depth == len(start)-1 {
		return widenLeaf(dst, pos, vals, start[depth], count[depth])
	}
	rv := reflect.ValueOf(vals)
	if rv.Kind() != reflect.Slice {
		return pos, fmt.Errorf("unexpected value of type %T at depth %d", vals, depth)
	}
	for i := 0; i < count[depth]; i++ {
		idx := start[depth] + i
		if idx >= rv.Len() {
			return pos, fmt.Errorf("window exceeds dimension %d (index %d of %d)", depth, idx, rv.Len())
		}
		var err error
		pos, err = copyWindow(dst, pos, rv.Index(idx).Interface(), start, count, depth+1)
		if err != nil {
			return pos, err
		}
	}
	return pos, nil
}

func widenLeaf(dst []float64, pos int, vals interface{}, start, count int) (int, error) {
	end := start + count
	switch s := vals.(type) {
	case []float64:
		if end > len(s) {
			return pos, fmt.Errorf("window exceeds innermost dimension (%d of %d)", end, len(s))
		}
		pos += copy(dst[pos:], s[start:end])
	case []float32:
		if end > len(s) {
			return pos, fmt.Errorf("window exceeds innermost dimension (%d of %d)", end, len(s))
		}
		for _, v := range s[start:end] {
			dst[pos] = float64(v)
			pos++
		}
	case []int16:
		if end > len(s) {
			return pos, fmt.Errorf("window exceeds innermost dimension (%d of %d)", end, len(s))
		}
		for _, v := range s[start:end] {
			dst[pos] = float64(v)
			pos++
		}
	case []int32:
		if end > len(s) {
			return pos, fmt.Errorf("window exceeds innermost dimension (%d of %d)", end, len(s))
		}
		for _, v := range s[start:end] {
			dst[pos] = float64(v)
			pos++
		}
	case []int64:
		if end > len(s) {
			return pos, fmt.Errorf("window exceeds innermost dimension (%d of %d)", end, len(s))
		}
		for _, v := range s[start:end] {
			dst[pos] = float64(v)
			pos++
		}
	default:
		return pos, fmt.Errorf("unsupported variable element type %T", vals)
	}
	return pos, nil
}

func widenScalar(val interface{}) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("unsupported scalar type %T", val)
}
