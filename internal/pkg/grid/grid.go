//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

// Package grid discovers the shape of the dataset from one representative
// file: the ordered list of axes with their lengths, the classification of
// every variable as coordinate or data, and the position of the two named
// spatial axes. The result is computed once and treated as valid for every
// file of the run.
package grid

import (
	"fmt"

	berr "github.com/slcs-jsc/netcdf-bench/internal/pkg/errors"
)

// Source is the variable-enumeration surface of an open file. It is the
// only thing discovery needs, which keeps the package independent of the
// underlying file-format library.
type Source interface {
	// VarNames returns all variable names in file order.
	VarNames() []string
	// VarDims returns the dimension names of a variable, outermost first.
	VarDims(name string) ([]string, error)
	// VarLen returns the total number of elements of a variable.
	VarLen(name string) (int64, error)
}

// Axis is one named dimension of the global grid.
type Axis struct {
	Name string
	Len  int
}

// VarInfo tags one variable of the file. A variable is a coordinate
// variable when its name equals an axis name; only data variables are read
// by the benchmark.
type VarInfo struct {
	Name    string
	Dims    []string
	IsCoord bool
}

// Grid is the immutable outcome of discovery.
type Grid struct {
	Axes []Axis

	// Indices into Axes of the two spatial axes.
	LonIdx, LatIdx int

	Vars []VarInfo
}

// LonLen returns the length of the longitude axis.
func (g *Grid) LonLen() int {
	return g.Axes[g.LonIdx].Len
}

// LatLen returns the length of the latitude axis.
func (g *Grid) LatLen() int {
	return g.Axes[g.LatIdx].Len
}

// AxisLen looks an axis length up by name.
func (g *Grid) AxisLen(name string) (int, bool) {
	for _, a := range g.Axes {
		if a.Name == name {
			return a.Len, true
		}
	}
	return 0, false
}

// DataVars returns the data variables in file order.
func (g *Grid) DataVars() []VarInfo {
	var vars []VarInfo
	for _, v := range g.Vars {
		if !v.IsCoord {
			vars = append(vars, v)
		}
	}
	return vars
}

// NumCoordVars returns the number of coordinate variables.
func (g *Grid) NumCoordVars() int {
	return len(g.Vars) - len(g.DataVars())
}

// ExtraSize returns the product of all axis lengths except the two
// spatial ones. It bounds the per-window element count of any variable
// and sizes the reusable read buffer.
func (g *Grid) ExtraSize() int {
	size := 1
	for i, a := range g.Axes {
		if i == g.LonIdx || i == g.LatIdx {
			continue
		}
		size *= a.Len
	}
	return size
}

// TotalElements returns the product of all axis lengths.
func (g *Grid) TotalElements() int64 {
	total := int64(1)
	for _, a := range g.Axes {
		total *= int64(a.Len)
	}
	return total
}

// Discover enumerates the axes and variables of src and locates the two
// spatial axes by name. Axis lengths come from the 1-D coordinate
// variables; lengths of axes without a coordinate variable are solved from
// the total element count of the data variables that use them. Every axis
// must end up with a known length, and both spatial axes must exist, or
// discovery fails with a metadata error.
func Discover(src Source, lonName, latName string, rank int) (*Grid, error) {
	g := &Grid{LonIdx: -1, LatIdx: -1}

	names := src.VarNames()
	axisIdx := make(map[string]int)
	lengths := make(map[string]int)

	for _, name := range names {
		dims, err := src.VarDims(name)
		if err != nil {
			return nil, berr.New(berr.ErrMetadata, rank, fmt.Errorf("unable to query dimensions of variable %s: %w", name, err))
		}
		for _, d := range dims {
			if _, ok := axisIdx[d]; !ok {
				axisIdx[d] = len(g.Axes)
				g.Axes = append(g.Axes, Axis{Name: d})
			}
		}
		g.Vars = append(g.Vars, VarInfo{Name: name, Dims: dims})
	}

	// Classification and axis lengths from coordinate variables.
	for i, v := range g.Vars {
		if _, ok := axisIdx[v.Name]; !ok {
			continue
		}
		g.Vars[i].IsCoord = true
		if len(v.Dims) == 1 && v.Dims[0] == v.Name {
			n, err := src.VarLen(v.Name)
			if err != nil {
				return nil, berr.New(berr.ErrMetadata, rank, fmt.Errorf("unable to query length of coordinate variable %s: %w", v.Name, err))
			}
			lengths[v.Name] = int(n)
		}
	}

	// Axes without a coordinate variable: solve from data variables with a
	// single unknown dimension.
	for changed := true; changed; {
		changed = false
		for _, v := range g.Vars {
			if v.IsCoord {
				continue
			}
			known := int64(1)
			unknown := ""
			ambiguous := false
			for _, d := range v.Dims {
				if n, ok := lengths[d]; ok {
					known *= int64(n)
				} else if unknown == "" {
					unknown = d
				} else {
					ambiguous = true
				}
			}
			if unknown == "" || ambiguous {
				continue
			}
			total, err := src.VarLen(v.Name)
			if err != nil {
				return nil, berr.New(berr.ErrMetadata, rank, fmt.Errorf("unable to query length of variable %s: %w", v.Name, err))
			}
			if known == 0 || total%known != 0 {
				return nil, berr.New(berr.ErrMetadata, rank, fmt.Errorf("inconsistent shape for variable %s", v.Name))
			}
			lengths[unknown] = int(total / known)
			changed = true
		}
	}

	for i, a := range g.Axes {
		n, ok := lengths[a.Name]
		if !ok {
			return nil, berr.New(berr.ErrMetadata, rank, fmt.Errorf("unable to determine the length of dimension %s", a.Name))
		}
		g.Axes[i].Len = n
	}

	if idx, ok := axisIdx[lonName]; ok {
		g.LonIdx = idx
	}
	if idx, ok := axisIdx[latName]; ok {
		g.LatIdx = idx
	}
	if g.LonIdx == -1 || g.LatIdx == -1 {
		return nil, berr.New(berr.ErrMetadata, rank, fmt.Errorf("could not find %s/%s dimensions", latName, lonName))
	}

	return g, nil
}
