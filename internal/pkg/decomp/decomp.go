//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

// Package decomp computes the rectangular subdomain each worker reads from
// the global grid. The longitude axis is periodic: workers sitting on a
// global edge extend their window by the halo width on that axis and pick
// up the missing cells from the opposite edge through a second, smaller
// wrap window. The latitude axis carries no halo.
package decomp

import "fmt"

// Window is an inclusive index range on both spatial axes.
type Window struct {
	Lat0, Lat1 int
	Lon0, Lon1 int
}

// LatCount returns the number of latitude rows covered by the window.
func (w Window) LatCount() int {
	return w.Lat1 - w.Lat0 + 1
}

// LonCount returns the number of longitude columns covered by the window.
func (w Window) LonCount() int {
	return w.Lon1 - w.Lon0 + 1
}

func (w Window) String() string {
	return fmt.Sprintf("lat[%d:%d], lon[%d:%d]", w.Lat0, w.Lat1, w.Lon0, w.Lon1)
}

// Subdomain is the fixed read region of one worker: the primary window
// and, for workers on a periodic longitude edge, the wrap window that
// supplies the halo cells from the opposite side of the grid.
type Subdomain struct {
	Primary Window
	Wrap    Window
	HasWrap bool

	// Halo is the effective halo width after the single-column rule
	// has been applied; it can be smaller than what the caller asked for.
	Halo int
}

// Coords returns the layout coordinates of a worker. Workers are laid out
// row-major on the longitude axis: rank 0 is column 0 of row 0.
func Coords(rank, nprocX int) (px, py int) {
	return rank % nprocX, rank / nprocX
}

// Decompose derives a worker's subdomain from the global axis lengths, the
// worker layout, the worker's position in it, and the requested halo width.
//
// Each axis is divided evenly; remainder rows/columns beyond
// nprocX*(lonLen/nprocX) and nprocY*(latLen/nprocY) are owned by nobody.
// That boundary policy is deliberate: it keeps every worker's window the
// same size, which is what the throughput comparison needs.
//
// A single-column layout forces the halo to zero. The worker would be on
// both periodic edges at once, and the cells a wrap window could deliver
// are cells it already owns.
func Decompose(lonLen, latLen, nprocX, nprocY, px, py, halo int) (Subdomain, error) {
	var s Subdomain

	if lonLen <= 0 || latLen <= 0 {
		return s, fmt.Errorf("invalid grid %dx%d", lonLen, latLen)
	}
	if nprocX <= 0 || nprocY <= 0 {
		return s, fmt.Errorf("invalid layout %dx%d", nprocX, nprocY)
	}
	if px < 0 || px >= nprocX || py < 0 || py >= nprocY {
		return s, fmt.Errorf("worker (%d,%d) outside layout %dx%d", px, py, nprocX, nprocY)
	}
	if halo < 0 {
		return s, fmt.Errorf("negative halo %d", halo)
	}

	if nprocX == 1 {
		halo = 0
	}

	subLon := lonLen / nprocX
	subLat := latLen / nprocY
	if subLon == 0 {
		return s, fmt.Errorf("layout has more columns (%d) than the longitude axis (%d)", nprocX, lonLen)
	}
	if subLat == 0 {
		return s, fmt.Errorf("layout has more rows (%d) than the latitude axis (%d)", nprocY, latLen)
	}

	// A halo at least as wide as a worker's own column span would make the
	// clamped window and the wrap window overlap into invalid ranges.
	if halo >= subLon {
		return s, fmt.Errorf("halo %d is not smaller than the per-worker longitude span %d", halo, subLon)
	}

	s.Halo = halo
	s.Primary = Window{
		Lat0: py * subLat,
		Lat1: py*subLat + subLat - 1,
		Lon0: px*subLon - halo,
		Lon1: px*subLon + subLon - 1 + halo,
	}

	s.HasWrap = halo > 0 && (px == 0 || px == nprocX-1)

	wrapStart := 0
	if px == 0 {
		// Clamp instead of reading negative indices; the wrap window
		// supplies the halo cells from the high edge of the axis.
		s.Primary.Lon0 += halo
		wrapStart = lonLen - halo - 1
	} else if px == nprocX-1 {
		s.Primary.Lon1 -= halo
		wrapStart = 0
	}

	if s.HasWrap {
		s.Wrap = Window{
			Lat0: s.Primary.Lat0,
			Lat1: s.Primary.Lat1,
			Lon0: wrapStart,
			Lon1: wrapStart + halo - 1,
		}
	}

	return s, nil
}
