//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

// Package bins classifies per-file read durations into threshold-based
// bins, which gives a quick picture of how skewed a run was without
// plotting anything.
package bins

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Bin is one duration class. Max is negative for the open-ended last bin.
type Bin struct {
	Min  float64
	Max  float64
	Size int
}

// GetFromInputDescr parses a comma-separated list of duration thresholds
// in seconds, e.g. "0.1,0.5,2".
func GetFromInputDescr(descr string) ([]float64, error) {
	var thresholds []float64
	for _, tok := range strings.Split(descr, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold %q: %w", tok, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("invalid negative threshold %f", v)
		}
		thresholds = append(thresholds, v)
	}
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("no threshold in %q", descr)
	}
	sort.Float64s(thresholds)
	return thresholds, nil
}

// Create returns empty bins for the given thresholds: one bin below the
// first threshold, one between each pair, and an open-ended one above the
// last.
func Create(thresholds []float64) []Bin {
	b := make([]Bin, len(thresholds)+1)
	for i, t := range thresholds {
		b[i].Max = t
		b[i+1].Min = t
	}
	b[len(thresholds)].Max = -1
	return b
}

// GetFromDurations classifies all durations into threshold bins.
func GetFromDurations(durations []float64, thresholds []float64) []Bin {
	b := Create(thresholds)
	for _, d := range durations {
		i := sort.SearchFloat64s(thresholds, d)
		if i < len(thresholds) && d == thresholds[i] {
			// A duration equal to a threshold falls into the bin above it.
			i++
		}
		b[i].Size++
	}
	return b
}

// Save writes the bins into dir and returns the path of the created file.
func Save(dir string, nprocX int, nprocY int, b []Bin) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("duration-bins-%dx%d.md", nprocX, nprocY))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("unable to create %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Duration bins\n\n")
	for _, bin := range b {
		if bin.Max < 0 {
			fmt.Fprintf(f, "* >= %.6f s: %d\n", bin.Min, bin.Size)
			continue
		}
		fmt.Fprintf(f, "* [%.6f, %.6f) s: %d\n", bin.Min, bin.Max, bin.Size)
	}
	return path, nil
}
